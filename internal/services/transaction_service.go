package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/saccohub/backend/internal/config"
	"github.com/saccohub/backend/internal/models"
)

// TransactionService orchestrates transaction processing: it resolves the
// handler for the requested type, runs validate/execute/postings inside one
// database transaction with the affected rows locked, applies balance
// changes and persists the ledger entries atomically with the final status.
type TransactionService struct {
	db       *sql.DB
	store    *Store
	limits   *config.Limits
	balance  *BalanceService
	notifier *Notifier
	handlers map[models.TransactionType]TransactionHandler
	now      func() time.Time
}

func NewTransactionService(db *sql.DB, redisClient *redis.Client, limits *config.Limits) *TransactionService {
	return &TransactionService{
		db:       db,
		store:    NewStore(),
		limits:   limits,
		balance:  NewBalanceService(),
		notifier: NewNotifier(redisClient),
		handlers: newHandlerRegistry(),
		now:      time.Now,
	}
}

// Submit is the single entry point for transaction processing. On success
// the returned transaction is COMPLETED; on failure a FAILED record is
// written (never a dangling PENDING one) and the error carries a
// machine-readable code.
func (s *TransactionService) Submit(ctx context.Context, dto *models.TransactionDTO) (*models.Transaction, error) {
	if !dto.Type.Valid() {
		return nil, NewInvalidTransaction("unsupported transaction type %q", dto.Type)
	}
	handler := s.handlers[dto.Type]
	if dto.Amount <= 0 {
		return nil, NewInvalidTransaction("amount must be positive")
	}

	if ref := dto.Reference(); ref != "" {
		// Idempotency: a resubmitted reference returns the stored outcome
		// unless the latest attempt failed, which permits a corrected retry.
		// Every attempt gets a fresh unique transaction number; the
		// reference only keys the dedup lookup.
		existing, err := s.store.GetTransactionByReference(s.db, ref)
		if err == nil && existing.Status != models.TxStatusFailed {
			log.Printf("[TRANSACTION] Duplicate submission for reference %s, status: %s", ref, existing.Status)
			return existing, nil
		}
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, NewProcessingError(err, "idempotency lookup for reference %s", ref)
		}
	}
	txNumber := newTransactionNumber()

	txn, err := s.process(ctx, handler, txNumber, dto)
	if err != nil {
		log.Printf("[TRANSACTION] %s failed: %v", txNumber, err)
		s.recordFailure(txNumber, dto, err)
		s.notifier.TransactionFailed(ctx, dto, err)
		return nil, err
	}

	log.Printf("[TRANSACTION] %s completed: type=%s member=%d amount=%d", txn.TransactionNumber, txn.Type, txn.MemberID, txn.Amount)
	s.notifier.TransactionProcessed(ctx, txn)
	return txn, nil
}

// process runs the whole submission as one atomic unit of work. Any error
// rolls back every visible effect, including the pending transaction row.
func (s *TransactionService) process(ctx context.Context, handler TransactionHandler, txNumber string, dto *models.TransactionDTO) (*models.Transaction, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, NewProcessingError(err, "begin unit of work")
	}
	defer dbTx.Rollback()

	now := s.now()
	hc := &HandlerContext{
		Tx:      dbTx,
		Store:   s.store,
		Limits:  s.limits,
		Balance: s.balance,
		Now:     now,
	}

	// Entity loads take row locks held until commit, serializing concurrent
	// submissions against the same account or loan.
	if dto.AccountID != nil {
		account, err := s.store.LockAccount(dbTx, *dto.AccountID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewInvalidTransaction("account %d not found", *dto.AccountID)
		}
		if err != nil {
			return nil, NewProcessingError(err, "lock account %d", *dto.AccountID)
		}
		hc.Account = account
	}
	if dto.RelatedLoanID != nil {
		loan, err := s.store.LockLoan(dbTx, *dto.RelatedLoanID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewInvalidTransaction("loan %d not found", *dto.RelatedLoanID)
		}
		if err != nil {
			return nil, NewProcessingError(err, "lock loan %d", *dto.RelatedLoanID)
		}
		hc.Loan = loan
	}

	if err := handler.Validate(ctx, hc, dto); err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		TransactionNumber: txNumber,
		MemberID:          dto.MemberID,
		AccountID:         dto.AccountID,
		Type:              dto.Type,
		Amount:            dto.Amount,
		NetAmount:         dto.Amount,
		Status:            models.TxStatusPending,
		RelatedLoanID:     dto.RelatedLoanID,
		ProcessedBy:       dto.ProcessedBy,
		Description:       dto.Description,
		Metadata:          models.Metadata{},
		TransactionDate:   now,
	}
	if ref := dto.Reference(); ref != "" {
		txn.Metadata["reference"] = ref
	}
	if hc.Account != nil {
		txn.BalanceBefore = hc.Account.Balance
		txn.BalanceAfter = hc.Account.Balance
	}
	if err := s.store.InsertTransaction(dbTx, txn); err != nil {
		return nil, NewProcessingError(err, "persist pending transaction")
	}

	res, err := handler.Execute(ctx, hc, txn, dto)
	if err != nil {
		return nil, err
	}
	txn.FeeAmount = res.FeeAmount
	txn.NetAmount = res.NetAmount
	if txn.NetAmount == 0 {
		txn.NetAmount = txn.Amount - txn.FeeAmount
	}
	if txn.Description == "" {
		txn.Description = res.Description
	}
	if res.Allocation != nil {
		txn.Metadata["allocation"] = map[string]int64{
			"principal": res.Allocation.Principal,
			"interest":  res.Allocation.Interest,
			"penalty":   res.Allocation.Penalty,
		}
	}
	if res.ShareCount > 0 {
		txn.Metadata["share_count"] = res.ShareCount
	}
	if res.LoanCompleted {
		txn.Metadata["loan_completed"] = true
	}

	entries, err := handler.AccountingEntries(txn, dto, res)
	if err != nil {
		return nil, err
	}
	// An unbalanced posting set is a programming error; it aborts the
	// commit and is never auto-corrected.
	if err := models.VerifyBalanced(entries); err != nil {
		return nil, NewLedgerImbalance(err)
	}

	if hc.Account != nil {
		if delta := dto.Type.BalanceDelta(txn.Amount); delta != 0 {
			// Available moves by the same delta so a pre-existing hold on
			// the row survives the update.
			newBalance := hc.Account.Balance + delta
			newAvailable := hc.Account.AvailableBalance + delta
			if err := s.store.UpdateAccountBalance(dbTx, hc.Account, newBalance, newAvailable); err != nil {
				return nil, NewProcessingError(err, "update balance for account %d", hc.Account.ID)
			}
			txn.BalanceAfter = newBalance
		}
	}

	if err := s.store.InsertLedgerEntries(dbTx, txn, entries); err != nil {
		return nil, NewProcessingError(err, "persist ledger entries")
	}

	txn.Status = models.TxStatusCompleted
	if err := s.store.FinalizeTransaction(dbTx, txn); err != nil {
		return nil, NewProcessingError(err, "finalize transaction")
	}

	if err := dbTx.Commit(); err != nil {
		return nil, NewProcessingError(err, "commit unit of work")
	}
	return txn, nil
}

// recordFailure writes a terminal FAILED record after rollback so the
// attempt is auditable and never appears pending. Best effort: a failure
// here is logged, not surfaced.
func (s *TransactionService) recordFailure(txNumber string, dto *models.TransactionDTO, cause error) {
	txn := &models.Transaction{
		TransactionNumber: txNumber,
		MemberID:          dto.MemberID,
		AccountID:         dto.AccountID,
		Type:              dto.Type,
		Amount:            dto.Amount,
		NetAmount:         dto.Amount,
		RelatedLoanID:     dto.RelatedLoanID,
		ProcessedBy:       dto.ProcessedBy,
		Description:       dto.Description,
		Metadata: models.Metadata{
			"error":      cause.Error(),
			"error_code": ErrorCode(cause),
		},
		TransactionDate: s.now(),
	}
	if ref := dto.Reference(); ref != "" {
		txn.Metadata["reference"] = ref
	}
	if err := s.store.RecordFailedTransaction(s.db, txn); err != nil {
		log.Printf("[TRANSACTION] Failed to record failure for %s: %v", txNumber, err)
	}
}

// GetByNumber returns a transaction by its unique number. Callers use this
// to confirm whether a processing failure was applied before retrying.
func (s *TransactionService) GetByNumber(ctx context.Context, number string) (*models.Transaction, error) {
	return s.store.GetTransactionByNumber(s.db, number)
}

// GetAccount returns an account without locking it.
func (s *TransactionService) GetAccount(ctx context.Context, accountID int64) (*models.Account, error) {
	return s.store.GetAccount(s.db, accountID)
}

// AvailableBalance exposes the balance calculator for read endpoints.
func (s *TransactionService) AvailableBalance(account *models.Account) int64 {
	return s.balance.AvailableBalance(account)
}

func newTransactionNumber() string {
	return "TXN-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
}
