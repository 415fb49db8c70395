package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/saccohub/backend/internal/config"
	"github.com/saccohub/backend/internal/models"
)

// TransactionHandler is implemented once per transaction type. The set of
// types is closed; the orchestrator dispatches through a registry map and
// rejects anything unregistered.
//
// Validate checks business rules against the locked entities without side
// effects. Execute performs domain mutations that are not balance postings
// (loan transitions, share certificates, fee computation) and returns a
// typed result that AccountingEntries consumes directly, instead of passing
// computed values through transaction metadata.
type TransactionHandler interface {
	Validate(ctx context.Context, hc *HandlerContext, dto *models.TransactionDTO) error
	Execute(ctx context.Context, hc *HandlerContext, txn *models.Transaction, dto *models.TransactionDTO) (*ExecutionResult, error)
	AccountingEntries(txn *models.Transaction, dto *models.TransactionDTO, res *ExecutionResult) ([]models.LedgerEntry, error)
}

// HandlerContext carries the locked entities and collaborators into a
// handler call. Account and Loan are nil when the request names none; the
// row locks behind them are held until the unit of work commits.
type HandlerContext struct {
	Tx      *sql.Tx
	Store   *Store
	Limits  *config.Limits
	Balance *BalanceService
	Account *models.Account
	Loan    *models.Loan
	Now     time.Time
}

// ExecutionResult is the typed intermediate between Execute and
// AccountingEntries.
type ExecutionResult struct {
	FeeAmount     int64
	NetAmount     int64
	ShareCount    int64
	Allocation    *Allocation
	LoanCompleted bool
	Description   string
}

// newHandlerRegistry maps every supported type to its handler. All four
// wallet sub-variants share one handler.
func newHandlerRegistry() map[models.TransactionType]TransactionHandler {
	wallet := &WalletHandler{}
	return map[models.TransactionType]TransactionHandler{
		models.TypeDeposit:          &DepositHandler{},
		models.TypeWithdrawal:       &WithdrawalHandler{},
		models.TypeSharePurchase:    &SharePurchaseHandler{},
		models.TypeLoanDisbursement: &LoanDisbursementHandler{},
		models.TypeLoanRepayment:    &LoanRepaymentHandler{},
		models.TypeWalletTopup:      wallet,
		models.TypeWalletWithdrawal: wallet,
		models.TypeWalletToSavings:  wallet,
		models.TypeWalletToLoan:     wallet,
	}
}
