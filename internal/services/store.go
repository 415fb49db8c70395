package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/saccohub/backend/internal/models"
)

// Store is the repository the orchestrator and handlers share. Every method
// runs on the caller's *sql.Tx so the whole submission is one atomic unit of
// work. Reads that precede a mutation take a FOR UPDATE row lock; balance
// updates additionally carry an optimistic version check.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

// LockAccount loads an account with a row lock held until commit.
// Concurrent transactions against the same account serialize here.
func (s *Store) LockAccount(tx *sql.Tx, accountID int64) (*models.Account, error) {
	var account models.Account
	err := tx.QueryRow(`
		SELECT id, member_id, type, status, balance, available_balance, minimum_balance, interest_earned, version, updated_at
		FROM accounts
		WHERE id = $1
		FOR UPDATE`, accountID).Scan(
		&account.ID, &account.MemberID, &account.Type, &account.Status,
		&account.Balance, &account.AvailableBalance, &account.MinimumBalance,
		&account.InterestEarned, &account.Version, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// LockLoan loads a loan with a row lock held until commit.
func (s *Store) LockLoan(tx *sql.Tx, loanID int64) (*models.Loan, error) {
	var loan models.Loan
	err := tx.QueryRow(`
		SELECT id, member_id, principal_amount, outstanding_balance, principal_balance, interest_balance,
		       penalty_balance, total_paid, status, repayment_period_months, disbursement_date, version, updated_at
		FROM loans
		WHERE id = $1
		FOR UPDATE`, loanID).Scan(
		&loan.ID, &loan.MemberID, &loan.PrincipalAmount, &loan.OutstandingBalance,
		&loan.PrincipalBalance, &loan.InterestBalance, &loan.PenaltyBalance,
		&loan.TotalPaid, &loan.Status, &loan.RepaymentPeriodMonths,
		&loan.DisbursementDate, &loan.Version, &loan.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// DailyCompletedTotal sums today's completed transactions for a member
// across the given types. Called inside the locked unit of work so the
// read-then-decide limit check cannot race a concurrent submission.
func (s *Store) DailyCompletedTotal(tx *sql.Tx, memberID int64, types []models.TransactionType, day time.Time) (int64, error) {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())

	var total int64
	err := tx.QueryRow(`
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE member_id = $1
		  AND type = ANY($2)
		  AND status = $3
		  AND transaction_date >= $4
		  AND transaction_date < $5`,
		memberID, pq.Array(names), models.TxStatusCompleted,
		dayStart, dayStart.AddDate(0, 0, 1)).Scan(&total)
	return total, err
}

// InsertTransaction persists a new transaction row and fills in its id.
func (s *Store) InsertTransaction(tx *sql.Tx, txn *models.Transaction) error {
	return tx.QueryRow(`
		INSERT INTO transactions
		(transaction_number, member_id, account_id, type, amount, fee_amount, net_amount, status,
		 balance_before, balance_after, related_loan_id, processed_by, description, metadata, transaction_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id`,
		txn.TransactionNumber, txn.MemberID, txn.AccountID, txn.Type, txn.Amount,
		txn.FeeAmount, txn.NetAmount, txn.Status, txn.BalanceBefore, txn.BalanceAfter,
		txn.RelatedLoanID, txn.ProcessedBy, txn.Description, txn.Metadata,
		txn.TransactionDate, time.Now()).Scan(&txn.ID)
}

// FinalizeTransaction writes the terminal state reached inside the unit of
// work: status, fee split and the balances after mutation.
func (s *Store) FinalizeTransaction(tx *sql.Tx, txn *models.Transaction) error {
	_, err := tx.Exec(`
		UPDATE transactions
		SET status = $1, fee_amount = $2, net_amount = $3, balance_after = $4, metadata = $5
		WHERE id = $6 AND status = $7`,
		txn.Status, txn.FeeAmount, txn.NetAmount, txn.BalanceAfter, txn.Metadata,
		txn.ID, models.TxStatusPending)
	return err
}

// UpdateAccountBalance applies a new balance with an optimistic version
// check on top of the row lock.
func (s *Store) UpdateAccountBalance(tx *sql.Tx, account *models.Account, newBalance, newAvailable int64) error {
	result, err := tx.Exec(`
		UPDATE accounts
		SET balance = $1, available_balance = $2, version = version + 1, updated_at = $3
		WHERE id = $4 AND version = $5`,
		newBalance, newAvailable, time.Now(), account.ID, account.Version)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("optimistic lock failed for account %d", account.ID)
	}

	account.Balance = newBalance
	account.AvailableBalance = newAvailable
	account.Version++
	return nil
}

// UpdateLoan persists mutated loan balances and status with a version check.
func (s *Store) UpdateLoan(tx *sql.Tx, loan *models.Loan) error {
	result, err := tx.Exec(`
		UPDATE loans
		SET outstanding_balance = $1, principal_balance = $2, interest_balance = $3, penalty_balance = $4,
		    total_paid = $5, status = $6, disbursement_date = $7, version = version + 1, updated_at = $8
		WHERE id = $9 AND version = $10`,
		loan.OutstandingBalance, loan.PrincipalBalance, loan.InterestBalance, loan.PenaltyBalance,
		loan.TotalPaid, loan.Status, loan.DisbursementDate, time.Now(), loan.ID, loan.Version)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return fmt.Errorf("optimistic lock failed for loan %d", loan.ID)
	}

	loan.Version++
	return nil
}

// InsertLedgerEntries persists the posting set for a transaction.
func (s *Store) InsertLedgerEntries(tx *sql.Tx, txn *models.Transaction, entries []models.LedgerEntry) error {
	for _, e := range entries {
		_, err := tx.Exec(`
			INSERT INTO ledger_entries
			(transaction_id, account_code, account_name, account_class, debit_amount, credit_amount, description, reference_type, reference_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			txn.ID, e.AccountCode, e.AccountName, e.AccountClass,
			e.DebitAmount, e.CreditAmount, e.Description,
			e.ReferenceType, e.ReferenceID, time.Now())
		if err != nil {
			return err
		}
	}
	return nil
}

// InsertShare persists a share certificate and fills in its id.
func (s *Store) InsertShare(tx *sql.Tx, share *models.Share) error {
	return tx.QueryRow(`
		INSERT INTO shares
		(member_id, certificate_number, shares_count, share_value, total_amount, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		share.MemberID, share.CertificateNumber, share.SharesCount,
		share.ShareValue, share.TotalAmount, share.IssuedAt).Scan(&share.ID)
}

// InsertLoanRepayment persists the allocation record for a payment.
func (s *Store) InsertLoanRepayment(tx *sql.Tx, rp *models.LoanRepayment) error {
	return tx.QueryRow(`
		INSERT INTO loan_repayments
		(loan_id, transaction_id, amount, principal_amount, interest_amount, penalty_amount, balance_after, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		rp.LoanID, rp.TransactionID, rp.Amount, rp.PrincipalAmount,
		rp.InterestAmount, rp.PenaltyAmount, rp.BalanceAfter, rp.PaidAt).Scan(&rp.ID)
}

// GetTransactionByNumber looks up a transaction outside any lock. Used for
// the idempotency probe and the read endpoint.
func (s *Store) GetTransactionByNumber(db *sql.DB, number string) (*models.Transaction, error) {
	var txn models.Transaction
	err := db.QueryRow(`
		SELECT id, transaction_number, member_id, account_id, type, amount, fee_amount, net_amount, status,
		       balance_before, balance_after, related_loan_id, processed_by, description, metadata, transaction_date, created_at
		FROM transactions
		WHERE transaction_number = $1`, number).Scan(
		&txn.ID, &txn.TransactionNumber, &txn.MemberID, &txn.AccountID, &txn.Type,
		&txn.Amount, &txn.FeeAmount, &txn.NetAmount, &txn.Status,
		&txn.BalanceBefore, &txn.BalanceAfter, &txn.RelatedLoanID, &txn.ProcessedBy,
		&txn.Description, &txn.Metadata, &txn.TransactionDate, &txn.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// GetTransactionByReference returns the latest attempt carrying a
// caller-supplied idempotency reference. Each attempt gets its own unique
// transaction number, so dedup keys off the reference in metadata instead.
func (s *Store) GetTransactionByReference(db *sql.DB, reference string) (*models.Transaction, error) {
	var txn models.Transaction
	err := db.QueryRow(`
		SELECT id, transaction_number, member_id, account_id, type, amount, fee_amount, net_amount, status,
		       balance_before, balance_after, related_loan_id, processed_by, description, metadata, transaction_date, created_at
		FROM transactions
		WHERE metadata->>'reference' = $1
		ORDER BY id DESC
		LIMIT 1`, reference).Scan(
		&txn.ID, &txn.TransactionNumber, &txn.MemberID, &txn.AccountID, &txn.Type,
		&txn.Amount, &txn.FeeAmount, &txn.NetAmount, &txn.Status,
		&txn.BalanceBefore, &txn.BalanceAfter, &txn.RelatedLoanID, &txn.ProcessedBy,
		&txn.Description, &txn.Metadata, &txn.TransactionDate, &txn.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// GetAccount loads an account without locking, for read endpoints.
func (s *Store) GetAccount(db *sql.DB, accountID int64) (*models.Account, error) {
	var account models.Account
	err := db.QueryRow(`
		SELECT id, member_id, type, status, balance, available_balance, minimum_balance, interest_earned, version, updated_at
		FROM accounts
		WHERE id = $1`, accountID).Scan(
		&account.ID, &account.MemberID, &account.Type, &account.Status,
		&account.Balance, &account.AvailableBalance, &account.MinimumBalance,
		&account.InterestEarned, &account.Version, &account.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// RecordFailedTransaction writes a terminal FAILED row after the unit of
// work rolled back, so the attempt is never left pending. Runs on its own
// connection, outside the rolled-back transaction.
func (s *Store) RecordFailedTransaction(db *sql.DB, txn *models.Transaction) error {
	_, err := db.Exec(`
		INSERT INTO transactions
		(transaction_number, member_id, account_id, type, amount, fee_amount, net_amount, status,
		 balance_before, balance_after, related_loan_id, processed_by, description, metadata, transaction_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		txn.TransactionNumber, txn.MemberID, txn.AccountID, txn.Type, txn.Amount,
		txn.FeeAmount, txn.NetAmount, models.TxStatusFailed, txn.BalanceBefore, txn.BalanceAfter,
		txn.RelatedLoanID, txn.ProcessedBy, txn.Description, txn.Metadata,
		txn.TransactionDate, time.Now())
	return err
}
