package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// TransactionType enumerates every monetary event the ledger core processes.
type TransactionType string

const (
	TypeDeposit          TransactionType = "deposit"
	TypeWithdrawal       TransactionType = "withdrawal"
	TypeSharePurchase    TransactionType = "share_purchase"
	TypeLoanDisbursement TransactionType = "loan_disbursement"
	TypeLoanRepayment    TransactionType = "loan_repayment"
	TypeWalletTopup      TransactionType = "wallet_topup"
	TypeWalletWithdrawal TransactionType = "wallet_withdrawal"
	TypeWalletToSavings  TransactionType = "wallet_to_savings"
	TypeWalletToLoan     TransactionType = "wallet_to_loan"
)

// WalletTypes groups the wallet sub-variants. Daily wallet limits aggregate
// across all of them.
var WalletTypes = []TransactionType{
	TypeWalletTopup,
	TypeWalletWithdrawal,
	TypeWalletToSavings,
	TypeWalletToLoan,
}

func (t TransactionType) Valid() bool {
	switch t {
	case TypeDeposit, TypeWithdrawal, TypeSharePurchase,
		TypeLoanDisbursement, TypeLoanRepayment,
		TypeWalletTopup, TypeWalletWithdrawal, TypeWalletToSavings, TypeWalletToLoan:
		return true
	}
	return false
}

func (t TransactionType) IsWallet() bool {
	for _, w := range WalletTypes {
		if t == w {
			return true
		}
	}
	return false
}

// BalanceDelta returns the signed change applied to the transaction's primary
// account balance. Loan disbursements and repayments move cash and loan
// balances, not a member account, so their delta is zero.
func (t TransactionType) BalanceDelta(amount int64) int64 {
	switch t {
	case TypeDeposit, TypeSharePurchase, TypeWalletTopup:
		return amount
	case TypeWithdrawal, TypeWalletWithdrawal, TypeWalletToSavings, TypeWalletToLoan:
		return -amount
	default:
		return 0
	}
}

// Transaction lifecycle statuses. COMPLETED and REVERSED are terminal.
const (
	TxStatusPending   = "PENDING"
	TxStatusCompleted = "COMPLETED"
	TxStatusFailed    = "FAILED"
	TxStatusReversed  = "REVERSED"
)

// Transaction is the persisted record of a monetary event.
// Amounts are int64 minor units (cents).
type Transaction struct {
	ID                int64           `json:"id" db:"id"`
	TransactionNumber string          `json:"transaction_number" db:"transaction_number"`
	MemberID          int64           `json:"member_id" db:"member_id"`
	AccountID         *int64          `json:"account_id,omitempty" db:"account_id"`
	Type              TransactionType `json:"type" db:"type"`
	Amount            int64           `json:"amount" db:"amount"`
	FeeAmount         int64           `json:"fee_amount" db:"fee_amount"`
	NetAmount         int64           `json:"net_amount" db:"net_amount"`
	Status            string          `json:"status" db:"status"`
	BalanceBefore     int64           `json:"balance_before" db:"balance_before"`
	BalanceAfter      int64           `json:"balance_after" db:"balance_after"`
	RelatedLoanID     *int64          `json:"related_loan_id,omitempty" db:"related_loan_id"`
	ProcessedBy       *int64          `json:"processed_by,omitempty" db:"processed_by"`
	Description       string          `json:"description" db:"description"`
	Metadata          Metadata        `json:"metadata,omitempty" db:"metadata"`
	TransactionDate   time.Time       `json:"transaction_date" db:"transaction_date"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
}

// Terminal reports whether the status can no longer change.
func (t *Transaction) Terminal() bool {
	return t.Status == TxStatusCompleted || t.Status == TxStatusReversed
}

// TransactionDTO is the validated inbound request passed to handlers.
// ProcessedBy is the acting staff member, threaded in explicitly by the HTTP
// layer; the core never reads it from ambient state.
type TransactionDTO struct {
	MemberID      int64           `json:"member_id" validate:"required,gt=0"`
	Type          TransactionType `json:"type" validate:"required"`
	Amount        int64           `json:"amount" validate:"required,gt=0"`
	AccountID     *int64          `json:"account_id,omitempty"`
	FeeAmount     int64           `json:"fee_amount,omitempty" validate:"gte=0"`
	Description   string          `json:"description,omitempty" validate:"max=200"`
	RelatedLoanID *int64          `json:"related_loan_id,omitempty"`
	ProcessedBy   *int64          `json:"processed_by,omitempty"`
	Metadata      Metadata        `json:"metadata,omitempty"`
}

// Reference returns the caller-supplied idempotency reference, if any.
func (d *TransactionDTO) Reference() string {
	if d.Metadata == nil {
		return ""
	}
	if ref, ok := d.Metadata["reference"].(string); ok {
		return ref
	}
	return ""
}

// Metadata type for JSONB fields
type Metadata map[string]any

// Value implements driver.Valuer for Metadata
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for Metadata
func (m *Metadata) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(b, m)
}
