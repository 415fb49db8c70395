package models

import "time"

// Account types
const (
	AccountTypeSavings = "savings"
	AccountTypeLoan    = "loan"
	AccountTypeShare   = "share"
	AccountTypeWallet  = "wallet"
)

// Account statuses
const (
	AccountStatusActive    = "ACTIVE"
	AccountStatusInactive  = "INACTIVE"
	AccountStatusSuspended = "SUSPENDED"
	AccountStatusClosed    = "CLOSED"
)

// Account is a member's ledger account. Balance and AvailableBalance are
// minor units; AvailableBalance never exceeds Balance. Version backs the
// optimistic check on balance updates.
type Account struct {
	ID               int64     `json:"id" db:"id"`
	MemberID         int64     `json:"member_id" db:"member_id"`
	Type             string    `json:"type" db:"type"`
	Status           string    `json:"status" db:"status"`
	Balance          int64     `json:"balance" db:"balance"`
	AvailableBalance int64     `json:"available_balance" db:"available_balance"`
	MinimumBalance   int64     `json:"minimum_balance" db:"minimum_balance"`
	InterestEarned   int64     `json:"interest_earned" db:"interest_earned"`
	Version          int       `json:"version" db:"version"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// Loan statuses. Transitions are one-directional:
// APPROVED -> DISBURSED -> ACTIVE -> COMPLETED.
const (
	LoanStatusApproved  = "APPROVED"
	LoanStatusDisbursed = "DISBURSED"
	LoanStatusActive    = "ACTIVE"
	LoanStatusCompleted = "COMPLETED"
)

// Loan is the partial loan view the transaction core reads and mutates.
type Loan struct {
	ID                    int64      `json:"id" db:"id"`
	MemberID              int64      `json:"member_id" db:"member_id"`
	PrincipalAmount       int64      `json:"principal_amount" db:"principal_amount"`
	OutstandingBalance    int64      `json:"outstanding_balance" db:"outstanding_balance"`
	PrincipalBalance      int64      `json:"principal_balance" db:"principal_balance"`
	InterestBalance       int64      `json:"interest_balance" db:"interest_balance"`
	PenaltyBalance        int64      `json:"penalty_balance" db:"penalty_balance"`
	TotalPaid             int64      `json:"total_paid" db:"total_paid"`
	Status                string     `json:"status" db:"status"`
	RepaymentPeriodMonths int        `json:"repayment_period_months" db:"repayment_period_months"`
	DisbursementDate      *time.Time `json:"disbursement_date,omitempty" db:"disbursement_date"`
	Version               int        `json:"version" db:"version"`
	UpdatedAt             time.Time  `json:"updated_at" db:"updated_at"`
}

// Repayable reports whether the loan can accept payments.
func (l *Loan) Repayable() bool {
	return l.Status == LoanStatusDisbursed || l.Status == LoanStatusActive
}

// Share is a certificate issued for a completed share purchase.
type Share struct {
	ID                int64     `json:"id" db:"id"`
	MemberID          int64     `json:"member_id" db:"member_id"`
	CertificateNumber string    `json:"certificate_number" db:"certificate_number"`
	SharesCount       int64     `json:"shares_count" db:"shares_count"`
	ShareValue        int64     `json:"share_value" db:"share_value"`
	TotalAmount       int64     `json:"total_amount" db:"total_amount"`
	IssuedAt          time.Time `json:"issued_at" db:"issued_at"`
}

// LoanRepayment records how a single payment was allocated.
type LoanRepayment struct {
	ID              int64     `json:"id" db:"id"`
	LoanID          int64     `json:"loan_id" db:"loan_id"`
	TransactionID   int64     `json:"transaction_id" db:"transaction_id"`
	Amount          int64     `json:"amount" db:"amount"`
	PrincipalAmount int64     `json:"principal_amount" db:"principal_amount"`
	InterestAmount  int64     `json:"interest_amount" db:"interest_amount"`
	PenaltyAmount   int64     `json:"penalty_amount" db:"penalty_amount"`
	BalanceAfter    int64     `json:"balance_after" db:"balance_after"`
	PaidAt          time.Time `json:"paid_at" db:"paid_at"`
}
