package models

import "fmt"

// AccountClass is the double-entry classification of a chart account.
type AccountClass string

const (
	ClassAsset     AccountClass = "asset"
	ClassLiability AccountClass = "liability"
	ClassEquity    AccountClass = "equity"
	ClassIncome    AccountClass = "income"
	ClassExpense   AccountClass = "expense"
)

// ChartAccount is one posting target in the fixed chart of accounts.
type ChartAccount struct {
	Code  string
	Name  string
	Class AccountClass
}

// Chart of accounts. Handlers post against these codes only.
var (
	CashInHand           = ChartAccount{"1001", "Cash in Hand", ClassAsset}
	LoansReceivable      = ChartAccount{"1200", "Loans Receivable", ClassAsset}
	MemberSavingsPayable = ChartAccount{"2001", "Member Savings Payable", ClassLiability}
	MemberWalletPayable  = ChartAccount{"2002", "Member Wallet Payable", ClassLiability}
	MemberShareCapital   = ChartAccount{"3001", "Member Share Capital", ClassEquity}
	InterestIncome       = ChartAccount{"4001", "Interest Income", ClassIncome}
	PenaltyIncome        = ChartAccount{"4002", "Penalty Income", ClassIncome}
	FeeIncome            = ChartAccount{"4003", "Fee Income", ClassIncome}
)

// LedgerEntry is one immutable debit or credit line. Exactly one of
// DebitAmount/CreditAmount is nonzero; amounts are minor units.
type LedgerEntry struct {
	AccountCode   string       `json:"account_code" db:"account_code"`
	AccountName   string       `json:"account_name" db:"account_name"`
	AccountClass  AccountClass `json:"account_class" db:"account_class"`
	DebitAmount   int64        `json:"debit_amount" db:"debit_amount"`
	CreditAmount  int64        `json:"credit_amount" db:"credit_amount"`
	Description   string       `json:"description" db:"description"`
	ReferenceType string       `json:"reference_type,omitempty" db:"reference_type"`
	ReferenceID   int64        `json:"reference_id,omitempty" db:"reference_id"`
}

// Debit constructs a debit line against a chart account.
func Debit(a ChartAccount, amount int64, description string) LedgerEntry {
	return LedgerEntry{
		AccountCode:  a.Code,
		AccountName:  a.Name,
		AccountClass: a.Class,
		DebitAmount:  amount,
		Description:  description,
	}
}

// Credit constructs a credit line against a chart account.
func Credit(a ChartAccount, amount int64, description string) LedgerEntry {
	return LedgerEntry{
		AccountCode:  a.Code,
		AccountName:  a.Name,
		AccountClass: a.Class,
		CreditAmount: amount,
		Description:  description,
	}
}

// VerifyBalanced checks the double-entry invariants for a posting set:
// every entry has exactly one positive side, and total debits equal total
// credits. Integer minor-unit arithmetic makes the comparison exact.
func VerifyBalanced(entries []LedgerEntry) error {
	if len(entries) < 2 {
		return fmt.Errorf("posting set needs at least two entries, got %d", len(entries))
	}

	var debits, credits int64
	for i, e := range entries {
		if e.DebitAmount < 0 || e.CreditAmount < 0 {
			return fmt.Errorf("entry %d (%s): negative amount", i, e.AccountCode)
		}
		if (e.DebitAmount == 0) == (e.CreditAmount == 0) {
			return fmt.Errorf("entry %d (%s): exactly one of debit/credit must be set", i, e.AccountCode)
		}
		debits += e.DebitAmount
		credits += e.CreditAmount
	}

	if debits != credits {
		return fmt.Errorf("debits %d != credits %d", debits, credits)
	}
	return nil
}
