package services

import "github.com/saccohub/backend/internal/models"

// Allocation is the split of a loan payment. The three parts always sum to
// the payment amount exactly; any integer remainder goes to principal.
type Allocation struct {
	Principal int64 `json:"principal"`
	Interest  int64 `json:"interest"`
	Penalty   int64 `json:"penalty"`
}

// Total returns the sum of the allocation parts.
func (a Allocation) Total() int64 {
	return a.Principal + a.Interest + a.Penalty
}

// AllocatePayment splits a repayment: penalty arrears first, then interest
// due, remainder to principal.
func AllocatePayment(loan *models.Loan, amount int64) Allocation {
	var alloc Allocation
	remaining := amount

	alloc.Penalty = min64(remaining, loan.PenaltyBalance)
	remaining -= alloc.Penalty

	alloc.Interest = min64(remaining, loan.InterestBalance)
	remaining -= alloc.Interest

	alloc.Principal = remaining
	return alloc
}

// AllocateWalletPayment splits a wallet-to-loan payment: interest due first,
// remainder to principal. Penalties are not collected on the wallet path.
func AllocateWalletPayment(loan *models.Loan, amount int64) Allocation {
	var alloc Allocation
	alloc.Interest = min64(amount, loan.InterestBalance)
	alloc.Principal = amount - alloc.Interest
	return alloc
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
