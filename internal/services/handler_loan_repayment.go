package services

import (
	"context"
	"fmt"

	"github.com/saccohub/backend/internal/models"
)

// LoanRepaymentHandler collects payments on disbursed loans. Payments are
// allocated penalty first, then interest, remainder to principal; only the
// principal portion reduces the outstanding balance.
type LoanRepaymentHandler struct{}

func (h *LoanRepaymentHandler) Validate(ctx context.Context, hc *HandlerContext, dto *models.TransactionDTO) error {
	loan := hc.Loan
	if loan == nil {
		return NewInvalidTransaction("repayment requires a loan")
	}
	if loan.MemberID != dto.MemberID {
		return NewInvalidTransaction("loan %d does not belong to member %d", loan.ID, dto.MemberID)
	}
	if !loan.Repayable() {
		return NewInvalidTransaction("loan %d is %s and cannot accept payments", loan.ID, loan.Status)
	}
	if dto.Amount < hc.Limits.MinimumRepaymentAmount {
		return NewInvalidTransaction("repayment amount %d is below the minimum %d", dto.Amount, hc.Limits.MinimumRepaymentAmount)
	}
	if dto.Amount > loan.OutstandingBalance {
		return NewInvalidTransaction("repayment amount %d exceeds the outstanding balance %d", dto.Amount, loan.OutstandingBalance)
	}
	return nil
}

func (h *LoanRepaymentHandler) Execute(ctx context.Context, hc *HandlerContext, txn *models.Transaction, dto *models.TransactionDTO) (*ExecutionResult, error) {
	loan := hc.Loan
	alloc := AllocatePayment(loan, dto.Amount)

	loan.PenaltyBalance -= alloc.Penalty
	loan.InterestBalance -= alloc.Interest
	loan.PrincipalBalance -= alloc.Principal
	loan.OutstandingBalance -= alloc.Principal
	loan.TotalPaid += dto.Amount

	completed := loan.OutstandingBalance <= 0
	if completed {
		loan.Status = models.LoanStatusCompleted
	} else if loan.Status == models.LoanStatusDisbursed {
		// First repayment activates the loan.
		loan.Status = models.LoanStatusActive
	}

	if err := hc.Store.UpdateLoan(hc.Tx, loan); err != nil {
		return nil, NewProcessingError(err, "apply repayment to loan %d", loan.ID)
	}

	rp := &models.LoanRepayment{
		LoanID:          loan.ID,
		TransactionID:   txn.ID,
		Amount:          dto.Amount,
		PrincipalAmount: alloc.Principal,
		InterestAmount:  alloc.Interest,
		PenaltyAmount:   alloc.Penalty,
		BalanceAfter:    loan.OutstandingBalance,
		PaidAt:          hc.Now,
	}
	if err := hc.Store.InsertLoanRepayment(hc.Tx, rp); err != nil {
		return nil, NewProcessingError(err, "record repayment for loan %d", loan.ID)
	}

	return &ExecutionResult{
		NetAmount:     dto.Amount,
		Allocation:    &alloc,
		LoanCompleted: completed,
		Description:   fmt.Sprintf("Repayment on loan %d", loan.ID),
	}, nil
}

func (h *LoanRepaymentHandler) AccountingEntries(txn *models.Transaction, dto *models.TransactionDTO, res *ExecutionResult) ([]models.LedgerEntry, error) {
	if res.Allocation == nil {
		return nil, NewProcessingError(nil, "repayment executed without an allocation")
	}
	alloc := res.Allocation

	desc := fmt.Sprintf("Loan repayment %s", txn.TransactionNumber)
	entries := []models.LedgerEntry{
		models.Debit(models.CashInHand, txn.Amount, desc),
	}
	if alloc.Principal > 0 {
		entries = append(entries, models.Credit(models.LoansReceivable, alloc.Principal, desc))
	}
	if alloc.Interest > 0 {
		entries = append(entries, models.Credit(models.InterestIncome, alloc.Interest, desc))
	}
	if alloc.Penalty > 0 {
		entries = append(entries, models.Credit(models.PenaltyIncome, alloc.Penalty, desc))
	}
	return entries, nil
}
