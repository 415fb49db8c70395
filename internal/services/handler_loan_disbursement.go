package services

import (
	"context"
	"fmt"

	"github.com/saccohub/backend/internal/models"
)

// LoanDisbursementHandler releases an approved loan's principal. A loan can
// only be disbursed once; the amount must match the principal exactly.
type LoanDisbursementHandler struct{}

func (h *LoanDisbursementHandler) Validate(ctx context.Context, hc *HandlerContext, dto *models.TransactionDTO) error {
	loan := hc.Loan
	if loan == nil {
		return NewInvalidTransaction("disbursement requires a loan")
	}
	if loan.MemberID != dto.MemberID {
		return NewInvalidTransaction("loan %d does not belong to member %d", loan.ID, dto.MemberID)
	}
	if loan.Status != models.LoanStatusApproved {
		return NewInvalidTransaction("loan %d is %s, only approved loans can be disbursed", loan.ID, loan.Status)
	}
	if loan.DisbursementDate != nil {
		return NewInvalidTransaction("loan %d has already been disbursed", loan.ID)
	}
	if dto.Amount != loan.PrincipalAmount {
		return NewInvalidTransaction("disbursement amount %d must equal the loan principal %d", dto.Amount, loan.PrincipalAmount)
	}
	return nil
}

func (h *LoanDisbursementHandler) Execute(ctx context.Context, hc *HandlerContext, txn *models.Transaction, dto *models.TransactionDTO) (*ExecutionResult, error) {
	loan := hc.Loan
	loan.Status = models.LoanStatusDisbursed
	loan.OutstandingBalance = loan.PrincipalAmount
	loan.PrincipalBalance = loan.PrincipalAmount
	disbursedAt := hc.Now
	loan.DisbursementDate = &disbursedAt

	if err := hc.Store.UpdateLoan(hc.Tx, loan); err != nil {
		return nil, NewProcessingError(err, "disburse loan %d", loan.ID)
	}

	return &ExecutionResult{
		NetAmount:   dto.Amount,
		Description: fmt.Sprintf("Disbursement of loan %d", loan.ID),
	}, nil
}

func (h *LoanDisbursementHandler) AccountingEntries(txn *models.Transaction, dto *models.TransactionDTO, res *ExecutionResult) ([]models.LedgerEntry, error) {
	desc := fmt.Sprintf("Loan disbursement %s", txn.TransactionNumber)
	return []models.LedgerEntry{
		models.Debit(models.LoansReceivable, txn.Amount, desc),
		models.Credit(models.CashInHand, txn.Amount, desc),
	}, nil
}
