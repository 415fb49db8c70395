package services

import (
	"context"
	"fmt"

	"github.com/saccohub/backend/internal/models"
)

// DepositHandler processes savings deposits. The balance update itself is
// the orchestrator's job; this handler only validates and posts.
type DepositHandler struct{}

func (h *DepositHandler) Validate(ctx context.Context, hc *HandlerContext, dto *models.TransactionDTO) error {
	account := hc.Account
	if account == nil {
		return NewInvalidTransaction("deposit requires an account")
	}
	if account.MemberID != dto.MemberID {
		return NewInvalidTransaction("account %d does not belong to member %d", account.ID, dto.MemberID)
	}
	if account.Status != models.AccountStatusActive {
		return NewInvalidTransaction("account %d is not active", account.ID)
	}
	if account.Type != models.AccountTypeSavings {
		return NewInvalidTransaction("deposits are only accepted on savings accounts")
	}
	if dto.Amount < hc.Limits.MinimumDepositAmount {
		return NewInvalidTransaction("deposit amount %d is below the minimum %d", dto.Amount, hc.Limits.MinimumDepositAmount)
	}
	if dto.Amount > hc.Limits.MaximumTransactionAmount {
		return NewInvalidTransaction("deposit amount %d exceeds the maximum transaction amount", dto.Amount)
	}

	total, err := hc.Store.DailyCompletedTotal(hc.Tx, dto.MemberID, []models.TransactionType{models.TypeDeposit}, hc.Now)
	if err != nil {
		return NewProcessingError(err, "daily deposit total")
	}
	if total+dto.Amount > hc.Limits.DailyDepositLimit {
		return NewInvalidTransaction("daily deposit limit %d exceeded", hc.Limits.DailyDepositLimit)
	}
	return nil
}

func (h *DepositHandler) Execute(ctx context.Context, hc *HandlerContext, txn *models.Transaction, dto *models.TransactionDTO) (*ExecutionResult, error) {
	return &ExecutionResult{
		NetAmount:   dto.Amount,
		Description: fmt.Sprintf("Deposit to account %d", hc.Account.ID),
	}, nil
}

func (h *DepositHandler) AccountingEntries(txn *models.Transaction, dto *models.TransactionDTO, res *ExecutionResult) ([]models.LedgerEntry, error) {
	desc := fmt.Sprintf("Deposit %s", txn.TransactionNumber)
	return []models.LedgerEntry{
		models.Debit(models.CashInHand, txn.Amount, desc),
		models.Credit(models.MemberSavingsPayable, txn.Amount, desc),
	}, nil
}
