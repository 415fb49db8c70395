package services

import (
	"context"
	"fmt"

	"github.com/saccohub/backend/internal/models"
)

// WithdrawalHandler processes savings withdrawals. Sufficiency is decided by
// the BalanceService, never by reading the balance column directly.
type WithdrawalHandler struct{}

func (h *WithdrawalHandler) Validate(ctx context.Context, hc *HandlerContext, dto *models.TransactionDTO) error {
	account := hc.Account
	if account == nil {
		return NewInvalidTransaction("withdrawal requires an account")
	}
	if account.MemberID != dto.MemberID {
		return NewInvalidTransaction("account %d does not belong to member %d", account.ID, dto.MemberID)
	}
	if account.Status != models.AccountStatusActive {
		return NewInvalidTransaction("account %d is not active", account.ID)
	}
	if account.Type != models.AccountTypeSavings {
		return NewInvalidTransaction("withdrawals are only accepted on savings accounts")
	}
	if dto.Amount < hc.Limits.MinimumWithdrawalAmount {
		return NewInvalidTransaction("withdrawal amount %d is below the minimum %d", dto.Amount, hc.Limits.MinimumWithdrawalAmount)
	}

	if err := hc.Balance.CheckDebit(account, dto.Amount); err != nil {
		return err
	}
	if err := hc.Balance.CheckMinimumAfterDebit(account, dto.Amount); err != nil {
		return err
	}

	total, err := hc.Store.DailyCompletedTotal(hc.Tx, dto.MemberID, []models.TransactionType{models.TypeWithdrawal}, hc.Now)
	if err != nil {
		return NewProcessingError(err, "daily withdrawal total")
	}
	if total+dto.Amount > hc.Limits.DailyWithdrawalLimit {
		return NewInvalidTransaction("daily withdrawal limit %d exceeded", hc.Limits.DailyWithdrawalLimit)
	}
	return nil
}

func (h *WithdrawalHandler) Execute(ctx context.Context, hc *HandlerContext, txn *models.Transaction, dto *models.TransactionDTO) (*ExecutionResult, error) {
	// Caller-supplied fee wins; otherwise the configured flat fee applies.
	fee := dto.FeeAmount
	if fee == 0 {
		fee = hc.Limits.WithdrawalFee
	}
	if fee >= dto.Amount {
		return nil, NewInvalidTransaction("fee %d must be less than the withdrawal amount", fee)
	}

	return &ExecutionResult{
		FeeAmount:   fee,
		NetAmount:   dto.Amount - fee,
		Description: fmt.Sprintf("Withdrawal from account %d", hc.Account.ID),
	}, nil
}

func (h *WithdrawalHandler) AccountingEntries(txn *models.Transaction, dto *models.TransactionDTO, res *ExecutionResult) ([]models.LedgerEntry, error) {
	desc := fmt.Sprintf("Withdrawal %s", txn.TransactionNumber)
	entries := []models.LedgerEntry{
		models.Debit(models.MemberSavingsPayable, txn.Amount, desc),
		models.Credit(models.CashInHand, res.NetAmount, desc),
	}
	if res.FeeAmount > 0 {
		entries = append(entries, models.Credit(models.FeeIncome, res.FeeAmount, fmt.Sprintf("Withdrawal fee %s", txn.TransactionNumber)))
	}
	return entries, nil
}
