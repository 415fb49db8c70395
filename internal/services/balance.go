package services

import "github.com/saccohub/backend/internal/models"

// BalanceService is the single source of truth for balance sufficiency.
// Handlers never read Account.Balance directly when deciding whether a
// debit can proceed.
type BalanceService struct{}

func NewBalanceService() *BalanceService {
	return &BalanceService{}
}

// AvailableBalance derives the spendable balance. No hold mechanism is
// modeled yet, so this is the current balance capped by AvailableBalance
// where a hold has already reduced it.
func (b *BalanceService) AvailableBalance(account *models.Account) int64 {
	if account.AvailableBalance < account.Balance {
		return account.AvailableBalance
	}
	return account.Balance
}

// CheckDebit verifies the account can cover a debit of amount.
func (b *BalanceService) CheckDebit(account *models.Account, amount int64) error {
	available := b.AvailableBalance(account)
	if available < amount {
		return NewInsufficientBalance("available balance %d is less than requested amount %d", available, amount)
	}
	return nil
}

// CheckMinimumAfterDebit verifies the post-debit balance stays at or above
// the account's product minimum.
func (b *BalanceService) CheckMinimumAfterDebit(account *models.Account, amount int64) error {
	if account.Balance-amount < account.MinimumBalance {
		return NewInsufficientBalance("withdrawal would breach minimum balance %d", account.MinimumBalance)
	}
	return nil
}
