package config

import "github.com/spf13/viper"

// Limits is the read-only configuration consumed by transaction validation.
// All monetary values are minor units (cents).
type Limits struct {
	MinimumDepositAmount     int64
	DailyDepositLimit        int64
	MinimumWithdrawalAmount  int64
	DailyWithdrawalLimit     int64
	WithdrawalFee            int64
	ShareValue               int64
	MaxSharesPerPurchase     int64
	MinimumRepaymentAmount   int64
	MaximumTransactionAmount int64
	WalletMinimumTransaction int64
	WalletDailyLimit         int64
}

// LoadLimits returns transaction limits with defaults, overridable via
// viper-bound environment variables.
func LoadLimits() *Limits {
	viper.SetDefault("limits.minimum_deposit_amount", 100)
	viper.SetDefault("limits.daily_deposit_limit", 1_000_000)
	viper.SetDefault("limits.minimum_withdrawal_amount", 100)
	viper.SetDefault("limits.daily_withdrawal_limit", 500_000)
	viper.SetDefault("limits.withdrawal_fee", 0)
	viper.SetDefault("limits.share_value", 10_000)
	viper.SetDefault("limits.max_shares_per_purchase", 100)
	viper.SetDefault("limits.minimum_repayment_amount", 100)
	viper.SetDefault("limits.maximum_transaction_amount", 10_000_000)
	viper.SetDefault("limits.wallet_minimum_transaction", 50)
	viper.SetDefault("limits.wallet_daily_limit", 300_000)

	return &Limits{
		MinimumDepositAmount:     viper.GetInt64("limits.minimum_deposit_amount"),
		DailyDepositLimit:        viper.GetInt64("limits.daily_deposit_limit"),
		MinimumWithdrawalAmount:  viper.GetInt64("limits.minimum_withdrawal_amount"),
		DailyWithdrawalLimit:     viper.GetInt64("limits.daily_withdrawal_limit"),
		WithdrawalFee:            viper.GetInt64("limits.withdrawal_fee"),
		ShareValue:               viper.GetInt64("limits.share_value"),
		MaxSharesPerPurchase:     viper.GetInt64("limits.max_shares_per_purchase"),
		MinimumRepaymentAmount:   viper.GetInt64("limits.minimum_repayment_amount"),
		MaximumTransactionAmount: viper.GetInt64("limits.maximum_transaction_amount"),
		WalletMinimumTransaction: viper.GetInt64("limits.wallet_minimum_transaction"),
		WalletDailyLimit:         viper.GetInt64("limits.wallet_daily_limit"),
	}
}
