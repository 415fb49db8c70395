package services

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/saccohub/backend/internal/models"
)

// WalletHandler covers the four wallet sub-variants: topup, withdrawal,
// transfer to savings and payment to a loan. The wallet is a liability
// control account; every variant posts through Member Wallet Payable.
//
// Lock order is stable: the wallet row is locked by the orchestrator before
// Execute locks a destination savings account. No flow moves money the
// other way, so the pair order never inverts.
type WalletHandler struct{}

func (h *WalletHandler) Validate(ctx context.Context, hc *HandlerContext, dto *models.TransactionDTO) error {
	account := hc.Account
	if account == nil {
		return NewInvalidTransaction("wallet transactions require a wallet account")
	}
	if account.MemberID != dto.MemberID {
		return NewInvalidTransaction("account %d does not belong to member %d", account.ID, dto.MemberID)
	}
	if account.Type != models.AccountTypeWallet {
		return NewInvalidTransaction("account %d is not a wallet", account.ID)
	}
	if account.Status != models.AccountStatusActive {
		return NewInvalidTransaction("wallet %d is not active", account.ID)
	}
	if dto.Amount < hc.Limits.WalletMinimumTransaction {
		return NewInvalidTransaction("wallet amount %d is below the minimum %d", dto.Amount, hc.Limits.WalletMinimumTransaction)
	}

	// Withdrawal-class sub-variants must be covered by the wallet balance.
	switch dto.Type {
	case models.TypeWalletWithdrawal, models.TypeWalletToSavings, models.TypeWalletToLoan:
		if err := hc.Balance.CheckDebit(account, dto.Amount); err != nil {
			return err
		}
	}

	switch dto.Type {
	case models.TypeWalletToSavings:
		if _, err := destinationAccountID(dto); err != nil {
			return err
		}
	case models.TypeWalletToLoan:
		loan := hc.Loan
		if loan == nil {
			return NewInvalidTransaction("wallet loan payment requires a loan")
		}
		if loan.MemberID != dto.MemberID {
			return NewInvalidTransaction("loan %d does not belong to member %d", loan.ID, dto.MemberID)
		}
		if !loan.Repayable() {
			return NewInvalidTransaction("loan %d is %s and cannot accept payments", loan.ID, loan.Status)
		}
		// Interest is settled first, remainder is principal; anything above
		// the total due would push the loan balances negative.
		if due := loan.InterestBalance + loan.OutstandingBalance; dto.Amount > due {
			return NewInvalidTransaction("payment %d exceeds the loan total due %d", dto.Amount, due)
		}
	}

	// The daily limit aggregates across every wallet sub-variant.
	total, err := hc.Store.DailyCompletedTotal(hc.Tx, dto.MemberID, models.WalletTypes, hc.Now)
	if err != nil {
		return NewProcessingError(err, "daily wallet total")
	}
	if total+dto.Amount > hc.Limits.WalletDailyLimit {
		return NewInvalidTransaction("daily wallet limit %d exceeded", hc.Limits.WalletDailyLimit)
	}
	return nil
}

func (h *WalletHandler) Execute(ctx context.Context, hc *HandlerContext, txn *models.Transaction, dto *models.TransactionDTO) (*ExecutionResult, error) {
	switch dto.Type {
	case models.TypeWalletTopup:
		return &ExecutionResult{
			NetAmount:   dto.Amount,
			Description: fmt.Sprintf("Wallet topup to account %d", hc.Account.ID),
		}, nil

	case models.TypeWalletWithdrawal:
		return &ExecutionResult{
			NetAmount:   dto.Amount,
			Description: fmt.Sprintf("Wallet withdrawal from account %d", hc.Account.ID),
		}, nil

	case models.TypeWalletToSavings:
		return h.executeToSavings(hc, dto)

	case models.TypeWalletToLoan:
		return h.executeToLoan(hc, txn, dto)
	}
	return nil, NewInvalidTransaction("unsupported wallet transaction type %q", dto.Type)
}

func (h *WalletHandler) executeToSavings(hc *HandlerContext, dto *models.TransactionDTO) (*ExecutionResult, error) {
	destID, err := destinationAccountID(dto)
	if err != nil {
		return nil, err
	}
	if destID == hc.Account.ID {
		return nil, NewInvalidTransaction("destination account must differ from the wallet")
	}

	dest, err := hc.Store.LockAccount(hc.Tx, destID)
	if err == sql.ErrNoRows {
		return nil, NewInvalidTransaction("destination account %d not found", destID)
	}
	if err != nil {
		return nil, NewProcessingError(err, "lock destination account %d", destID)
	}
	if dest.MemberID != dto.MemberID {
		return nil, NewInvalidTransaction("destination account %d does not belong to member %d", destID, dto.MemberID)
	}
	if dest.Type != models.AccountTypeSavings {
		return nil, NewInvalidTransaction("destination account %d is not a savings account", destID)
	}
	if dest.Status != models.AccountStatusActive {
		return nil, NewInvalidTransaction("destination account %d is not active", destID)
	}

	newBalance := dest.Balance + dto.Amount
	newAvailable := dest.AvailableBalance + dto.Amount
	if err := hc.Store.UpdateAccountBalance(hc.Tx, dest, newBalance, newAvailable); err != nil {
		return nil, NewProcessingError(err, "credit destination account %d", destID)
	}

	return &ExecutionResult{
		NetAmount:   dto.Amount,
		Description: fmt.Sprintf("Wallet transfer to savings account %d", destID),
	}, nil
}

func (h *WalletHandler) executeToLoan(hc *HandlerContext, txn *models.Transaction, dto *models.TransactionDTO) (*ExecutionResult, error) {
	loan := hc.Loan
	alloc := AllocateWalletPayment(loan, dto.Amount)

	loan.InterestBalance -= alloc.Interest
	loan.PrincipalBalance -= alloc.Principal
	loan.OutstandingBalance -= alloc.Principal
	loan.TotalPaid += dto.Amount

	completed := loan.OutstandingBalance <= 0
	if completed {
		loan.Status = models.LoanStatusCompleted
	} else if loan.Status == models.LoanStatusDisbursed {
		loan.Status = models.LoanStatusActive
	}

	if err := hc.Store.UpdateLoan(hc.Tx, loan); err != nil {
		return nil, NewProcessingError(err, "apply wallet payment to loan %d", loan.ID)
	}

	rp := &models.LoanRepayment{
		LoanID:          loan.ID,
		TransactionID:   txn.ID,
		Amount:          dto.Amount,
		PrincipalAmount: alloc.Principal,
		InterestAmount:  alloc.Interest,
		BalanceAfter:    loan.OutstandingBalance,
		PaidAt:          hc.Now,
	}
	if err := hc.Store.InsertLoanRepayment(hc.Tx, rp); err != nil {
		return nil, NewProcessingError(err, "record wallet payment for loan %d", loan.ID)
	}

	return &ExecutionResult{
		NetAmount:     dto.Amount,
		Allocation:    &alloc,
		LoanCompleted: completed,
		Description:   fmt.Sprintf("Wallet payment on loan %d", loan.ID),
	}, nil
}

func (h *WalletHandler) AccountingEntries(txn *models.Transaction, dto *models.TransactionDTO, res *ExecutionResult) ([]models.LedgerEntry, error) {
	desc := fmt.Sprintf("Wallet %s %s", dto.Type, txn.TransactionNumber)

	switch dto.Type {
	case models.TypeWalletTopup:
		return []models.LedgerEntry{
			models.Debit(models.CashInHand, txn.Amount, desc),
			models.Credit(models.MemberWalletPayable, txn.Amount, desc),
		}, nil

	case models.TypeWalletWithdrawal:
		return []models.LedgerEntry{
			models.Debit(models.MemberWalletPayable, txn.Amount, desc),
			models.Credit(models.CashInHand, txn.Amount, desc),
		}, nil

	case models.TypeWalletToSavings:
		return []models.LedgerEntry{
			models.Debit(models.MemberWalletPayable, txn.Amount, desc),
			models.Credit(models.MemberSavingsPayable, txn.Amount, desc),
		}, nil

	case models.TypeWalletToLoan:
		if res.Allocation == nil {
			return nil, NewProcessingError(nil, "wallet loan payment executed without an allocation")
		}
		alloc := res.Allocation
		entries := []models.LedgerEntry{
			models.Debit(models.MemberWalletPayable, txn.Amount, desc),
		}
		if alloc.Principal > 0 {
			entries = append(entries, models.Credit(models.LoansReceivable, alloc.Principal, desc))
		}
		if alloc.Interest > 0 {
			entries = append(entries, models.Credit(models.InterestIncome, alloc.Interest, desc))
		}
		return entries, nil
	}
	return nil, NewInvalidTransaction("unsupported wallet transaction type %q", dto.Type)
}

// destinationAccountID reads the wallet-to-savings destination from request
// metadata. JSON numbers arrive as float64.
func destinationAccountID(dto *models.TransactionDTO) (int64, error) {
	raw, ok := dto.Metadata["destination_account_id"]
	if !ok {
		return 0, NewInvalidTransaction("wallet transfer requires metadata.destination_account_id")
	}
	switch v := raw.(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, NewInvalidTransaction("invalid destination_account_id %q", v)
		}
		return id, nil
	}
	return 0, NewInvalidTransaction("invalid destination_account_id")
}
