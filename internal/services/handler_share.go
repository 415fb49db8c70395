package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/saccohub/backend/internal/models"
)

// SharePurchaseHandler issues share certificates. Purchases must be exact
// multiples of the configured share value.
type SharePurchaseHandler struct{}

func (h *SharePurchaseHandler) Validate(ctx context.Context, hc *HandlerContext, dto *models.TransactionDTO) error {
	shareValue := hc.Limits.ShareValue
	if dto.Amount%shareValue != 0 {
		return NewInvalidTransaction("purchase amount %d is not a multiple of the share value %d", dto.Amount, shareValue)
	}

	count := dto.Amount / shareValue
	if count < 1 {
		return NewInvalidTransaction("purchase must cover at least one share")
	}
	if count > hc.Limits.MaxSharesPerPurchase {
		return NewInvalidTransaction("share count %d exceeds the per-purchase maximum %d", count, hc.Limits.MaxSharesPerPurchase)
	}

	// Share purchases may be paid in cash with no account, but when an
	// account is named it must be the member's active share account.
	if account := hc.Account; account != nil {
		if account.MemberID != dto.MemberID {
			return NewInvalidTransaction("account %d does not belong to member %d", account.ID, dto.MemberID)
		}
		if account.Status != models.AccountStatusActive {
			return NewInvalidTransaction("account %d is not active", account.ID)
		}
		if account.Type != models.AccountTypeShare {
			return NewInvalidTransaction("share purchases post to share accounts only")
		}
	}
	return nil
}

func (h *SharePurchaseHandler) Execute(ctx context.Context, hc *HandlerContext, txn *models.Transaction, dto *models.TransactionDTO) (*ExecutionResult, error) {
	count := dto.Amount / hc.Limits.ShareValue
	share := &models.Share{
		MemberID:          dto.MemberID,
		CertificateNumber: newCertificateNumber(),
		SharesCount:       count,
		ShareValue:        hc.Limits.ShareValue,
		TotalAmount:       dto.Amount,
		IssuedAt:          hc.Now,
	}
	if err := hc.Store.InsertShare(hc.Tx, share); err != nil {
		return nil, NewProcessingError(err, "issue share certificate")
	}

	return &ExecutionResult{
		NetAmount:   dto.Amount,
		ShareCount:  count,
		Description: fmt.Sprintf("Purchase of %d shares, certificate %s", count, share.CertificateNumber),
	}, nil
}

func (h *SharePurchaseHandler) AccountingEntries(txn *models.Transaction, dto *models.TransactionDTO, res *ExecutionResult) ([]models.LedgerEntry, error) {
	desc := fmt.Sprintf("Share purchase %s (%d shares)", txn.TransactionNumber, res.ShareCount)
	return []models.LedgerEntry{
		models.Debit(models.CashInHand, txn.Amount, desc),
		models.Credit(models.MemberShareCapital, txn.Amount, desc),
	}, nil
}

func newCertificateNumber() string {
	return "SHC-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}
