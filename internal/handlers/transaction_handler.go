package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/saccohub/backend/internal/middleware"
	"github.com/saccohub/backend/internal/models"
	"github.com/saccohub/backend/internal/services"
)

type TransactionHandler struct {
	service   *services.TransactionService
	validator *services.ValidationHelper
}

func NewTransactionHandler(service *services.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

// Submit processes a member transaction
// @Summary Submit a transaction
// @Description Process a deposit, withdrawal, share purchase, loan or wallet transaction
// @Tags Transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.TransactionDTO true "Transaction request"
// @Success 200 {object} object{success=bool,data=models.Transaction}
// @Failure 400 {object} services.ErrorResponse
// @Failure 422 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /transactions [post]
func (h *TransactionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var dto models.TransactionDTO

	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&dto); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return
	}

	if err := h.validator.ValidateStruct(&dto); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	// The authenticated actor, not the request body, identifies who
	// processed the transaction.
	if actorID, ok := r.Context().Value(middleware.ActorIDKey).(int64); ok {
		dto.ProcessedBy = &actorID
	}

	txn, err := h.service.Submit(r.Context(), &dto)
	if err != nil {
		services.SendTransactionError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    txn,
	})
}

// GetTransaction returns a transaction by its number
// @Summary Get a transaction
// @Description Look up a transaction by its unique transaction number
// @Tags Transactions
// @Produce json
// @Security BearerAuth
// @Param txNumber path string true "Transaction number"
// @Success 200 {object} object{success=bool,data=models.Transaction}
// @Failure 404 {object} services.ErrorResponse
// @Router /transactions/{txNumber} [get]
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	txNumber := chi.URLParam(r, "txNumber")
	if txNumber == "" {
		services.SendErrorResponse(w, "Transaction number required", http.StatusBadRequest, nil)
		return
	}

	txn, err := h.service.GetByNumber(r.Context(), txNumber)
	if errors.Is(err, sql.ErrNoRows) {
		services.SendErrorResponse(w, "Transaction not found", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		services.SendErrorResponse(w, "Failed to fetch transaction", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    txn,
	})
}

// AccountBalance returns an account's balances
// @Summary Account balance enquiry
// @Description Return the current and available balance for an account
// @Tags Accounts
// @Produce json
// @Security BearerAuth
// @Param accountID path int true "Account ID"
// @Success 200 {object} object{success=bool,balance=int64,availableBalance=int64}
// @Failure 404 {object} services.ErrorResponse
// @Router /accounts/{accountID}/balance [get]
func (h *TransactionHandler) AccountBalance(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "accountID"), 10, 64)
	if err != nil {
		services.SendErrorResponse(w, "Invalid account ID", http.StatusBadRequest, nil)
		return
	}

	account, err := h.service.GetAccount(r.Context(), accountID)
	if errors.Is(err, sql.ErrNoRows) {
		services.SendErrorResponse(w, "Account not found", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		services.SendErrorResponse(w, "Failed to fetch account", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"success":          true,
		"accountId":        account.ID,
		"status":           account.Status,
		"balance":          account.Balance,
		"availableBalance": h.service.AvailableBalance(account),
	})
}
