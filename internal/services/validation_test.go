package services

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/saccohub/backend/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestValidationHelper_ValidateStruct(t *testing.T) {
	vh := NewValidationHelper()

	t.Run("valid request", func(t *testing.T) {
		accountID := int64(1)
		dto := models.TransactionDTO{
			MemberID:  10,
			Type:      models.TypeDeposit,
			Amount:    5_000,
			AccountID: &accountID,
		}

		err := vh.ValidateStruct(&dto)
		assert.NoError(t, err)
	})

	t.Run("missing required fields", func(t *testing.T) {
		dto := models.TransactionDTO{}

		err := vh.ValidateStruct(&dto)
		assert.Error(t, err)

		validationErrors, ok := err.(validator.ValidationErrors)
		assert.True(t, ok)
		assert.Len(t, validationErrors, 3) // MemberID, Type, Amount
	})

	t.Run("negative amount", func(t *testing.T) {
		dto := models.TransactionDTO{
			MemberID: 10,
			Type:     models.TypeDeposit,
			Amount:   -100,
		}

		err := vh.ValidateStruct(&dto)
		assert.Error(t, err)

		validationErrors, ok := err.(validator.ValidationErrors)
		assert.True(t, ok)
		assert.Len(t, validationErrors, 1)
		assert.Equal(t, "Amount", validationErrors[0].Field())
		assert.Equal(t, "gt", validationErrors[0].Tag())
	})

	t.Run("negative fee", func(t *testing.T) {
		dto := models.TransactionDTO{
			MemberID:  10,
			Type:      models.TypeWithdrawal,
			Amount:    5_000,
			FeeAmount: -1,
		}

		err := vh.ValidateStruct(&dto)
		assert.Error(t, err)
	})
}

func TestSendErrorResponse(t *testing.T) {
	t.Run("error response without validation errors", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendErrorResponse(w, "Something went wrong", http.StatusInternalServerError, nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "Something went wrong", response.Error)
		assert.Nil(t, response.Details)
	})

	t.Run("error response with validation errors", func(t *testing.T) {
		vh := NewValidationHelper()
		dto := models.TransactionDTO{Amount: -100}

		validationErr := vh.ValidateStruct(&dto)
		assert.Error(t, validationErr)

		w := httptest.NewRecorder()
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, validationErr)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, "Validation failed", response.Error)
		assert.NotNil(t, response.Details)
		assert.Contains(t, response.Details, "MemberID")
		assert.Contains(t, response.Details, "Amount")
	})
}

func TestSendTransactionError(t *testing.T) {
	t.Run("rule violation returns 422 with the message", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendTransactionError(w, NewInvalidTransaction("deposit amount 50 is below the minimum 100"))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response ErrorResponse
		err := json.Unmarshal(w.Body.Bytes(), &response)
		assert.NoError(t, err)
		assert.Equal(t, CodeInvalidTransaction, response.Code)
		assert.Contains(t, response.Error, "below the minimum")
	})

	t.Run("insufficient balance returns 422 with its code", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendTransactionError(w, NewInsufficientBalance("available balance 100 is less than requested amount 500"))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var response ErrorResponse
		json.Unmarshal(w.Body.Bytes(), &response)
		assert.Equal(t, CodeInsufficientBalance, response.Code)
	})

	t.Run("processing error hides internal detail", func(t *testing.T) {
		w := httptest.NewRecorder()

		SendTransactionError(w, NewProcessingError(errors.New("pq: connection refused"), "commit unit of work"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var response ErrorResponse
		json.Unmarshal(w.Body.Bytes(), &response)
		assert.Equal(t, CodeProcessingError, response.Code)
		assert.Equal(t, "Failed to process transaction", response.Error)
		assert.NotContains(t, response.Error, "pq:")
	})
}

func TestNewValidationHelper(t *testing.T) {
	vh := NewValidationHelper()
	assert.NotNil(t, vh)
	assert.NotNil(t, vh.validator)
}
