package services

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionError(t *testing.T) {
	t.Run("code travels through wrapping", func(t *testing.T) {
		err := NewInsufficientBalance("available balance %d is less than requested amount %d", 100, 500)
		wrapped := fmt.Errorf("submit: %w", err)

		assert.Equal(t, CodeInsufficientBalance, ErrorCode(wrapped))
		assert.True(t, IsInsufficientBalance(wrapped))
	})

	t.Run("unwrap exposes the cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := NewProcessingError(cause, "persist pending transaction")

		assert.True(t, errors.Is(err, cause))
		assert.Contains(t, err.Error(), "PROCESSING_ERROR")
		assert.Contains(t, err.Error(), "connection reset")
	})

	t.Run("unknown errors default to processing", func(t *testing.T) {
		assert.Equal(t, CodeProcessingError, ErrorCode(errors.New("boom")))
	})
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewInvalidTransaction("bad type"), http.StatusUnprocessableEntity},
		{NewInsufficientBalance("no funds"), http.StatusUnprocessableEntity},
		{NewProcessingError(errors.New("db down"), "commit"), http.StatusInternalServerError},
		{NewLedgerImbalance(errors.New("debits 10 != credits 9")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "error %v", tt.err)
	}
}
