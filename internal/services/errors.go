package services

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes surfaced to API clients.
const (
	CodeInvalidTransaction  = "INVALID_TRANSACTION"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeProcessingError     = "PROCESSING_ERROR"
	CodeLedgerImbalance     = "LEDGER_IMBALANCE"
)

// TransactionError carries a machine-readable code alongside the message.
// Validation and balance errors are caller-correctable and never retried;
// processing errors may be retried after the caller confirms (by transaction
// number) that nothing was applied.
type TransactionError struct {
	Code    string
	Message string
	Err     error
}

func (e *TransactionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// NewInvalidTransaction reports a caller-correctable rule violation.
func NewInvalidTransaction(format string, args ...any) *TransactionError {
	return &TransactionError{Code: CodeInvalidTransaction, Message: fmt.Sprintf(format, args...)}
}

// NewInsufficientBalance reports a balance-specific validation failure.
func NewInsufficientBalance(format string, args ...any) *TransactionError {
	return &TransactionError{Code: CodeInsufficientBalance, Message: fmt.Sprintf(format, args...)}
}

// NewProcessingError wraps an unexpected failure during execution or posting.
func NewProcessingError(err error, format string, args ...any) *TransactionError {
	return &TransactionError{Code: CodeProcessingError, Message: fmt.Sprintf(format, args...), Err: err}
}

// NewLedgerImbalance reports a broken posting invariant. This is a
// programming error, never a user error, and always aborts the commit.
func NewLedgerImbalance(err error) *TransactionError {
	return &TransactionError{Code: CodeLedgerImbalance, Message: "ledger entries do not balance", Err: err}
}

// ErrorCode extracts the machine code from an error chain, defaulting to
// PROCESSING_ERROR for unrecognized errors.
func ErrorCode(err error) string {
	var te *TransactionError
	if errors.As(err, &te) {
		return te.Code
	}
	return CodeProcessingError
}

// HTTPStatus maps an error to its response status. Rule and balance
// violations are unprocessable-entity; everything else is internal.
func HTTPStatus(err error) int {
	switch ErrorCode(err) {
	case CodeInvalidTransaction, CodeInsufficientBalance:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// IsInsufficientBalance reports whether err is balance-related.
func IsInsufficientBalance(err error) bool {
	return ErrorCode(err) == CodeInsufficientBalance
}

// IsInvalidTransaction reports whether err is a generic rule violation.
func IsInvalidTransaction(err error) bool {
	return ErrorCode(err) == CodeInvalidTransaction
}
