package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Message(t *testing.T) {
	plain := ErrAlreadyResolved()
	assert.Equal(t, "[WAL_005] Transaction has already been resolved", plain.Error())
	assert.Nil(t, plain.Unwrap())

	cause := errors.New("connection reset by peer")
	wrapped := ErrDatabaseError(cause)
	assert.Equal(t, "[SYS_001] Internal database error: connection reset by peer", wrapped.Error())
	assert.ErrorIs(t, wrapped, cause)
}

func TestCatalogue(t *testing.T) {
	cause := errors.New("pg: connection closed")

	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"insufficient funds", ErrInsufficientFunds(), CodeInsufficientFunds, http.StatusPaymentRequired},
		{"invalid amount", ErrInvalidAmount(), CodeInvalidAmount, http.StatusBadRequest},
		{"balance overflow shares the amount code", ErrBalanceOverflow(), CodeInvalidAmount, http.StatusBadRequest},
		{"account not found", ErrAccountNotFound(), CodeAccountNotFound, http.StatusNotFound},
		{"transaction not found", ErrTransactionNotFound(), CodeTransactionNotFound, http.StatusNotFound},
		{"already resolved", ErrAlreadyResolved(), CodeAlreadyResolved, http.StatusConflict},
		{"missing reason", ErrMissingReason(), CodeMissingReason, http.StatusBadRequest},
		{"foreign account", ErrAccountMismatch(), CodeAccountMismatch, http.StatusForbidden},
		{"nonce replay", ErrNonceUsed(), "SEC_004", http.StatusForbidden},
		{"nonce missing", ErrMissingNonce(), "SEC_005", http.StatusBadRequest},
		{"bad credentials", ErrInvalidCredentials(), "AUTH_001", http.StatusUnauthorized},
		{"duplicate email", ErrEmailExists(), "AUTH_002", http.StatusConflict},
		{"bad token", ErrInvalidToken(), "AUTH_003", http.StatusUnauthorized},
		{"not an admin", ErrForbidden(), "AUTH_004", http.StatusForbidden},
		{"rate limited", ErrRateLimitExceeded(), "RATE_001", http.StatusTooManyRequests},
		{"database", ErrDatabaseError(cause), "SYS_001", http.StatusInternalServerError},
		{"lock timeout", ErrLockTimeout(cause), "SYS_002", http.StatusServiceUnavailable},
		{"internal", InternalError(cause), "SYS_001", http.StatusInternalServerError},
		{"validation", Validation("amount is required"), "REQ_001", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestIs(t *testing.T) {
	wrapped := fmt.Errorf("approve: %w", ErrAlreadyResolved())

	assert.True(t, Is(wrapped, CodeAlreadyResolved))
	assert.False(t, Is(wrapped, CodeMissingReason))
	assert.False(t, Is(errors.New("plain"), CodeAlreadyResolved))
	assert.False(t, Is(nil, CodeAlreadyResolved))
}
