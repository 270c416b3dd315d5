package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without wrapped error",
			err:      New(KindInvalidRequest, "REQ_001", "bad request", 400),
			expected: "[REQ_001] bad request",
		},
		{
			name:     "with wrapped error",
			err:      Wrap(KindStoreFailure, "SYS_001", "store down", 503, errors.New("connection refused")),
			expected: "[SYS_001] store down: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("deadlock detected")
	appErr := ErrStoreFailure(inner)

	assert.True(t, errors.Is(appErr, inner))
	assert.Equal(t, inner, appErr.Unwrap())
}

func TestAppError_IsMatchesKind(t *testing.T) {
	id := uuid.New()
	err := fmt.Errorf("transfer: %w", ErrAccountNotFound(id))

	assert.True(t, errors.Is(err, ErrAccountNotFound(uuid.New())))
	assert.False(t, errors.Is(err, ErrInsufficientFunds()))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), KindInternal},
		{"invalid amount", ErrInvalidAmount(), KindInvalidAmount},
		{"self transfer", ErrSelfTransfer(), KindInvalidRequest},
		{"wrapped insufficient funds", fmt.Errorf("ctx: %w", ErrInsufficientFunds()), KindInsufficientFunds},
		{"store failure", ErrStoreFailure(errors.New("x")), KindStoreFailure},
		{"account not found", ErrAccountNotFound(uuid.Nil), KindAccountNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsKind(t *testing.T) {
	assert.True(t, IsKind(ErrRateLimitExceeded(), KindRateLimited))
	assert.False(t, IsKind(nil, KindInternal))
	assert.False(t, IsKind(ErrInvalidToken(), KindRateLimited))
}

func TestKind_Retryable(t *testing.T) {
	assert.True(t, KindStoreFailure.Retryable())
	assert.False(t, KindInsufficientFunds.Retryable())
	assert.False(t, KindInvalidAmount.Retryable())
}

func TestPredefinedErrors(t *testing.T) {
	id := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	tests := []struct {
		name       string
		err        *AppError
		code       string
		kind       Kind
		httpStatus int
	}{
		{"InsufficientFunds", ErrInsufficientFunds(), "TRF_001", KindInsufficientFunds, http.StatusPaymentRequired},
		{"InvalidAmount", ErrInvalidAmount(), "TRF_002", KindInvalidAmount, http.StatusBadRequest},
		{"SelfTransfer", ErrSelfTransfer(), "TRF_003", KindInvalidRequest, http.StatusBadRequest},
		{"TransferNotFound", ErrTransferNotFound(), "TRF_004", KindNotFound, http.StatusNotFound},
		{"AccountNotFound", ErrAccountNotFound(id), "ACC_001", KindAccountNotFound, http.StatusNotFound},
		{"InvalidHolderName", ErrInvalidHolderName(), "ACC_002", KindInvalidRequest, http.StatusBadRequest},
		{"InvalidInitialBalance", ErrInvalidInitialBalance(), "ACC_003", KindInvalidAmount, http.StatusBadRequest},
		{"InvalidToken", ErrInvalidToken(), "AUTH_001", KindUnauthorized, http.StatusUnauthorized},
		{"RateLimit", ErrRateLimitExceeded(), "RATE_001", KindRateLimited, http.StatusTooManyRequests},
		{"StoreFailure", ErrStoreFailure(nil), "SYS_001", KindStoreFailure, http.StatusServiceUnavailable},
		{"Internal", InternalError(nil), "SYS_000", KindInternal, http.StatusInternalServerError},
		{"Validation", Validation("bad"), "REQ_001", KindInvalidRequest, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.kind, tt.err.Kind)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Message)
		})
	}

	assert.Contains(t, ErrAccountNotFound(id).Message, id.String())
}
