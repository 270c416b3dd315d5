package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind tags the failure mode so callers can branch without matching messages.
type Kind string

const (
	KindInvalidAmount     Kind = "INVALID_AMOUNT"
	KindInvalidRequest    Kind = "INVALID_REQUEST"
	KindAccountNotFound   Kind = "ACCOUNT_NOT_FOUND"
	KindInsufficientFunds Kind = "INSUFFICIENT_FUNDS"
	KindStoreFailure      Kind = "STORE_FAILURE"
	KindNotFound          Kind = "NOT_FOUND"
	KindUnauthorized      Kind = "UNAUTHORIZED"
	KindRateLimited       Kind = "RATE_LIMITED"
	KindInternal          Kind = "INTERNAL"
)

// Retryable reports whether a failure of this kind may be transient.
func (k Kind) Retryable() bool {
	return k == KindStoreFailure
}

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Kind       Kind   `json:"error_kind"`
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // wrapped internal error, never exposed to clients
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another *AppError with the same kind, so errors.Is works
// against the constructors below.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New creates a new AppError.
func New(kind Kind, code string, message string, httpStatus int) *AppError {
	return &AppError{
		Kind:       kind,
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(kind Kind, code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Kind:       kind,
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// KindOf returns the kind of the first *AppError in err's chain,
// or KindInternal for any other non-nil error.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// ---- Transfers (TRF) ----

func ErrInsufficientFunds() *AppError {
	return New(KindInsufficientFunds, "TRF_001", "Insufficient balance in sender account", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New(KindInvalidAmount, "TRF_002", "Amount must be positive with at most two decimal places", http.StatusBadRequest)
}

func ErrSelfTransfer() *AppError {
	return New(KindInvalidRequest, "TRF_003", "Sender and receiver must be different accounts", http.StatusBadRequest)
}

func ErrTransferNotFound() *AppError {
	return New(KindNotFound, "TRF_004", "Transfer not found", http.StatusNotFound)
}

// ---- Accounts (ACC) ----

func ErrAccountNotFound(id fmt.Stringer) *AppError {
	return New(KindAccountNotFound, "ACC_001", fmt.Sprintf("Account %s not found", id), http.StatusNotFound)
}

func ErrInvalidHolderName() *AppError {
	return New(KindInvalidRequest, "ACC_002", "Holder name must be between 1 and 100 characters", http.StatusBadRequest)
}

func ErrInvalidInitialBalance() *AppError {
	return New(KindInvalidAmount, "ACC_003", "Initial balance must be non-negative with at most two decimal places", http.StatusBadRequest)
}

// ---- Authentication & rate limiting ----

func ErrInvalidToken() *AppError {
	return New(KindUnauthorized, "AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrRateLimitExceeded() *AppError {
	return New(KindRateLimited, "RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & infrastructure (SYS) ----

// ErrStoreFailure reports that the backing store was unavailable or a
// transactional unit could not be committed.
func ErrStoreFailure(err error) *AppError {
	return Wrap(KindStoreFailure, "SYS_001", "Account store unavailable", http.StatusServiceUnavailable, err)
}

// InternalError wraps an unexpected internal error.
func InternalError(err error) *AppError {
	return Wrap(KindInternal, "SYS_000", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns an INVALID_REQUEST error with a custom message.
func Validation(message string) *AppError {
	return New(KindInvalidRequest, "REQ_001", message, http.StatusBadRequest)
}
