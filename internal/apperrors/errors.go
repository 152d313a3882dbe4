package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrPersistence indicates that the backing store failed to begin, commit or roll back a unit of work.
// It is the only error class a caller may retry, because a failed unit never leaves partial effects.
var ErrPersistence = errors.New("persistence failure")

// Ledger and budget errors. The NotFound variants wrap ErrNotFound so callers can match either.
var (
	ErrAccountNotFound        = fmt.Errorf("account %w", ErrNotFound)
	ErrCategoryNotFound       = fmt.Errorf("category %w", ErrNotFound)
	ErrTransactionNotFound    = fmt.Errorf("transaction %w", ErrNotFound)
	ErrBudgetNotFound         = fmt.Errorf("budget %w", ErrNotFound)
	ErrBudgetCategoryNotFound = fmt.Errorf("budget category %w", ErrNotFound)

	ErrAccountInactive         = errors.New("account is inactive")
	ErrInsufficientFunds       = errors.New("insufficient funds")
	ErrBudgetOverlap           = errors.New("budget period overlaps another budget for the same category")
	ErrAllocationExceedsBudget = errors.New("allocations exceed budget total amount")
	ErrDuplicateBudgetName     = fmt.Errorf("budget name %w", ErrDuplicate)
	ErrBudgetExceeded          = errors.New("budget allocation exceeded")
)

// AppError is an error enriched with the HTTP status a transport layer should use.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewPersistenceError wraps a store level failure so that it matches ErrPersistence.
func NewPersistenceError(message string, err error) *AppError {
	return NewAppError(http.StatusServiceUnavailable, message, errors.Join(ErrPersistence, err))
}

// IsRetryable reports whether the whole operation may be retried by the caller.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// BudgetExceededError reports an allocation whose spent amount went past its allocated amount.
// The caller can retry the operation with an explicit confirmation.
type BudgetExceededError struct {
	BudgetCategoryID string
	Allocated        decimal.Decimal
	Spent            decimal.Decimal
}

// OverPercent is how far spent is above allocated, in percent of allocated.
func (e *BudgetExceededError) OverPercent() decimal.Decimal {
	if !e.Allocated.IsPositive() {
		return decimal.NewFromInt(100)
	}
	return e.Spent.Sub(e.Allocated).Div(e.Allocated).Mul(decimal.NewFromInt(100)).Round(2)
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("%s: allocation %s over by %s%% (spent %s of %s)",
		ErrBudgetExceeded, e.BudgetCategoryID, e.OverPercent(), e.Spent, e.Allocated)
}

func (e *BudgetExceededError) Is(target error) bool {
	return target == ErrBudgetExceeded
}
