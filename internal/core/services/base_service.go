package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/money_tracker/internal/apperrors"
	"github.com/SscSPs/money_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker/internal/core/ports/repositories"
	"github.com/SscSPs/money_tracker/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	// now is replaceable in tests.
	now func() time.Time
}

func newBaseService() BaseService {
	return BaseService{now: func() time.Time { return time.Now().UTC() }}
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting. Expected outcomes such as not found or
// validation failures are logged at debug level.
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	if isUserError(err) {
		logger.Debug(msg, args...)
		return
	}
	logger.Error(msg, args...)
}

// Now returns the current UTC time.
func (s *BaseService) Now() time.Time {
	if s.now == nil {
		return time.Now().UTC()
	}
	return s.now()
}

// isUserError reports whether err is a correctable caller error rather than a failure.
func isUserError(err error) bool {
	for _, target := range []error{
		apperrors.ErrNotFound,
		apperrors.ErrValidation,
		apperrors.ErrDuplicate,
		apperrors.ErrAccountInactive,
		apperrors.ErrInsufficientFunds,
		apperrors.ErrBudgetOverlap,
		apperrors.ErrAllocationExceedsBudget,
		apperrors.ErrBudgetExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, fmt.Sprintf(format, args...))
}

// ownedAccount loads an account and hides accounts of other users behind ErrAccountNotFound.
func ownedAccount(ctx context.Context, store portsrepo.Store, accountID, userID string) (*domain.Account, error) {
	acc, err := store.Accounts().FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !acc.OwnedBy(userID) {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
	}
	return acc, nil
}

func ownedBudget(ctx context.Context, store portsrepo.Store, budgetID, userID string) (*domain.Budget, error) {
	b, err := store.Budgets().FindBudgetByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrBudgetNotFound, budgetID)
	}
	return b, nil
}

// budgetCategoryOf loads an allocation and checks it belongs to budgetID.
func budgetCategoryOf(ctx context.Context, store portsrepo.Store, budgetID, budgetCategoryID string) (*domain.BudgetCategory, error) {
	bc, err := store.Budgets().FindBudgetCategoryByID(ctx, budgetCategoryID)
	if err != nil {
		return nil, err
	}
	if bc.BudgetID != budgetID {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrBudgetCategoryNotFound, budgetCategoryID)
	}
	return bc, nil
}
