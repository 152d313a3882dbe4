package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/money_tracker/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for account data
type AccountReader interface {
	// FindAccountByID retrieves a specific account by its unique identifier.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// ListAccounts retrieves a page of a user's accounts ordered by name.
	ListAccounts(ctx context.Context, userID string, limit int, offset int) ([]domain.Account, error)

	// IsAccountReferenced reports whether any transaction uses the account as source or destination.
	IsAccountReferenced(ctx context.Context, accountID string) (bool, error)
}

// AccountWriter defines write operations for account data
type AccountWriter interface {
	// SaveAccount persists a new account.
	SaveAccount(ctx context.Context, account domain.Account) error

	// UpdateAccount updates an existing account's name.
	UpdateAccount(ctx context.Context, account domain.Account) error

	// DeactivateAccount marks an account as inactive. Only a zero balance account can be deactivated.
	DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error
}

// AccountBalanceUpdater is the single write path for balances.
type AccountBalanceUpdater interface {
	// ApplyBalanceDelta adds delta to the balance of an active account as one conditional write
	// and returns the new balance. A write that would leave the balance below zero is refused
	// with apperrors.ErrInsufficientFunds. Missing and inactive accounts yield
	// apperrors.ErrAccountNotFound and apperrors.ErrAccountInactive.
	ApplyBalanceDelta(ctx context.Context, accountID string, delta decimal.Decimal, userID string, now time.Time) (decimal.Decimal, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountBalanceUpdater
}
