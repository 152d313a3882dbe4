package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/money_tracker/internal/core/domain"
	"github.com/shopspring/decimal"
)

// TransactionFilter narrows a transaction listing. Zero values mean "no constraint".
// The cursor fields continue a listing after the last row of the previous page,
// which is ordered by date desc, created_at desc, transaction_id desc.
type TransactionFilter struct {
	UserID     string
	AccountID  string
	CategoryID string
	From       *time.Time
	To         *time.Time
	Limit      int

	AfterDate      *time.Time
	AfterCreatedAt *time.Time
	AfterID        string
}

// TransactionReader defines read operations for transactions
type TransactionReader interface {
	// FindTransactionByID retrieves a transaction by its unique identifier.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// FindTransactionForUpdate retrieves a transaction and locks its row until the unit of work ends.
	FindTransactionForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions returns at most filter.Limit transactions matching filter.
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, error)

	// SumExpenses totals a user's EXPENSE transactions of a category dated within [start, end].
	SumExpenses(ctx context.Context, userID, categoryID string, start, end time.Time) (decimal.Decimal, error)
}

// TransactionWriter defines write operations for transactions
type TransactionWriter interface {
	SaveTransaction(ctx context.Context, txn domain.Transaction) error
	UpdateTransaction(ctx context.Context, txn domain.Transaction) error
	DeleteTransaction(ctx context.Context, transactionID string) error
}

// TransactionRepositoryFacade combines all transaction-related repository interfaces
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
}
