package services

import (
	"context"
	"time"

	"github.com/SscSPs/money_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// AccountLedger is the only component that changes account balances.
// Every call takes the Store of the caller's unit of work.
type AccountLedger interface {
	// ApplyDelta adds a signed amount to an active account and returns the new balance.
	ApplyDelta(ctx context.Context, tx portsrepo.Store, accountID string, signedAmount decimal.Decimal, actorID string) (decimal.Decimal, error)
}

// BudgetAllocationTracker owns allocation spent amounts and the allocation rules.
type BudgetAllocationTracker interface {
	// ApplyUsageDelta adds signedAmount to every allocation of categoryID whose budget period
	// contains effectiveDate. No covering allocation is a no-op.
	ApplyUsageDelta(ctx context.Context, tx portsrepo.Store, userID, categoryID string, signedAmount decimal.Decimal, effectiveDate time.Time) ([]domain.BudgetCategory, error)

	// ValidateAllocation fails when the other allocations of the budget plus proposedAmount
	// exceed the budget total. An existing allocation of categoryID is not counted twice.
	ValidateAllocation(ctx context.Context, tx portsrepo.Store, budgetID, categoryID string, proposedAmount decimal.Decimal) error

	// CheckOverlap fails when another budget of the user allocating categoryID intersects [start, end].
	CheckOverlap(ctx context.Context, tx portsrepo.Store, userID, categoryID string, start, end time.Time, excludeBudgetID string) error

	// CurrentUsage sums the user's expenses of categoryID dated within [start, end].
	CurrentUsage(ctx context.Context, tx portsrepo.Store, userID, categoryID string, start, end time.Time) (decimal.Decimal, error)
}
