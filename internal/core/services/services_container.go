package services

import (
	"fmt"
	"strings"

	portsrepo "github.com/SscSPs/money_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_tracker/internal/core/ports/services"
)

// OveragePolicy decides what happens when an expense pushes an allocation past its amount.
type OveragePolicy string

const (
	// OverageAllow logs the overage and records the transaction.
	OverageAllow OveragePolicy = "allow"
	// OverageConfirm refuses the transaction with ErrBudgetExceeded unless the caller confirms.
	OverageConfirm OveragePolicy = "confirm"
)

// ParseOveragePolicy reads a policy name. Empty means OverageAllow.
func ParseOveragePolicy(s string) (OveragePolicy, error) {
	switch p := OveragePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return OverageAllow, nil
	case OverageAllow, OverageConfirm:
		return p, nil
	default:
		return "", fmt.Errorf("unknown budget overage policy %q", s)
	}
}

// Config carries the engine policies.
type Config struct {
	OveragePolicy OveragePolicy
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg Config, uow portsrepo.UnitOfWork) *portssvc.ServiceContainer {
	ledger := NewLedgerService()
	tracker := NewBudgetTracker()

	return &portssvc.ServiceContainer{
		Account:     NewAccountService(uow),
		Category:    NewCategoryService(uow),
		Transaction: NewTransactionService(uow, ledger, tracker, cfg.OveragePolicy),
		Budget:      NewBudgetService(uow, tracker),
		Query:       NewQueryService(uow),
		Ledger:      ledger,
		Tracker:     tracker,
	}
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade  = (*accountService)(nil)
	_ portssvc.CategorySvcFacade = (*categoryService)(nil)
	_ portssvc.QuerySvc          = (*queryService)(nil)
)
