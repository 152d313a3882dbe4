package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SscSPs/money_tracker/internal/apperrors"
	portsrepo "github.com/SscSPs/money_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_tracker/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// ledgerService is the single write path for account balances.
type ledgerService struct {
	BaseService
}

// NewLedgerService creates the account ledger.
func NewLedgerService() portssvc.AccountLedger {
	return &ledgerService{BaseService: newBaseService()}
}

var _ portssvc.AccountLedger = (*ledgerService)(nil)

// ApplyDelta adds signedAmount to the account. The check that the account is active and that
// a debit leaves a non-negative balance happens in the same conditional write.
func (s *ledgerService) ApplyDelta(ctx context.Context, tx portsrepo.Store, accountID string, signedAmount decimal.Decimal, actorID string) (decimal.Decimal, error) {
	logger := s.GetLogger(ctx)

	if signedAmount.IsZero() {
		acc, err := tx.Accounts().FindAccountByID(ctx, accountID)
		if err != nil {
			return decimal.Zero, err
		}
		if !acc.IsActive() {
			return decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrAccountInactive, accountID)
		}
		return acc.Balance, nil
	}

	balance, err := tx.Accounts().ApplyBalanceDelta(ctx, accountID, signedAmount, actorID, s.Now())
	if err != nil {
		s.LogError(ctx, err, "Ledger delta rejected",
			slog.String("account_id", accountID),
			slog.String("delta", signedAmount.String()))
		return decimal.Zero, err
	}

	logger.Debug("Ledger delta applied",
		slog.String("account_id", accountID),
		slog.String("delta", signedAmount.String()),
		slog.String("balance", balance.String()))
	return balance, nil
}
