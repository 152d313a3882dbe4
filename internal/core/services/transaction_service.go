package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/SscSPs/money_tracker/internal/apperrors"
	"github.com/SscSPs/money_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_tracker/internal/core/ports/services"
	"github.com/SscSPs/money_tracker/internal/dto"
	"github.com/SscSPs/money_tracker/internal/utils/accounting"
	"github.com/SscSPs/money_tracker/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

// transactionService records transactions and keeps balances and budget usage consistent with them.
type transactionService struct {
	BaseService
	uow     portsrepo.UnitOfWork
	ledger  portssvc.AccountLedger
	tracker portssvc.BudgetAllocationTracker
	overage OveragePolicy
}

// NewTransactionService creates the transaction processor.
func NewTransactionService(uow portsrepo.UnitOfWork, ledger portssvc.AccountLedger, tracker portssvc.BudgetAllocationTracker, overage OveragePolicy) portssvc.TransactionSvcFacade {
	return &transactionService{
		BaseService: newBaseService(),
		uow:         uow,
		ledger:      ledger,
		tracker:     tracker,
		overage:     overage,
	}
}

var _ portssvc.TransactionSvcFacade = (*transactionService)(nil)

// buildTransaction turns a request into a validated domain transaction. Nothing touches the
// store before this passes.
func buildTransaction(req dto.CreateTransactionRequest) (domain.Transaction, error) {
	txn := domain.Transaction{
		Type:                 req.Type,
		SourceAccountID:      normalizeID(req.SourceAccountID),
		DestinationAccountID: normalizeID(req.DestinationAccountID),
		CategoryID:           strings.TrimSpace(req.CategoryID),
		Amount:               req.Amount,
		Date:                 domain.TruncateDay(req.Date),
		Description:          strings.TrimSpace(req.Description),
	}
	if txn.CategoryID == "" {
		return txn, validationError("category is required")
	}
	if req.Date.IsZero() {
		return txn, validationError("date is required")
	}
	if err := txn.Validate(); err != nil {
		return txn, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}
	return txn, nil
}

func normalizeID(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// checkReferences verifies the category fits the transaction type and that the user owns
// every account involved.
func (s *transactionService) checkReferences(ctx context.Context, tx portsrepo.Store, txn domain.Transaction, userID string) error {
	category, err := tx.Categories().FindCategoryByID(ctx, txn.CategoryID)
	if err != nil {
		return err
	}
	if !txn.AcceptsCategory(category.Type) {
		return fmt.Errorf("%w: %w: %s category for %s transaction", apperrors.ErrValidation, domain.ErrCategoryTypeMismatch, category.Type, txn.Type)
	}
	for _, accountID := range txn.AccountIDs() {
		if _, err := ownedAccount(ctx, tx, accountID, userID); err != nil {
			return err
		}
	}
	return nil
}

// applyEffects runs account deltas through the ledger in the given order, then usage deltas
// through the tracker in the given order, and enforces the overage policy on the result.
func (s *transactionService) applyEffects(ctx context.Context, tx portsrepo.Store, userID string, accounts []accounting.AccountDelta, usages []*accounting.UsageDelta, confirmed bool) error {
	for _, d := range accounts {
		if _, err := s.ledger.ApplyDelta(ctx, tx, d.AccountID, d.Amount, userID); err != nil {
			return err
		}
	}

	net := make(map[string]decimal.Decimal)
	final := make(map[string]domain.BudgetCategory)
	for _, u := range usages {
		if u == nil {
			continue
		}
		touched, err := s.tracker.ApplyUsageDelta(ctx, tx, userID, u.CategoryID, u.Amount, u.Date)
		if err != nil {
			return err
		}
		for _, bc := range touched {
			net[bc.BudgetCategoryID] = net[bc.BudgetCategoryID].Add(u.Amount)
			final[bc.BudgetCategoryID] = bc
		}
	}

	for id, bc := range final {
		if !net[id].IsPositive() || !bc.IsOverspent() {
			continue
		}
		exceeded := &apperrors.BudgetExceededError{
			BudgetCategoryID: id,
			Allocated:        bc.AllocatedAmount,
			Spent:            bc.SpentAmount,
		}
		if s.overage == OverageConfirm && !confirmed {
			return exceeded
		}
		s.GetLogger(ctx).Warn("Budget allocation overspent",
			slog.String("budget_category_id", id),
			slog.String("over_percent", exceeded.OverPercent().String()))
	}
	return nil
}

// CreateTransaction applies the ledger deltas, then the budget usage delta, then stores the row.
func (s *transactionService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, userID string) (*domain.Transaction, error) {
	logger := s.GetLogger(ctx)

	txn, err := buildTransaction(req)
	if err != nil {
		return nil, err
	}
	txn.TransactionID = uuid.NewString()
	txn.UserID = userID
	txn.AuditFields = domain.NewAuditFields(userID, s.Now())

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Store) error {
		if err := s.checkReferences(ctx, tx, txn, userID); err != nil {
			return err
		}
		eff := accounting.EffectsOf(txn)
		if err := s.applyEffects(ctx, tx, userID, eff.Accounts, []*accounting.UsageDelta{eff.Usage}, req.ConfirmOverBudget); err != nil {
			return err
		}
		return tx.Transactions().SaveTransaction(ctx, txn)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create transaction", slog.String("type", string(txn.Type)))
		return nil, err
	}

	logger.Info("Transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("type", string(txn.Type)),
		slog.String("amount", txn.Amount.String()))
	return &txn, nil
}

// loadOwnedForUpdate locks a transaction row and hides other users' transactions.
func loadOwnedForUpdate(ctx context.Context, tx portsrepo.Store, transactionID, userID string) (*domain.Transaction, error) {
	stored, err := tx.Transactions().FindTransactionForUpdate(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if stored.UserID != userID {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, transactionID)
	}
	return stored, nil
}

// UpdateTransaction reverses the stored transaction and applies the edited one in one unit.
// Account deltas are applied one by one with credits first; the reversal of budget usage runs
// before the new usage.
func (s *transactionService) UpdateTransaction(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, userID string) (*domain.Transaction, error) {
	logger := s.GetLogger(ctx)

	updated, err := buildTransaction(dto.CreateTransactionRequest(req))
	if err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Store) error {
		stored, err := loadOwnedForUpdate(ctx, tx, transactionID, userID)
		if err != nil {
			return err
		}
		if err := s.checkReferences(ctx, tx, updated, userID); err != nil {
			return err
		}

		updated.TransactionID = stored.TransactionID
		updated.UserID = stored.UserID
		updated.AuditFields = stored.AuditFields
		updated.Touch(userID, s.Now())

		reversal := accounting.EffectsOf(*stored).Reverse()
		application := accounting.EffectsOf(updated)
		deltas := accounting.OrderCreditsFirst(append(reversal.Accounts, application.Accounts...))

		if err := s.applyEffects(ctx, tx, userID, deltas, []*accounting.UsageDelta{reversal.Usage, application.Usage}, req.ConfirmOverBudget); err != nil {
			return err
		}

		for accountID, net := range accounting.NetByAccount(deltas) {
			logger.Debug("Net balance change from update", slog.String("account_id", accountID), slog.String("net", net.String()))
		}
		return tx.Transactions().UpdateTransaction(ctx, updated)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}

	logger.Info("Transaction updated", slog.String("transaction_id", transactionID))
	return &updated, nil
}

// DeleteTransaction reverses the transaction's effects and removes it.
func (s *transactionService) DeleteTransaction(ctx context.Context, transactionID string, userID string) error {
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Store) error {
		stored, err := loadOwnedForUpdate(ctx, tx, transactionID, userID)
		if err != nil {
			return err
		}
		reversal := accounting.EffectsOf(*stored).Reverse()
		deltas := accounting.OrderCreditsFirst(reversal.Accounts)
		if err := s.applyEffects(ctx, tx, userID, deltas, []*accounting.UsageDelta{reversal.Usage}, true); err != nil {
			return err
		}
		return tx.Transactions().DeleteTransaction(ctx, transactionID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete transaction", slog.String("transaction_id", transactionID))
		return err
	}

	s.GetLogger(ctx).Info("Transaction deleted", slog.String("transaction_id", transactionID))
	return nil
}

func (s *transactionService) GetTransaction(ctx context.Context, transactionID string, userID string) (*domain.Transaction, error) {
	txn, err := s.uow.Transactions().FindTransactionByID(ctx, transactionID)
	if err != nil {
		s.LogError(ctx, err, "Failed to get transaction", slog.String("transaction_id", transactionID))
		return nil, err
	}
	if txn.UserID != userID {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, transactionID)
	}
	return txn, nil
}

// ListTransactions fetches one row more than requested to learn whether another page exists.
func (s *transactionService) ListTransactions(ctx context.Context, userID string, params dto.ListTransactionsParams) ([]domain.Transaction, string, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	filter := portsrepo.TransactionFilter{
		UserID:     userID,
		AccountID:  params.AccountID,
		CategoryID: params.CategoryID,
		From:       params.From,
		To:         params.To,
		Limit:      limit + 1,
	}
	if params.NextToken != "" {
		cursor, err := pagination.DecodeCursor(params.NextToken)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
		}
		filter.AfterDate = &cursor.Date
		filter.AfterCreatedAt = &cursor.CreatedAt
		filter.AfterID = cursor.ID
	}

	txns, err := s.uow.Transactions().ListTransactions(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transactions")
		return nil, "", err
	}
	if txns == nil {
		txns = []domain.Transaction{}
	}

	next := ""
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		next = pagination.EncodeCursor(pagination.Cursor{Date: last.Date, CreatedAt: last.CreatedAt, ID: last.TransactionID})
	}
	return txns, next, nil
}

// IsBudgetExceeded extracts the overage details from an error returned by this service.
func IsBudgetExceeded(err error) (*apperrors.BudgetExceededError, bool) {
	var exceeded *apperrors.BudgetExceededError
	if errors.As(err, &exceeded) {
		return exceeded, true
	}
	return nil, false
}
