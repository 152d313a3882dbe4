package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/SscSPs/money_tracker/internal/apperrors"
	"github.com/SscSPs/money_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/money_tracker/internal/core/ports/services"
	"github.com/SscSPs/money_tracker/internal/dto"
)

type accountService struct {
	BaseService
	uow portsrepo.UnitOfWork
}

// NewAccountService creates the account service. Balances are never written here; they only
// move through the ledger.
func NewAccountService(uow portsrepo.UnitOfWork) portssvc.AccountSvcFacade {
	return &accountService{BaseService: newBaseService(), uow: uow}
}

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	logger := s.GetLogger(ctx)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("account name is required")
	}
	if req.InitialBalance.IsNegative() {
		return nil, validationError("initial balance cannot be negative")
	}
	if err := domain.CheckAmountScale(req.InitialBalance); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	account := domain.Account{
		AccountID:   uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Balance:     req.InitialBalance,
		Status:      domain.AccountActive,
		AuditFields: domain.NewAuditFields(userID, s.Now()),
	}

	if err := s.uow.Accounts().SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account in repository", slog.String("account_id", account.AccountID))
		return nil, err
	}

	logger.Info("Account created successfully in service", slog.String("account_id", account.AccountID))
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string, userID string) (*domain.Account, error) {
	account, err := ownedAccount(ctx, s.uow, accountID, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		return nil, err
	}
	return account, nil
}

// ListAccounts retrieves a paginated list of the user's accounts.
func (s *accountService) ListAccounts(ctx context.Context, userID string, limit int, offset int) ([]domain.Account, error) {
	accounts, err := s.uow.Accounts().ListAccounts(ctx, userID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts from repository", slog.Int("limit", limit), slog.Int("offset", offset))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	var account *domain.Account
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Store) error {
		var err error
		account, err = ownedAccount(ctx, tx, accountID, userID)
		if err != nil {
			return err
		}
		if req.Name == nil {
			return nil
		}
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return validationError("account name is required")
		}
		account.Name = name
		account.Touch(userID, s.Now())
		return tx.Accounts().UpdateAccount(ctx, *account)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, err
	}
	return account, nil
}

// DeactivateAccount marks an account as inactive. The balance has to be zero and no transaction
// may still reference the account, otherwise that transaction could never be reversed.
func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	err := s.uow.WithinTx(ctx, func(ctx context.Context, tx portsrepo.Store) error {
		account, err := ownedAccount(ctx, tx, accountID, userID)
		if err != nil {
			return err
		}
		if !account.Balance.IsZero() {
			return validationError("account balance must be zero to deactivate, it is %s", account.Balance)
		}
		referenced, err := tx.Accounts().IsAccountReferenced(ctx, accountID)
		if err != nil {
			return err
		}
		if referenced {
			return validationError("account %s is still referenced by transactions", accountID)
		}
		return tx.Accounts().DeactivateAccount(ctx, accountID, userID, s.Now())
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		return err
	}

	s.GetLogger(ctx).Info("Account deactivated successfully in service", slog.String("account_id", accountID))
	return nil
}
