package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/money_tracker/internal/apperrors"
	"github.com/SscSPs/money_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker/internal/core/ports/repositories"
	"github.com/SscSPs/money_tracker/internal/models"
	"github.com/SscSPs/money_tracker/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type PgxAccountRepository struct {
	BaseRepository
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

const accountColumns = `account_id, user_id, name, balance, status, created_at, created_by, last_updated_at, last_updated_by`

func scanAccount(row rowScanner) (domain.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.UserID,
		&m.Name,
		&m.Balance,
		&m.Status,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Account{}, err
	}
	return mapping.ToDomainAccount(m), nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.db.Exec(ctx, query,
		m.AccountID, m.UserID, m.Name, m.Balance, m.Status,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, m.AccountID)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	acc, err := scanAccount(r.db.QueryRow(ctx, query, accountID))
	if err != nil {
		return nil, notFoundOr(err, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID),
			"failed to find account by ID %s", accountID)
	}
	return &acc, nil
}

// IsAccountReferenced reports whether a transaction still points at the account.
func (r *PgxAccountRepository) IsAccountReferenced(ctx context.Context, accountID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM transactions
			WHERE source_account_id = $1 OR destination_account_id = $1
		);
	`
	var referenced bool
	if err := r.db.QueryRow(ctx, query, accountID).Scan(&referenced); err != nil {
		return false, fmt.Errorf("failed to check references of account %s: %w", accountID, err)
	}
	return referenced, nil
}

// ListAccounts returns a page of the user's accounts ordered by name.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, userID string, limit int, offset int) ([]domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE user_id = $1
		ORDER BY name, account_id
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for user %s: %w", userID, err)
	}
	defer rows.Close()

	accounts := make([]domain.Account, 0, limit)
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// UpdateAccount renames an account.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts
		SET name = $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	tag, err := r.db.Exec(ctx, query, account.AccountID, account.Name, account.LastUpdatedAt, account.LastUpdatedBy)
	return exactlyOne(tag, err, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, account.AccountID),
		"failed to update account %s", account.AccountID)
}

// DeactivateAccount flips the status of a zero balance account.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1 AND balance = 0;
	`
	tag, err := r.db.Exec(ctx, query, accountID, string(domain.AccountInactive), now, userID)
	if err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.FindAccountByID(ctx, accountID); err != nil {
			return err
		}
		return fmt.Errorf("%w: account %s has a non-zero balance", apperrors.ErrValidation, accountID)
	}
	return nil
}

// ApplyBalanceDelta is a single conditional write; the WHERE clause refuses inactive accounts
// and overdrafts, and a follow-up read only runs to classify a refusal.
func (r *PgxAccountRepository) ApplyBalanceDelta(ctx context.Context, accountID string, delta decimal.Decimal, userID string, now time.Time) (decimal.Decimal, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1 AND status = 'ACTIVE' AND balance + $2 >= 0
		RETURNING balance;
	`
	var balance decimal.Decimal
	err := r.db.QueryRow(ctx, query, accountID, delta, now, userID).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("failed to apply balance delta to account %s: %w", accountID, err)
	}

	acc, err := r.FindAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	if !acc.IsActive() {
		return decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrAccountInactive, accountID)
	}
	return decimal.Zero, fmt.Errorf("%w: account %s has %s, change is %s",
		apperrors.ErrInsufficientFunds, accountID, acc.Balance, delta)
}
