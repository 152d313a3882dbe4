package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/money_tracker/internal/apperrors"
	"github.com/SscSPs/money_tracker/internal/core/domain"
	"github.com/SscSPs/money_tracker/internal/models"
	"github.com/SscSPs/money_tracker/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

type accountRepository struct{ base }

const accountColumns = `account_id, user_id, name, balance, status, ` + auditColumns

func scanAccount(row rowScanner) (domain.Account, error) {
	var m models.Account
	var audit auditCols
	dest := append([]any{&m.AccountID, &m.UserID, &m.Name, &m.Balance, &m.Status}, audit.dest()...)
	if err := row.Scan(dest...); err != nil {
		return domain.Account{}, err
	}
	var err error
	if m.AuditFields, err = audit.model(); err != nil {
		return domain.Account{}, err
	}
	return mapping.ToDomainAccount(m), nil
}

func (r *accountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	args := append([]any{m.AccountID, m.UserID, m.Name, m.Balance.String(), m.Status}, auditArgs(m.AuditFields)...)
	_, err := r.db.ExecContext(ctx, `INSERT INTO accounts (`+accountColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: account with ID %s already exists", apperrors.ErrDuplicate, m.AccountID)
		}
		return fmt.Errorf("failed to save account %s: %w", m.AccountID, err)
	}
	return nil
}

func (r *accountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	acc, err := scanAccount(r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE account_id = ?`, accountID))
	if err != nil {
		return nil, notFoundOr(err, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID),
			"failed to find account by ID %s", accountID)
	}
	return &acc, nil
}

func (r *accountRepository) IsAccountReferenced(ctx context.Context, accountID string) (bool, error) {
	var referenced bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM transactions WHERE source_account_id = ?1 OR destination_account_id = ?1)`,
		accountID).Scan(&referenced)
	if err != nil {
		return false, fmt.Errorf("failed to check references of account %s: %w", accountID, err)
	}
	return referenced, nil
}

func (r *accountRepository) ListAccounts(ctx context.Context, userID string, limit int, offset int) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE user_id = ? ORDER BY name, account_id LIMIT ? OFFSET ?`,
		userID, limit, offset)
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
	return accounts, rows.Err()
}

func (r *accountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET name = ?, last_updated_at = ?, last_updated_by = ? WHERE account_id = ?`,
		account.Name, ts(account.LastUpdatedAt), account.LastUpdatedBy, account.AccountID)
	return exactlyOne(res, err, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, account.AccountID),
		"failed to update account %s", account.AccountID)
}

func (r *accountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	acc, err := r.FindAccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !acc.Balance.IsZero() {
		return fmt.Errorf("%w: account %s has a non-zero balance", apperrors.ErrValidation, accountID)
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET status = ?, last_updated_at = ?, last_updated_by = ? WHERE account_id = ?`,
		string(domain.AccountInactive), ts(now), userID, accountID)
	return exactlyOne(res, err, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID),
		"failed to deactivate account %s", accountID)
}

// ApplyBalanceDelta reads and writes on the unit of work's only connection, so no other
// writer can interleave between the two statements.
func (r *accountRepository) ApplyBalanceDelta(ctx context.Context, accountID string, delta decimal.Decimal, userID string, now time.Time) (decimal.Decimal, error) {
	acc, err := r.FindAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	if !acc.IsActive() {
		return decimal.Zero, fmt.Errorf("%w: %s", apperrors.ErrAccountInactive, accountID)
	}
	next := acc.Balance.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: account %s has %s, change is %s",
			apperrors.ErrInsufficientFunds, accountID, acc.Balance, delta)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE accounts SET balance = ?, last_updated_at = ?, last_updated_by = ? WHERE account_id = ?`,
		next.String(), ts(now), userID, accountID)
	if err := exactlyOne(res, err, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID),
		"failed to apply balance delta to account %s", accountID); err != nil {
		return decimal.Zero, err
	}
	return next, nil
}
