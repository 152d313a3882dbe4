package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/money_tracker/internal/apperrors"
	"github.com/SscSPs/money_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker/internal/core/ports/repositories"
	"github.com/SscSPs/money_tracker/internal/models"
	"github.com/SscSPs/money_tracker/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

type transactionRepository struct{ base }

const transactionColumns = `transaction_id, user_id, source_account_id, destination_account_id, category_id,
	amount, type, date, description, ` + auditColumns

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var m models.Transaction
	var date string
	var audit auditCols
	dest := append([]any{
		&m.TransactionID, &m.UserID, &m.SourceAccountID, &m.DestinationAccountID, &m.CategoryID,
		&m.Amount, &m.Type, &date, &m.Description,
	}, audit.dest()...)
	if err := row.Scan(dest...); err != nil {
		return domain.Transaction{}, err
	}
	var err error
	if m.Date, err = parseDay(date); err != nil {
		return domain.Transaction{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	if m.AuditFields, err = audit.model(); err != nil {
		return domain.Transaction{}, err
	}
	return mapping.ToDomainTransaction(m), nil
}

func (r *transactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	txn, err := scanTransaction(r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE transaction_id = ?`, transactionID))
	if err != nil {
		return nil, notFoundOr(err, fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, transactionID),
			"failed to find transaction %s", transactionID)
	}
	return &txn, nil
}

// FindTransactionForUpdate needs no row lock: the unit of work owns the only connection.
func (r *transactionRepository) FindTransactionForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return r.FindTransactionByID(ctx, transactionID)
}

func (r *transactionRepository) ListTransactions(ctx context.Context, filter portsrepo.TransactionFilter) ([]domain.Transaction, error) {
	var sb strings.Builder
	args := []any{filter.UserID}

	sb.WriteString(`SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = ?`)
	if filter.AccountID != "" {
		sb.WriteString(` AND (source_account_id = ? OR destination_account_id = ?)`)
		args = append(args, filter.AccountID, filter.AccountID)
	}
	if filter.CategoryID != "" {
		sb.WriteString(` AND category_id = ?`)
		args = append(args, filter.CategoryID)
	}
	if filter.From != nil {
		sb.WriteString(` AND date >= ?`)
		args = append(args, day(*filter.From))
	}
	if filter.To != nil {
		sb.WriteString(` AND date <= ?`)
		args = append(args, day(*filter.To))
	}
	if filter.AfterDate != nil && filter.AfterCreatedAt != nil {
		sb.WriteString(` AND (date, created_at, transaction_id) < (?, ?, ?)`)
		args = append(args, day(*filter.AfterDate), ts(*filter.AfterCreatedAt), filter.AfterID)
	}
	sb.WriteString(` ORDER BY date DESC, created_at DESC, transaction_id DESC`)
	if filter.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for user %s: %w", filter.UserID, err)
	}
	defer rows.Close()

	txns := make([]domain.Transaction, 0, filter.Limit)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

// SumExpenses adds the amounts in Go; SQLite's SUM would go through floating point.
func (r *transactionRepository) SumExpenses(ctx context.Context, userID, categoryID string, start, end time.Time) (decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT amount FROM transactions
		WHERE user_id = ? AND category_id = ? AND type = 'EXPENSE' AND date BETWEEN ? AND ?`,
		userID, categoryID, day(start), day(end))
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum expenses of category %s: %w", categoryID, err)
	}
	defer rows.Close()

	sum := decimal.Zero
	for rows.Next() {
		var amount decimal.Decimal
		if err := rows.Scan(&amount); err != nil {
			return decimal.Zero, fmt.Errorf("failed to scan expense amount: %w", err)
		}
		sum = sum.Add(amount)
	}
	return sum, rows.Err()
}

func (r *transactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	args := append([]any{
		m.TransactionID, m.UserID, m.SourceAccountID, m.DestinationAccountID, m.CategoryID,
		m.Amount.String(), m.Type, day(m.Date), m.Description,
	}, auditArgs(m.AuditFields)...)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transaction with ID %s already exists", apperrors.ErrDuplicate, m.TransactionID)
		}
		return fmt.Errorf("failed to save transaction %s: %w", m.TransactionID, err)
	}
	return nil
}

func (r *transactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET source_account_id = ?, destination_account_id = ?, category_id = ?, amount = ?,
		    type = ?, date = ?, description = ?, last_updated_at = ?, last_updated_by = ?
		WHERE transaction_id = ?`,
		m.SourceAccountID, m.DestinationAccountID, m.CategoryID, m.Amount.String(),
		m.Type, day(m.Date), m.Description, ts(m.LastUpdatedAt), m.LastUpdatedBy, m.TransactionID)
	return exactlyOne(res, err, fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, m.TransactionID),
		"failed to update transaction %s", m.TransactionID)
}

func (r *transactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE transaction_id = ?`, transactionID)
	return exactlyOne(res, err, fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, transactionID),
		"failed to delete transaction %s", transactionID)
}
