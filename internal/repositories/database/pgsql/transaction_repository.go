package pgsql

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

type PgxTransactionRepository struct {
	BaseRepository
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

const transactionColumns = `transaction_id, user_id, source_account_id, destination_account_id, category_id,
	amount, type, date, description, created_at, created_by, last_updated_at, last_updated_by`

func scanTransaction(row rowScanner) (domain.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.UserID,
		&m.SourceAccountID,
		&m.DestinationAccountID,
		&m.CategoryID,
		&m.Amount,
		&m.Type,
		&m.Date,
		&m.Description,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return domain.Transaction{}, err
	}
	return mapping.ToDomainTransaction(m), nil
}

func (r *PgxTransactionRepository) findOne(ctx context.Context, query, transactionID string) (*domain.Transaction, error) {
	txn, err := scanTransaction(r.db.QueryRow(ctx, query, transactionID))
	if err != nil {
		return nil, notFoundOr(err, fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, transactionID),
			"failed to find transaction %s", transactionID)
	}
	return &txn, nil
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return r.findOne(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE transaction_id = $1;`, transactionID)
}

// FindTransactionForUpdate locks the row so a concurrent edit of the same transaction waits.
func (r *PgxTransactionRepository) FindTransactionForUpdate(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return r.findOne(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE transaction_id = $1 FOR UPDATE;`, transactionID)
}

func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, filter portsrepo.TransactionFilter) ([]domain.Transaction, error) {
	var sb strings.Builder
	args := []any{filter.UserID}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	sb.WriteString(`SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`)
	if filter.AccountID != "" {
		p := arg(filter.AccountID)
		sb.WriteString(` AND (source_account_id = ` + p + ` OR destination_account_id = ` + p + `)`)
	}
	if filter.CategoryID != "" {
		sb.WriteString(` AND category_id = ` + arg(filter.CategoryID))
	}
	if filter.From != nil {
		sb.WriteString(` AND date >= ` + arg(domain.TruncateDay(*filter.From)))
	}
	if filter.To != nil {
		sb.WriteString(` AND date <= ` + arg(domain.TruncateDay(*filter.To)))
	}
	if filter.AfterDate != nil && filter.AfterCreatedAt != nil {
		sb.WriteString(fmt.Sprintf(` AND (date, created_at, transaction_id) < (%s, %s, %s)`,
			arg(*filter.AfterDate), arg(*filter.AfterCreatedAt), arg(filter.AfterID)))
	}
	sb.WriteString(` ORDER BY date DESC, created_at DESC, transaction_id DESC`)
	if filter.Limit > 0 {
		sb.WriteString(` LIMIT ` + arg(filter.Limit))
	}

	rows, err := r.db.Query(ctx, sb.String(), args...)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return txns, nil
}

func (r *PgxTransactionRepository) SumExpenses(ctx context.Context, userID, categoryID string, start, end time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND category_id = $2 AND type = 'EXPENSE' AND date BETWEEN $3 AND $4;
	`
	var sum decimal.Decimal
	if err := r.db.QueryRow(ctx, query, userID, categoryID, start, end).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum expenses of category %s: %w", categoryID, err)
	}
	return sum, nil
}

func (r *PgxTransactionRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.db.Exec(ctx, query,
		m.TransactionID, m.UserID, m.SourceAccountID, m.DestinationAccountID, m.CategoryID,
		m.Amount, m.Type, m.Date, m.Description,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: transaction with ID %s already exists", apperrors.ErrDuplicate, m.TransactionID)
		}
		return fmt.Errorf("failed to save transaction %s: %w", m.TransactionID, err)
	}
	return nil
}

func (r *PgxTransactionRepository) UpdateTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	query := `
		UPDATE transactions
		SET source_account_id = $2, destination_account_id = $3, category_id = $4, amount = $5,
		    type = $6, date = $7, description = $8, last_updated_at = $9, last_updated_by = $10
		WHERE transaction_id = $1;
	`
	tag, err := r.db.Exec(ctx, query,
		m.TransactionID, m.SourceAccountID, m.DestinationAccountID, m.CategoryID, m.Amount,
		m.Type, m.Date, m.Description, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	return exactlyOne(tag, err, fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, m.TransactionID),
		"failed to update transaction %s", m.TransactionID)
}

func (r *PgxTransactionRepository) DeleteTransaction(ctx context.Context, transactionID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, transactionID)
	return exactlyOne(tag, err, fmt.Errorf("%w: %s", apperrors.ErrTransactionNotFound, transactionID),
		"failed to delete transaction %s", transactionID)
}
