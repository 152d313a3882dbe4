// Package sqlite is a single user, file backed implementation of the persistence port.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/SscSPs/money_tracker/internal/apperrors"
	"github.com/SscSPs/money_tracker/internal/core/domain"
	portsrepo "github.com/SscSPs/money_tracker/internal/core/ports/repositories"

	_ "modernc.org/sqlite"
)

const (
	dayLayout = "2006-01-02"
	// fixed width so that text order equals time order
	tsLayout = "2006-01-02T15:04:05.000000000Z"
)

func day(t time.Time) string { return domain.TruncateDay(t).Format(dayLayout) }
func ts(t time.Time) string  { return t.UTC().Format(tsLayout) }

func parseDay(s string) (time.Time, error) { return time.ParseInLocation(dayLayout, s, time.UTC) }
func parseTS(s string) (time.Time, error)  { return time.ParseInLocation(tsLayout, s, time.UTC) }

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

type base struct {
	db querier
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func notFoundOr(err error, notFound error, msg string, args ...any) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	return fmt.Errorf(msg+": %w", append(args, err)...)
}

func exactlyOne(res sql.Result, err error, notFound error, msg string, args ...any) error {
	if err != nil {
		return fmt.Errorf(msg+": %w", append(args, err)...)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf(msg+": %w", append(args, err)...)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

type store struct {
	accounts     *accountRepository
	categories   *categoryRepository
	transactions *transactionRepository
	budgets      *budgetRepository
}

func newStore(db querier) *store {
	b := base{db: db}
	return &store{
		accounts:     &accountRepository{b},
		categories:   &categoryRepository{b},
		transactions: &transactionRepository{b},
		budgets:      &budgetRepository{b},
	}
}

func (s *store) Accounts() portsrepo.AccountRepositoryFacade         { return s.accounts }
func (s *store) Categories() portsrepo.CategoryRepositoryFacade      { return s.categories }
func (s *store) Transactions() portsrepo.TransactionRepositoryFacade { return s.transactions }
func (s *store) Budgets() portsrepo.BudgetRepositoryFacade           { return s.budgets }

// UnitOfWork serialises every unit of work through one connection.
type UnitOfWork struct {
	*store
	db *sql.DB
}

var _ portsrepo.UnitOfWork = (*UnitOfWork)(nil)

// DSN builds the modernc connection string for a database file.
func DSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// Open migrates the database file at path and returns a unit of work over it.
func Open(path string) (*UnitOfWork, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	if err := RunMigrations(DSN(path)); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &UnitOfWork{store: newStore(db), db: db}, nil
}

// WithinTx runs fn inside one SQLite transaction.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.Store) error) (err error) {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewPersistenceError("failed to begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, apperrors.NewPersistenceError("failed to rollback transaction", rbErr))
			}
		}
	}()

	if err = fn(ctx, newStore(tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return apperrors.NewPersistenceError("failed to commit transaction", err)
	}
	return nil
}

// Close closes the database handle.
func (u *UnitOfWork) Close() {
	_ = u.db.Close()
}
