package pgsql

import (
	"context"
	"errors"

	"github.com/SscSPs/money_tracker/internal/apperrors"
	portsrepo "github.com/SscSPs/money_tracker/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgStore hands out repositories bound to one querier.
type pgStore struct {
	accounts     *PgxAccountRepository
	categories   *PgxCategoryRepository
	transactions *PgxTransactionRepository
	budgets      *PgxBudgetRepository
}

func newPgStore(db querier) *pgStore {
	base := BaseRepository{db: db}
	return &pgStore{
		accounts:     &PgxAccountRepository{BaseRepository: base},
		categories:   &PgxCategoryRepository{BaseRepository: base},
		transactions: &PgxTransactionRepository{BaseRepository: base},
		budgets:      &PgxBudgetRepository{BaseRepository: base},
	}
}

func (s *pgStore) Accounts() portsrepo.AccountRepositoryFacade         { return s.accounts }
func (s *pgStore) Categories() portsrepo.CategoryRepositoryFacade      { return s.categories }
func (s *pgStore) Transactions() portsrepo.TransactionRepositoryFacade { return s.transactions }
func (s *pgStore) Budgets() portsrepo.BudgetRepositoryFacade           { return s.budgets }

// UnitOfWork is the Postgres implementation of the persistence port.
type UnitOfWork struct {
	*pgStore
	pool *pgxpool.Pool
}

var _ portsrepo.UnitOfWork = (*UnitOfWork)(nil)

// NewUnitOfWork wires the repositories over pool.
func NewUnitOfWork(pool *pgxpool.Pool) *UnitOfWork {
	return &UnitOfWork{pgStore: newPgStore(pool), pool: pool}
}

// WithinTx runs fn inside one database transaction.
func (u *UnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx portsrepo.Store) error) (err error) {
	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return apperrors.NewPersistenceError("failed to begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = rollback(ctx, tx)
			panic(p)
		}
		if err != nil {
			if rbErr := rollback(ctx, tx); rbErr != nil {
				err = errors.Join(err, rbErr)
			}
		}
	}()

	if err = fn(ctx, newPgStore(tx)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return apperrors.NewPersistenceError("failed to commit transaction", err)
	}
	return nil
}

// Close releases the pool.
func (u *UnitOfWork) Close() {
	u.pool.Close()
}
