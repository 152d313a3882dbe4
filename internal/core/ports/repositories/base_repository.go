package repositories

import (
	"context"
)

// TransactionManager runs a unit of work. fn receives a Store bound to one store transaction;
// the transaction commits when fn returns nil and rolls back on every other exit path,
// panics included. Begin, commit and rollback failures surface as apperrors.ErrPersistence.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

// UnitOfWork is the persistence port used by the services: a Store for plain reads plus
// transactional scoping for every mutation.
type UnitOfWork interface {
	Store
	TransactionManager
	Close()
}
