package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"accounts-api/internal/model"
)

// Querier is the subset of database/sql operations shared by *sql.DB
// and *sql.Tx, so repository methods can run either inside or outside
// a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the persistence boundary of the account ledger.
type Store interface {
	CreateAccount(ctx context.Context, acc *model.Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (*model.Account, error)
	ListAccounts(ctx context.Context, clientID string) ([]model.Account, error)
	UpdateAccount(ctx context.Context, id uuid.UUID, upd model.UpdateAccountRequest) (*model.Account, error)
	ListMovements(ctx context.Context, accountID uuid.UUID) ([]model.Movement, error)

	// Begin opens a ledger unit for one balance operation. With locking
	// the unit is a real transaction and Account takes a row lock, so
	// the balance write and the movement append land atomically or not
	// at all. Without locking every call hits the store directly and
	// Commit/Rollback are no-ops, leaving the read-then-write sequence
	// unguarded.
	Begin(ctx context.Context, locking bool) (Tx, error)
}

// Tx is a single deposit/withdraw unit against the store.
type Tx interface {
	Account(ctx context.Context, id uuid.UUID) (*model.Account, error)
	SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error
	AppendMovement(ctx context.Context, m *model.Movement) error
	Commit() error
	Rollback() error
}
