package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"accounts-api/internal/model"
)

// PostgresStore implements Store on top of PostgreSQL.
type PostgresStore struct {
	db        *sql.DB
	accounts  *AccountRepository
	movements *MovementRepository
}

// NewPostgresStore creates a new Postgres-backed store
func NewPostgresStore(db *sql.DB, logger *logrus.Logger) *PostgresStore {
	return &PostgresStore{
		db:        db,
		accounts:  NewAccountRepository(db, logger),
		movements: NewMovementRepository(db, logger),
	}
}

func (s *PostgresStore) CreateAccount(ctx context.Context, acc *model.Account) error {
	return s.accounts.Create(ctx, acc)
}

func (s *PostgresStore) GetAccount(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	return s.accounts.GetByID(ctx, s.db, id)
}

func (s *PostgresStore) ListAccounts(ctx context.Context, clientID string) ([]model.Account, error) {
	return s.accounts.List(ctx, clientID)
}

func (s *PostgresStore) UpdateAccount(ctx context.Context, id uuid.UUID, upd model.UpdateAccountRequest) (*model.Account, error) {
	return s.accounts.Update(ctx, id, upd)
}

func (s *PostgresStore) ListMovements(ctx context.Context, accountID uuid.UUID) ([]model.Movement, error) {
	return s.movements.ListByAccount(ctx, accountID)
}

// Begin opens a ledger unit. In locking mode it is a serializable SQL
// transaction and Account takes a FOR UPDATE row lock; in naive mode
// every statement autocommits on the shared pool and concurrent units
// may interleave between read and write.
func (s *PostgresStore) Begin(ctx context.Context, locking bool) (Tx, error) {
	if !locking {
		return &ledgerTx{store: s}, nil
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelSerializable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &ledgerTx{store: s, tx: tx}, nil
}

// ledgerTx is one balance operation against Postgres. tx is nil in
// naive mode.
type ledgerTx struct {
	store *PostgresStore
	tx    *sql.Tx
	done  bool
}

func (t *ledgerTx) querier() Querier {
	if t.tx != nil {
		return t.tx
	}
	return t.store.db
}

func (t *ledgerTx) Account(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	if t.tx != nil {
		return t.store.accounts.GetForUpdate(ctx, t.tx, id)
	}
	return t.store.accounts.GetByID(ctx, t.store.db, id)
}

func (t *ledgerTx) SetBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	return t.store.accounts.UpdateBalance(ctx, t.querier(), id, balance)
}

func (t *ledgerTx) AppendMovement(ctx context.Context, m *model.Movement) error {
	return t.store.movements.Append(ctx, t.querier(), m)
}

func (t *ledgerTx) Commit() error {
	if t.done {
		return ErrTxAlreadyFinished
	}
	t.done = true
	if t.tx != nil {
		return t.tx.Commit()
	}
	return nil
}

func (t *ledgerTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if t.tx != nil {
		return t.tx.Rollback()
	}
	return nil
}
