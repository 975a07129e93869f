// Package memory provides an in-memory Store implementation. It backs
// the unit and HTTP tests so they run without PostgreSQL, and mirrors
// the locking semantics of the Postgres store: a locking ledger unit
// holds a store-wide lock from Begin to Commit, a naive unit does not.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"accounts-api/internal/model"
	"accounts-api/internal/repository"
)

// Store is an in-memory implementation of repository.Store.
type Store struct {
	mu       sync.Mutex
	ledgerMu sync.Mutex

	accounts  map[uuid.UUID]*model.Account
	order     []uuid.UUID
	numbers   map[string]bool
	movements map[uuid.UUID][]model.Movement

	// ReadHook, when set, runs after a non-locking ledger unit reads an
	// account and before any write. Tests use it to force the
	// interleaving that exposes the lost-update race.
	ReadHook func()
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		accounts:  make(map[uuid.UUID]*model.Account),
		numbers:   make(map[string]bool),
		movements: make(map[uuid.UUID][]model.Movement),
	}
}

func (s *Store) CreateAccount(_ context.Context, acc *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.numbers[acc.Number] {
		return repository.ErrDuplicateNumber
	}

	now := time.Now()
	acc.CreatedAt = now
	acc.UpdatedAt = now

	cp := *acc
	s.accounts[acc.ID] = &cp
	s.order = append(s.order, acc.ID)
	s.numbers[acc.Number] = true
	return nil
}

func (s *Store) GetAccount(_ context.Context, id uuid.UUID) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

func (s *Store) ListAccounts(_ context.Context, clientID string) ([]model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var accounts []model.Account
	for i := len(s.order) - 1; i >= 0; i-- {
		acc := s.accounts[s.order[i]]
		if clientID != "" && acc.ClientID != clientID {
			continue
		}
		accounts = append(accounts, *acc)
	}
	return accounts, nil
}

func (s *Store) UpdateAccount(_ context.Context, id uuid.UUID, upd model.UpdateAccountRequest) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}

	if upd.Alias != nil {
		acc.Alias = *upd.Alias
	}
	if upd.Status != nil {
		acc.Status = *upd.Status
	}
	acc.UpdatedAt = time.Now()

	cp := *acc
	return &cp, nil
}

func (s *Store) ListMovements(_ context.Context, accountID uuid.UUID) ([]model.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := s.movements[accountID]
	movements := make([]model.Movement, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		movements = append(movements, stored[i])
	}
	return movements, nil
}

func (s *Store) Begin(_ context.Context, locking bool) (repository.Tx, error) {
	if locking {
		s.ledgerMu.Lock()
	}
	return &memTx{store: s, locking: locking}, nil
}

func (s *Store) getLocked(id uuid.UUID) (*model.Account, error) {
	acc, ok := s.accounts[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	cp := *acc
	return &cp, nil
}

// memTx applies writes immediately; with locking the store-wide ledger
// lock serializes whole units, without it units interleave freely.
type memTx struct {
	store   *Store
	locking bool
	done    bool
}

func (t *memTx) Account(_ context.Context, id uuid.UUID) (*model.Account, error) {
	t.store.mu.Lock()
	acc, err := t.store.getLocked(id)
	t.store.mu.Unlock()

	if err == nil && !t.locking && t.store.ReadHook != nil {
		t.store.ReadHook()
	}
	return acc, err
}

func (t *memTx) SetBalance(_ context.Context, id uuid.UUID, balance decimal.Decimal) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	acc, ok := t.store.accounts[id]
	if !ok {
		return repository.ErrAccountNotFound
	}
	acc.Balance = balance
	acc.UpdatedAt = time.Now()
	return nil
}

func (t *memTx) AppendMovement(_ context.Context, m *model.Movement) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	m.CreatedAt = time.Now()
	t.store.movements[m.AccountID] = append(t.store.movements[m.AccountID], *m)
	return nil
}

func (t *memTx) Commit() error {
	if t.done {
		return repository.ErrTxAlreadyFinished
	}
	t.done = true
	if t.locking {
		t.store.ledgerMu.Unlock()
	}
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	if t.locking {
		t.store.ledgerMu.Unlock()
	}
	return nil
}
