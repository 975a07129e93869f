package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"accounts-api/internal/model"
)

const accountColumns = "id, client_id, number, type, currency, alias, balance, status, created_at, updated_at"

// AccountRepository handles account-related database operations
type AccountRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *sql.DB, logger *logrus.Logger) *AccountRepository {
	return &AccountRepository{db: db, logger: logger}
}

// Create inserts a new account. A clash on the unique account number
// is reported as ErrDuplicateNumber so the caller can retry with a
// fresh number.
func (r *AccountRepository) Create(ctx context.Context, acc *model.Account) error {
	query := `
		INSERT INTO accounts (id, client_id, number, type, currency, alias, balance, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		acc.ID,
		acc.ClientID,
		acc.Number,
		acc.Type,
		acc.Currency,
		acc.Alias,
		acc.Balance,
		acc.Status,
	).Scan(&acc.CreatedAt, &acc.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			r.logger.WithField("number", acc.Number).Warn("Account number collision on create")
			return ErrDuplicateNumber
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its ID
func (r *AccountRepository) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*model.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
	`
	return r.scanAccount(q.QueryRowContext(ctx, query, id))
}

// GetForUpdate retrieves an account with a row-level lock. It must run
// inside a transaction; the lock is held until commit or rollback.
func (r *AccountRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*model.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`
	return r.scanAccount(tx.QueryRowContext(ctx, query, id))
}

// List retrieves accounts newest-first, optionally filtered by client.
func (r *AccountRepository) List(ctx context.Context, clientID string) ([]model.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
	`
	var args []any
	if clientID != "" {
		query += ` WHERE client_id = $1`
		args = append(args, clientID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var acc model.Account
		if err := rows.Scan(
			&acc.ID,
			&acc.ClientID,
			&acc.Number,
			&acc.Type,
			&acc.Currency,
			&acc.Alias,
			&acc.Balance,
			&acc.Status,
			&acc.CreatedAt,
			&acc.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, acc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// Update applies the fields present in upd and returns the updated
// account. Alias and status never touch the balance.
func (r *AccountRepository) Update(ctx context.Context, id uuid.UUID, upd model.UpdateAccountRequest) (*model.Account, error) {
	set := []string{"updated_at = NOW()"}
	args := []any{id}

	if upd.Alias != nil {
		args = append(args, *upd.Alias)
		set = append(set, fmt.Sprintf("alias = $%d", len(args)))
	}
	if upd.Status != nil {
		args = append(args, *upd.Status)
		set = append(set, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `
		UPDATE accounts
		SET ` + strings.Join(set, ", ") + `
		WHERE id = $1
		RETURNING ` + accountColumns

	return r.scanAccount(r.db.QueryRowContext(ctx, query, args...))
}

// UpdateBalance writes the new balance for an account.
func (r *AccountRepository) UpdateBalance(ctx context.Context, q Querier, id uuid.UUID, balance decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := q.ExecContext(ctx, query, balance, id)
	if err != nil {
		return fmt.Errorf("failed to update account balance: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrAccountNotFound
	}

	return nil
}

func (r *AccountRepository) scanAccount(row *sql.Row) (*model.Account, error) {
	acc := &model.Account{}
	err := row.Scan(
		&acc.ID,
		&acc.ClientID,
		&acc.Number,
		&acc.Type,
		&acc.Currency,
		&acc.Alias,
		&acc.Balance,
		&acc.Status,
		&acc.CreatedAt,
		&acc.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return acc, nil
}
