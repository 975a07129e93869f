package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"accounts-api/internal/model"
)

// MovementRepository handles the append-only movement ledger. There is
// deliberately no update or delete: movements are immutable once
// written.
type MovementRepository struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewMovementRepository creates a new movement repository
func NewMovementRepository(db *sql.DB, logger *logrus.Logger) *MovementRepository {
	return &MovementRepository{db: db, logger: logger}
}

// Append writes one movement row.
func (r *MovementRepository) Append(ctx context.Context, q Querier, m *model.Movement) error {
	query := `
		INSERT INTO movements (id, account_id, type, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	err := q.QueryRowContext(ctx, query,
		m.ID,
		m.AccountID,
		m.Type,
		m.Amount,
		m.Description,
	).Scan(&m.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append movement: %w", err)
	}

	return nil
}

// ListByAccount retrieves all movements for an account, newest first.
// An unknown account yields an empty list, not an error.
func (r *MovementRepository) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]model.Movement, error) {
	query := `
		SELECT id, account_id, type, amount, description, created_at
		FROM movements
		WHERE account_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	defer rows.Close()

	var movements []model.Movement
	for rows.Next() {
		var m model.Movement
		if err := rows.Scan(
			&m.ID,
			&m.AccountID,
			&m.Type,
			&m.Amount,
			&m.Description,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		movements = append(movements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movements: %w", err)
	}

	return movements, nil
}
