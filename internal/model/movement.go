package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementType identifies the kind of balance-affecting event.
type MovementType string

const (
	MovementTypeDeposito     MovementType = "DEPOSITO"
	MovementTypeRetiro       MovementType = "RETIRO"
	MovementTypePagoServicio MovementType = "PAGO_SERVICIO"
)

// Movement is an immutable ledger entry recording a single balance
// change on an account. Movements are append-only: once written they
// are never updated or removed.
type Movement struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	AccountID   uuid.UUID       `json:"accountId" db:"account_id"`
	Type        MovementType    `json:"type" db:"type"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Description string          `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

// BalanceChangeRequest carries the body of a deposit or withdraw call.
type BalanceChangeRequest struct {
	Amount      decimal.Decimal
	Description string
}

// UnmarshalJSON accepts the amount as either a JSON number or a
// numeric string. Values that do not coerce to a number are left as
// zero so Validate reports them as an invalid amount.
func (r *BalanceChangeRequest) UnmarshalJSON(data []byte) error {
	var temp struct {
		Amount      json.RawMessage `json:"amount"`
		Description string          `json:"description"`
	}

	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}

	r.Description = temp.Description
	r.Amount = decimal.Zero

	if len(temp.Amount) > 0 {
		if d, err := parseAmount(temp.Amount); err == nil {
			r.Amount = d
		}
	}

	return nil
}

func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return decimal.NewFromString(num.String())
	}

	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromString(str)
}

// Validate validates the balance change request
func (r *BalanceChangeRequest) Validate() error {
	if !r.Amount.IsPositive() {
		return &ValidationError{
			Field:   "amount",
			Message: "amount must be a positive number",
		}
	}
	return nil
}
