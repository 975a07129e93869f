package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType distinguishes savings from checking accounts.
type AccountType string

const (
	AccountTypeAhorro    AccountType = "AHORRO"
	AccountTypeCorriente AccountType = "CORRIENTE"
)

// Currency is the account's denomination currency.
type Currency string

const (
	CurrencyBOB Currency = "BOB"
	CurrencyUSD Currency = "USD"
)

// AccountStatus gates balance operations: only ACTIVA accounts accept
// deposits and withdrawals. Any status may follow any other.
type AccountStatus string

const (
	AccountStatusActiva    AccountStatus = "ACTIVA"
	AccountStatusBloqueada AccountStatus = "BLOQUEADA"
	AccountStatusCerrada   AccountStatus = "CERRADA"
)

// Account represents a bank account and its current balance
type Account struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	ClientID  string          `json:"clientId" db:"client_id"`
	Number    string          `json:"number" db:"number"`
	Type      AccountType     `json:"type" db:"type"`
	Currency  Currency        `json:"currency" db:"currency"`
	Alias     string          `json:"alias,omitempty" db:"alias"`
	Balance   decimal.Decimal `json:"balance" db:"balance"`
	Status    AccountStatus   `json:"status" db:"status"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// CreateAccountRequest represents the request to open a new account.
// Type and currency fall back to AHORRO/BOB when omitted.
type CreateAccountRequest struct {
	ClientID string      `json:"clientId"`
	Type     AccountType `json:"type,omitempty"`
	Currency Currency    `json:"currency,omitempty"`
	Alias    string      `json:"alias,omitempty"`
}

// Validate validates the create account request
func (r *CreateAccountRequest) Validate() error {
	if strings.TrimSpace(r.ClientID) == "" {
		return &ValidationError{
			Field:   "clientId",
			Message: "clientId is required",
		}
	}

	switch r.Type {
	case "", AccountTypeAhorro, AccountTypeCorriente:
	default:
		return &ValidationError{
			Field:   "type",
			Message: "type must be AHORRO or CORRIENTE",
		}
	}

	switch r.Currency {
	case "", CurrencyBOB, CurrencyUSD:
	default:
		return &ValidationError{
			Field:   "currency",
			Message: "currency must be BOB or USD",
		}
	}

	return nil
}

// UpdateAccountRequest is a partial update of the non-monetary account
// fields. A field is applied only when its key is present in the JSON
// payload: an explicit empty alias clears the alias, an absent key
// leaves it untouched.
type UpdateAccountRequest struct {
	Alias  *string        `json:"alias"`
	Status *AccountStatus `json:"status"`
}

// Validate validates the update account request
func (r *UpdateAccountRequest) Validate() error {
	if r.Status != nil {
		switch *r.Status {
		case AccountStatusActiva, AccountStatusBloqueada, AccountStatusCerrada:
		default:
			return &ValidationError{
				Field:   "status",
				Message: "status must be ACTIVA, BLOQUEADA or CERRADA",
			}
		}
	}
	return nil
}

// IsEmpty reports whether the request carries no changes at all.
func (r *UpdateAccountRequest) IsEmpty() bool {
	return r.Alias == nil && r.Status == nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}
