package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"accounts-api/internal/model"
	"accounts-api/internal/repository"
)

// Mode selects how balance operations are applied to the store.
type Mode string

const (
	// ModeAtomic runs each deposit/withdraw as one locked transaction:
	// the balance write and the movement append land together or not at
	// all, and concurrent operations on the same account serialize.
	ModeAtomic Mode = "atomic"

	// ModeNaive is an unlocked read, guard checks in the caller, then
	// two independent writes. Two concurrent withdrawals can both pass
	// the sufficiency check against the same starting balance (lost
	// update). Kept selectable for comparison and demos.
	ModeNaive Mode = "naive"
)

// ParseMode validates a configured ledger mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAtomic, ModeNaive:
		return Mode(s), nil
	case "":
		return ModeAtomic, nil
	default:
		return "", fmt.Errorf("unknown ledger mode %q", s)
	}
}

// Default movement descriptions.
const (
	defaultDepositDescription  = "Depósito"
	defaultWithdrawDescription = "Retiro"
)

// BalanceService mutates account balances and appends the paired
// ledger movements.
type BalanceService struct {
	store  repository.Store
	mode   Mode
	logger *logrus.Logger
}

// NewBalanceService creates a new balance service
func NewBalanceService(store repository.Store, mode Mode, logger *logrus.Logger) *BalanceService {
	return &BalanceService{
		store:  store,
		mode:   mode,
		logger: logger,
	}
}

// Deposit credits the amount to an ACTIVA account and appends a
// DEPOSITO movement.
func (s *BalanceService) Deposit(ctx context.Context, accountID uuid.UUID, req *model.BalanceChangeRequest) (*model.Account, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	description := req.Description
	if description == "" {
		description = defaultDepositDescription
	}

	return s.apply(ctx, accountID, model.MovementTypeDeposito, req.Amount, description)
}

// Withdraw debits the amount from an ACTIVA account with sufficient
// funds and appends a RETIRO movement.
func (s *BalanceService) Withdraw(ctx context.Context, accountID uuid.UUID, req *model.BalanceChangeRequest) (*model.Account, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	description := req.Description
	if description == "" {
		description = defaultWithdrawDescription
	}

	return s.apply(ctx, accountID, model.MovementTypeRetiro, req.Amount, description)
}

// ListMovements returns the account's ledger, newest first. Reads are
// by account only; an unknown account yields an empty ledger.
func (s *BalanceService) ListMovements(ctx context.Context, accountID uuid.UUID) ([]model.Movement, error) {
	movements, err := s.store.ListMovements(ctx, accountID)
	if err != nil {
		s.logger.WithError(err).WithField("accountId", accountID).Error("Failed to list movements")
		return nil, err
	}
	if movements == nil {
		movements = []model.Movement{}
	}
	return movements, nil
}

// apply performs one balance operation: read the account, check the
// status and funds guards, write the new balance and append exactly
// one movement. The store unit decides whether those steps are atomic.
func (s *BalanceService) apply(ctx context.Context, accountID uuid.UUID, mvType model.MovementType, amount decimal.Decimal, description string) (*model.Account, error) {
	unit, err := s.store.Begin(ctx, s.mode == ModeAtomic)
	if err != nil {
		return nil, err
	}
	defer unit.Rollback()

	acc, err := unit.Account(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, errAccountNotFound
		}
		return nil, err
	}

	if acc.Status != model.AccountStatusActiva {
		return nil, &ServiceError{
			Code:    model.ErrCodeAccountNotActive,
			Message: "Account is not active",
		}
	}

	newBalance := acc.Balance.Add(amount)
	if mvType == model.MovementTypeRetiro {
		if acc.Balance.LessThan(amount) {
			s.logger.WithFields(logrus.Fields{
				"accountId": accountID,
				"balance":   acc.Balance,
				"amount":    amount,
			}).Warn("Withdrawal rejected: insufficient funds")
			return nil, &ServiceError{
				Code:    model.ErrCodeInsufficientFunds,
				Message: "Insufficient funds",
			}
		}
		newBalance = acc.Balance.Sub(amount)
	}

	if err := unit.SetBalance(ctx, accountID, newBalance); err != nil {
		return nil, err
	}

	movement := &model.Movement{
		ID:          uuid.New(),
		AccountID:   accountID,
		Type:        mvType,
		Amount:      amount,
		Description: description,
	}
	if err := unit.AppendMovement(ctx, movement); err != nil {
		return nil, err
	}

	if err := unit.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit balance operation: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"accountId": accountID,
		"type":      mvType,
		"amount":    amount,
		"balance":   newBalance,
	}).Info("Balance operation applied")

	acc.Balance = newBalance
	return acc, nil
}
