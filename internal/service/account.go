package service

import (
	"context"
	"errors"
	"math/rand"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"accounts-api/internal/model"
	"accounts-api/internal/repository"
)

// Account numbers are 10-digit strings drawn at random; a clash with
// an existing number is retried with a fresh draw before giving up.
const maxNumberAttempts = 5

// AccountService handles account lifecycle business logic
type AccountService struct {
	store  repository.Store
	logger *logrus.Logger

	// newNumber is swapped out by tests to force number collisions.
	newNumber func() string
}

// NewAccountService creates a new account service
func NewAccountService(store repository.Store, logger *logrus.Logger) *AccountService {
	return &AccountService{
		store:     store,
		logger:    logger,
		newNumber: randomAccountNumber,
	}
}

// CreateAccount opens a new account for a client. The clientId is an
// opaque reference to the clients service and is not validated here.
// New accounts start with a zero balance and ACTIVA status.
func (s *AccountService) CreateAccount(ctx context.Context, req *model.CreateAccountRequest) (*model.Account, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	accountType := req.Type
	if accountType == "" {
		accountType = model.AccountTypeAhorro
	}
	currency := req.Currency
	if currency == "" {
		currency = model.CurrencyBOB
	}

	for attempt := 0; attempt < maxNumberAttempts; attempt++ {
		acc := &model.Account{
			ID:       uuid.New(),
			ClientID: req.ClientID,
			Number:   s.newNumber(),
			Type:     accountType,
			Currency: currency,
			Alias:    req.Alias,
			Balance:  decimal.Zero,
			Status:   model.AccountStatusActiva,
		}

		err := s.store.CreateAccount(ctx, acc)
		if err == nil {
			s.logger.WithFields(logrus.Fields{
				"accountId": acc.ID,
				"clientId":  acc.ClientID,
				"number":    acc.Number,
			}).Info("Account created")
			return acc, nil
		}
		if errors.Is(err, repository.ErrDuplicateNumber) {
			continue
		}

		s.logger.WithError(err).Error("Failed to create account")
		return nil, err
	}

	return nil, &ServiceError{
		Code:    model.ErrCodeConflict,
		Message: "Could not allocate a unique account number",
	}
}

// ListAccounts returns all accounts newest-first, optionally filtered
// to a single client.
func (s *AccountService) ListAccounts(ctx context.Context, clientID string) ([]model.Account, error) {
	accounts, err := s.store.ListAccounts(ctx, clientID)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list accounts")
		return nil, err
	}
	if accounts == nil {
		accounts = []model.Account{}
	}
	return accounts, nil
}

// GetAccount retrieves an account by ID
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	acc, err := s.store.GetAccount(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, errAccountNotFound
		}
		return nil, err
	}
	return acc, nil
}

// UpdateAccount applies a partial update of alias and/or status. Any
// status may follow any other; no transition graph is enforced.
func (s *AccountService) UpdateAccount(ctx context.Context, id uuid.UUID, req *model.UpdateAccountRequest) (*model.Account, error) {
	if err := req.Validate(); err != nil {
		return nil, validationError(err)
	}

	acc, err := s.store.UpdateAccount(ctx, id, *req)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, errAccountNotFound
		}
		s.logger.WithError(err).WithField("accountId", id).Error("Failed to update account")
		return nil, err
	}

	if req.Status != nil {
		s.logger.WithFields(logrus.Fields{
			"accountId": acc.ID,
			"status":    acc.Status,
		}).Info("Account status changed")
	}
	return acc, nil
}

func randomAccountNumber() string {
	return strconv.FormatInt(1_000_000_000+rand.Int63n(9_000_000_000), 10)
}

// ServiceError represents a service-level error
type ServiceError struct {
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

var errAccountNotFound = &ServiceError{
	Code:    model.ErrCodeNotFound,
	Message: "Account not found",
}

func validationError(err error) error {
	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		return &ServiceError{
			Code:    model.ErrCodeValidation,
			Message: validationErr.Message,
		}
	}
	return err
}
