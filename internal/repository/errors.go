package repository

import "errors"

// Repository errors
var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrDuplicateNumber    = errors.New("account number already exists")
	ErrTxAlreadyFinished  = errors.New("ledger unit already committed or rolled back")
)
