package model

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK       bool           `json:"ok"`
	Service  string         `json:"service"`
	Database DatabaseHealth `json:"database"`
}

// DatabaseHealth represents database connectivity status
type DatabaseHealth struct {
	Status         string `json:"status"`
	ConnectionPool string `json:"connection_pool,omitempty"`
}

// Common error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeAccountNotActive  = "ACCOUNT_NOT_ACTIVE"
	ErrCodeInsufficientFunds = "INSUFFICIENT_FUNDS"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)
