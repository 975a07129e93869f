package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"accounts-api/internal/model"
	"accounts-api/internal/service"
)

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

func writeErrorResponse(w http.ResponseWriter, statusCode int, message, code string) {
	writeJSON(w, statusCode, model.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError converts service errors to HTTP responses. Per
// the API contract, business-rule rejections (inactive account,
// insufficient funds) and store conflicts are 400s, not 4xx variants.
func handleServiceError(w http.ResponseWriter, err error) {
	var serviceErr *service.ServiceError
	if errors.As(err, &serviceErr) {
		switch serviceErr.Code {
		case model.ErrCodeNotFound:
			writeErrorResponse(w, http.StatusNotFound, serviceErr.Message, serviceErr.Code)
		case model.ErrCodeValidation,
			model.ErrCodeAccountNotActive,
			model.ErrCodeInsufficientFunds,
			model.ErrCodeConflict:
			writeErrorResponse(w, http.StatusBadRequest, serviceErr.Message, serviceErr.Code)
		default:
			writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", model.ErrCodeInternalError)
		}
		return
	}

	writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", model.ErrCodeInternalError)
}
