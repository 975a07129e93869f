package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"accounts-api/internal/model"
	"accounts-api/internal/service"
)

// BalanceHandler handles deposit/withdraw operations and the movement
// ledger listing.
type BalanceHandler struct {
	balances *service.BalanceService
	logger   *logrus.Logger
}

// NewBalanceHandler creates a new balance handler
func NewBalanceHandler(balances *service.BalanceService, logger *logrus.Logger) *BalanceHandler {
	return &BalanceHandler{
		balances: balances,
		logger:   logger,
	}
}

// RegisterRoutes registers the balance operation routes
func (h *BalanceHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/{id}/deposit", h.Deposit).Methods(http.MethodPost)
	router.HandleFunc("/{id}/withdraw", h.Withdraw).Methods(http.MethodPost)
	router.HandleFunc("/{id}/movements", h.ListMovements).Methods(http.MethodGet)
}

// Deposit handles POST /accounts/{id}/deposit
func (h *BalanceHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	var req model.BalanceChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON", model.ErrCodeValidation)
		return
	}

	h.logOperation(r, "deposit", id.String())

	acc, err := h.balances.Deposit(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, acc)
}

// Withdraw handles POST /accounts/{id}/withdraw
func (h *BalanceHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	var req model.BalanceChangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON", model.ErrCodeValidation)
		return
	}

	h.logOperation(r, "withdraw", id.String())

	acc, err := h.balances.Withdraw(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, acc)
}

// ListMovements handles GET /accounts/{id}/movements
func (h *BalanceHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	movements, err := h.balances.ListMovements(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, movements)
}

// logOperation records who asked for a balance mutation. The caller
// identity comes from the gateway and is not enforced here.
func (h *BalanceHandler) logOperation(r *http.Request, operation, accountID string) {
	fields := logrus.Fields{
		"operation": operation,
		"accountId": accountID,
	}
	if caller, ok := CallerFrom(r.Context()); ok {
		fields["userId"] = caller.ID
		fields["role"] = caller.Role
	}
	h.logger.WithFields(fields).Info("Balance operation requested")
}
