package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"accounts-api/internal/model"
	"accounts-api/internal/service"
)

// AccountHandler handles account lifecycle HTTP requests
type AccountHandler struct {
	accounts *service.AccountService
	logger   *logrus.Logger
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(accounts *service.AccountService, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		logger:   logger,
	}
}

// RegisterRoutes registers the account lifecycle routes
func (h *AccountHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("", h.List).Methods(http.MethodGet)
	router.HandleFunc("", h.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", h.Get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", h.Update).Methods(http.MethodPatch)
}

// Create handles POST /accounts
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON", model.ErrCodeValidation)
		return
	}

	acc, err := h.accounts.CreateAccount(r.Context(), &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, acc)
}

// List handles GET /accounts?clientId=
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("clientId")

	accounts, err := h.accounts.ListAccounts(r.Context(), clientID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accounts)
}

// Get handles GET /accounts/{id}
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	acc, err := h.accounts.GetAccount(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, acc)
}

// Update handles PATCH /accounts/{id}
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}

	var req model.UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON", model.ErrCodeValidation)
		return
	}

	acc, err := h.accounts.UpdateAccount(r.Context(), id, &req)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, acc)
}

// accountID extracts the {id} path variable. A malformed identifier is
// indistinguishable from a missing account and maps to 404.
func accountID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, "Account not found", model.ErrCodeNotFound)
		return uuid.Nil, false
	}
	return id, true
}
