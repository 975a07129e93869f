package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"accounts-api/internal/model"
	"accounts-api/internal/repository/memory"
	"accounts-api/internal/service"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memory.NewStore()
	accountService := service.NewAccountService(store, logger)
	balanceService := service.NewBalanceService(store, service.ModeAtomic, logger)

	router := mux.NewRouter()
	accountRouter := router.PathPrefix("/accounts").Subrouter()
	NewAccountHandler(accountService, logger).RegisterRoutes(accountRouter)
	NewBalanceHandler(balanceService, logger).RegisterRoutes(accountRouter)

	var h http.Handler = router
	h = LoggingMiddleware(logger)(h)
	h = CORSMiddleware()(h)
	h = IdentityMiddleware()(h)
	return h
}

func doJSON(t *testing.T, h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeAccount(t *testing.T, rec *httptest.ResponseRecorder) model.Account {
	t.Helper()
	var acc model.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &acc))
	return acc
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAccountLifecycleFlow(t *testing.T) {
	h := newTestRouter(t)

	// Open an account.
	rec := doJSON(t, h, http.MethodPost, "/accounts", `{"clientId": "c1", "alias": "nómina"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	acc := decodeAccount(t, rec)
	assert.Equal(t, "c1", acc.ClientID)
	assert.Equal(t, "nómina", acc.Alias)
	assert.Equal(t, model.AccountStatusActiva, acc.Status)
	assert.True(t, acc.Balance.IsZero())
	id := acc.ID.String()

	// Deposit, then withdraw.
	rec = doJSON(t, h, http.MethodPost, "/accounts/"+id+"/deposit", `{"amount": 100}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "100", decodeAccount(t, rec).Balance.String())

	rec = doJSON(t, h, http.MethodPost, "/accounts/"+id+"/withdraw", `{"amount": 30, "description": "cajero"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "70", decodeAccount(t, rec).Balance.String())

	// The stored account reflects both operations.
	rec = doJSON(t, h, http.MethodGet, "/accounts/"+id, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "70", decodeAccount(t, rec).Balance.String())

	// Movements come back newest first.
	rec = doJSON(t, h, http.MethodGet, "/accounts/"+id+"/movements", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var movements []model.Movement
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movements))
	require.Len(t, movements, 2)
	assert.Equal(t, model.MovementTypeRetiro, movements[0].Type)
	assert.Equal(t, "cajero", movements[0].Description)
	assert.Equal(t, model.MovementTypeDeposito, movements[1].Type)
	assert.Equal(t, "Depósito", movements[1].Description)

	// Block the account; balance operations start failing.
	rec = doJSON(t, h, http.MethodPatch, "/accounts/"+id, `{"status": "BLOQUEADA"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.AccountStatusBloqueada, decodeAccount(t, rec).Status)

	rec = doJSON(t, h, http.MethodPost, "/accounts/"+id+"/deposit", `{"amount": 10}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, model.ErrCodeAccountNotActive, decodeError(t, rec).Code)
}

func TestListAccountsEndpoint(t *testing.T) {
	h := newTestRouter(t)

	doJSON(t, h, http.MethodPost, "/accounts", `{"clientId": "c1"}`, nil)
	doJSON(t, h, http.MethodPost, "/accounts", `{"clientId": "c2"}`, nil)

	rec := doJSON(t, h, http.MethodGet, "/accounts", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []model.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	require.Len(t, all, 2)
	// Newest first.
	assert.Equal(t, "c2", all[0].ClientID)
	assert.Equal(t, "c1", all[1].ClientID)

	rec = doJSON(t, h, http.MethodGet, "/accounts?clientId=c1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var filtered []model.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &filtered))
	require.Len(t, filtered, 1)
	assert.Equal(t, "c1", filtered[0].ClientID)

	// An unknown client yields an empty array, not null.
	rec = doJSON(t, h, http.MethodGet, "/accounts?clientId=c3", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestErrorStatuses(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/accounts", `{"clientId": "c1"}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeAccount(t, rec).ID.String()

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{
			name:     "create without clientId",
			method:   http.MethodPost,
			path:     "/accounts",
			body:     `{}`,
			wantCode: http.StatusBadRequest,
			wantErr:  model.ErrCodeValidation,
		},
		{
			name:     "create with malformed JSON",
			method:   http.MethodPost,
			path:     "/accounts",
			body:     `{"clientId":`,
			wantCode: http.StatusBadRequest,
			wantErr:  model.ErrCodeValidation,
		},
		{
			name:     "get unknown account",
			method:   http.MethodGet,
			path:     "/accounts/0b836162-37d2-42f4-b2f6-0e84e4f1f0d1",
			wantCode: http.StatusNotFound,
			wantErr:  model.ErrCodeNotFound,
		},
		{
			name:     "get with malformed id",
			method:   http.MethodGet,
			path:     "/accounts/not-a-uuid",
			wantCode: http.StatusNotFound,
			wantErr:  model.ErrCodeNotFound,
		},
		{
			name:     "deposit with malformed id",
			method:   http.MethodPost,
			path:     "/accounts/not-a-uuid/deposit",
			body:     `{"amount": 10}`,
			wantCode: http.StatusNotFound,
			wantErr:  model.ErrCodeNotFound,
		},
		{
			name:     "deposit with non-positive amount",
			method:   http.MethodPost,
			path:     "/accounts/" + id + "/deposit",
			body:     `{"amount": 0}`,
			wantCode: http.StatusBadRequest,
			wantErr:  model.ErrCodeValidation,
		},
		{
			name:     "withdraw beyond balance",
			method:   http.MethodPost,
			path:     "/accounts/" + id + "/withdraw",
			body:     `{"amount": 50}`,
			wantCode: http.StatusBadRequest,
			wantErr:  model.ErrCodeInsufficientFunds,
		},
		{
			name:     "patch with unknown status",
			method:   http.MethodPatch,
			path:     "/accounts/" + id,
			body:     `{"status": "SUSPENDIDA"}`,
			wantCode: http.StatusBadRequest,
			wantErr:  model.ErrCodeValidation,
		},
		{
			name:     "movements with malformed id",
			method:   http.MethodGet,
			path:     "/accounts/not-a-uuid/movements",
			wantCode: http.StatusNotFound,
			wantErr:  model.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, h, tt.method, tt.path, tt.body, nil)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantErr, decodeError(t, rec).Code)
		})
	}
}

func TestMovementsForUnknownAccount(t *testing.T) {
	h := newTestRouter(t)

	// An unknown but well-formed id lists an empty ledger.
	rec := doJSON(t, h, http.MethodGet, "/accounts/0b836162-37d2-42f4-b2f6-0e84e4f1f0d1/movements", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

// Identity headers are recorded but never enforced: a request with no
// caller identity behaves the same as one with headers.
func TestIdentityHeadersNotEnforced(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodPost, "/accounts", `{"clientId": "c1"}`, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/accounts", `{"clientId": "c2"}`, map[string]string{
		"X-User-Id":   "u-42",
		"X-User-Role": "admin",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(t)

	rec := doJSON(t, h, http.MethodOptions, "/accounts", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "X-User-Id")
}

func TestHealthWithoutDatabase(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	NewHealthHandler(nil).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp model.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, "accounts", resp.Service)
	assert.Equal(t, "unhealthy", resp.Database.Status)
}
