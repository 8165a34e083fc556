package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adaptershttp "github.com/iho/cantina/internal/adapter/http"
	"github.com/iho/cantina/internal/adapter/http/dto"
	"github.com/iho/cantina/internal/adapter/http/handler"
	"github.com/iho/cantina/internal/adapter/repository/postgres"
	redisrepo "github.com/iho/cantina/internal/adapter/repository/redis"
	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/usecase"
)

func newRouter(t *testing.T, s *ledgerStack) http.Handler {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	reconciler := usecase.NewReconciliationUseCase(s.accounts, postgres.NewLedgerRepository(s.db.Pool), zerolog.Nop())

	return adaptershttp.NewRouter(adaptershttp.RouterConfig{
		AccountHandler:        handler.NewAccountHandler(s.accountUC),
		LedgerHandler:         handler.NewLedgerHandler(s.ledgerUC),
		EntryHandler:          handler.NewEntryHandler(s.entryUC),
		StatisticsHandler:     handler.NewStatisticsHandler(s.statsUC),
		MaintenanceHandler:    handler.NewMaintenanceHandler(s.cleanupUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciler),
		HealthHandler:         handler.NewHealthHandler(handler.HealthCheck{Name: "postgres", Pinger: s.db.Pool}),
		IdempotencyStore:      redisrepo.NewIdempotencyStore(client),
		Logger:                zerolog.Nop(),
	})
}

func call(t *testing.T, router http.Handler, method, path, body string, actor domain.Actor, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	r := httptest.NewRequest(method, path, strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("X-Actor-ID", actor.ID)
	r.Header.Set("X-Actor-Name", actor.Name)
	if actor.Privileged {
		r.Header.Set("X-Actor-Admin", "true")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		r.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestAccountLifecycle(t *testing.T) {
	s := newLedgerStack(t, 5)
	ctx := t.Context()
	s.db.TruncateAll(ctx)

	router := newRouter(t, s)

	var account dto.AccountResponse

	t.Run("register account", func(t *testing.T) {
		w := call(t, router, http.MethodPost, "/api/v1/accounts",
			`{"full_name":"Maria da Silva","birth_date":"01/02/2010","phone":"(11) 98765-4321"}`, employee)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &account))

		assert.Equal(t, "Maria da Silva", account.FullName)
		assert.Equal(t, domain.Zero, account.Balance)
		assert.Equal(t, domain.DefaultNegativeLimit, account.NegativeLimit)
	})

	t.Run("reject invalid registration", func(t *testing.T) {
		w := call(t, router, http.MethodPost, "/api/v1/accounts",
			`{"full_name":"Maria","birth_date":"2010-02-01","phone":"123"}`, employee)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("get account", func(t *testing.T) {
		w := call(t, router, http.MethodGet, "/api/v1/accounts/"+account.ID, "", employee)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), account.ID)
	})

	t.Run("get unknown account returns 404", func(t *testing.T) {
		w := call(t, router, http.MethodGet, "/api/v1/accounts/does-not-exist", "", employee)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("employee cannot credit", func(t *testing.T) {
		w := call(t, router, http.MethodPost, "/api/v1/accounts/"+account.ID+"/credits", `{"amount":"20.00"}`, employee)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("credit then debit", func(t *testing.T) {
		w := call(t, router, http.MethodPost, "/api/v1/accounts/"+account.ID+"/credits", `{"amount":"20.00"}`, admin)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = call(t, router, http.MethodPost, "/api/v1/accounts/"+account.ID+"/debits",
			`{"amount":"35.50","description":"almoço"}`, employee, "Idempotency-Key", "lunch-1")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var entry dto.EntryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
		assert.Equal(t, domain.MustParseMoney("-15.50"), entry.BalanceAfter)
	})

	t.Run("replayed debit does not charge twice", func(t *testing.T) {
		w := call(t, router, http.MethodPost, "/api/v1/accounts/"+account.ID+"/debits",
			`{"amount":"35.50","description":"almoço"}`, employee, "Idempotency-Key", "lunch-1")
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "true", w.Header().Get("X-Idempotency-Replay"))

		got, err := s.accounts.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.MustParseMoney("-15.50"), got.Balance)
	})

	t.Run("debit beyond the limit is rejected", func(t *testing.T) {
		w := call(t, router, http.MethodPost, "/api/v1/accounts/"+account.ID+"/debits", `{"amount":"40.00"}`, employee)
		require.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp dto.LimitExceededResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, domain.MustParseMoney("34.50"), resp.Available)
	})

	t.Run("employee cannot change the limit", func(t *testing.T) {
		w := call(t, router, http.MethodPut, "/api/v1/accounts/"+account.ID+"/limit", `{"negative_limit":"-100.00"}`, employee)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin raises the limit and the debit fits", func(t *testing.T) {
		w := call(t, router, http.MethodPut, "/api/v1/accounts/"+account.ID+"/limit", `{"negative_limit":"-100.00"}`, admin)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = call(t, router, http.MethodPost, "/api/v1/accounts/"+account.ID+"/debits", `{"amount":"40.00"}`, employee)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("statement is newest first", func(t *testing.T) {
		w := call(t, router, http.MethodGet, "/api/v1/accounts/"+account.ID+"/entries", "", employee)
		require.Equal(t, http.StatusOK, w.Code)

		var entries []dto.EntryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
		require.Len(t, entries, 3)
		assert.Equal(t, domain.MustParseMoney("40.00"), entries[0].Amount)
		assert.Equal(t, domain.EntryKindCredit, entries[2].Kind)
		assert.Equal(t, domain.MustParseMoney("-55.50"), entries[0].BalanceAfter)
	})

	t.Run("list filters by balance sign", func(t *testing.T) {
		s.db.CreateTestAccountWithBalance(ctx, "Zé Positivo", domain.Units(10), domain.DefaultNegativeLimit)

		w := call(t, router, http.MethodGet, "/api/v1/accounts?balance=negative", "", employee)
		require.Equal(t, http.StatusOK, w.Code)

		var list dto.ListAccountsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
		require.Len(t, list.Accounts, 1)
		assert.Equal(t, account.ID, list.Accounts[0].ID)
	})

	t.Run("statistics", func(t *testing.T) {
		w := call(t, router, http.MethodGet, "/api/v1/statistics", "", employee)
		require.Equal(t, http.StatusOK, w.Code)

		var stats domain.Statistics
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
		assert.EqualValues(t, 2, stats.TotalAccounts)
		assert.EqualValues(t, 1, stats.NegativeAccounts)
		assert.EqualValues(t, 1, stats.PositiveAccounts)
	})

	t.Run("reconciliation finds the seeded balance", func(t *testing.T) {
		w := call(t, router, http.MethodGet, "/api/v1/maintenance/reconciliation", "", employee)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = call(t, router, http.MethodGet, "/api/v1/maintenance/reconciliation", "", admin)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var report dto.ReconciliationResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		assert.False(t, report.Consistent)
		require.Len(t, report.Discrepancies, 1)
		assert.NotEqual(t, account.ID, report.Discrepancies[0].AccountID)
	})

	t.Run("employee cannot remove", func(t *testing.T) {
		w := call(t, router, http.MethodDelete, "/api/v1/accounts/"+account.ID, "", employee)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("admin removes the account and its entries", func(t *testing.T) {
		w := call(t, router, http.MethodDelete, "/api/v1/accounts/"+account.ID, "", admin)
		require.Equal(t, http.StatusNoContent, w.Code)

		assert.Zero(t, s.db.CountEntries(ctx, account.ID))

		w = call(t, router, http.MethodGet, "/api/v1/accounts/"+account.ID, "", employee)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
