package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"quickspese/internal/core"
	"quickspese/internal/services"
	"quickspese/internal/storage/memory"
)

var testNow = time.Date(2025, time.March, 12, 10, 30, 0, 0, time.UTC)

func newTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	n := 0
	svc := services.NewCommandService(memory.New(), nil,
		services.WithClock(func() time.Time { return testNow }),
		services.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("exp_test_%d", n)
		}),
	)
	srv := NewServer(":0", svc, append([]Option{WithLocation(time.UTC)}, opts...)...)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func do(t *testing.T, srv *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestHealthAndReady(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		rr := do(t, srv, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rr.Code, path)
	}

	failing := newTestServer(t, WithReadiness(func(context.Context) error { return errors.New("db down") }))
	rr := do(t, failing, http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	require.Equal(t, "not ready", decode[ErrorBody](t, rr).Error)
}

func TestCommandFlow(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/commands", `{"text":"spent 20 on lunch"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	out := decode[services.Outcome](t, rr)
	require.Equal(t, core.KindAdd, out.Kind)
	require.True(t, out.Changed)
	require.Equal(t, "Added lunch for 20.00 USD", out.Message)
	require.Equal(t, "exp_test_1", out.Expense.ID)

	rr = do(t, srv, http.MethodPost, "/commands", `{"text":"add coffee for $4.50"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, srv, http.MethodGet, "/expenses?category=lunch", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[ListResponse](t, rr)
	require.Equal(t, 1, list.Count)
	require.Equal(t, int64(2000), list.Total.Cents)
	require.Equal(t, core.USD, list.Total.Currency)

	rr = do(t, srv, http.MethodGet, "/expenses?min=1&max=10", "")
	list = decode[ListResponse](t, rr)
	require.Equal(t, 1, list.Count)
	require.Equal(t, "coffee", list.Expenses[0].Description)

	rr = do(t, srv, http.MethodPost, "/commands", `{"text":"total"}`)
	out = decode[services.Outcome](t, rr)
	require.Equal(t, core.KindTotal, out.Kind)
	require.Equal(t, int64(2450), out.Total.Cents)

	rr = do(t, srv, http.MethodGet, "/summary", "")
	require.Equal(t, http.StatusOK, rr.Code)
	sum := decode[core.Summary](t, rr)
	require.Equal(t, int64(2450), sum.MonthTotalCents)

	rr = do(t, srv, http.MethodPost, "/commands", `{"text":"undo"}`)
	out = decode[services.Outcome](t, rr)
	require.Equal(t, "Undid last change", out.Message)

	rr = do(t, srv, http.MethodGet, "/expenses", "")
	require.Equal(t, 1, decode[ListResponse](t, rr).Count)
}

func TestCommandEmptyTextIsHelp(t *testing.T) {
	srv := newTestServer(t)
	rr := do(t, srv, http.MethodPost, "/commands", `{"text":""}`)
	require.Equal(t, http.StatusOK, rr.Code)
	out := decode[services.Outcome](t, rr)
	require.Equal(t, core.KindHelp, out.Kind)
	require.Equal(t, services.HelpText, out.Message)
}

func TestCommandRejectedValuesAreUnprocessable(t *testing.T) {
	srv := newTestServer(t)

	for _, text := range []string{"spent 0 on lunch", "set budget 0 for food"} {
		rr := do(t, srv, http.MethodPost, "/commands", `{"text":"`+text+`"}`)
		require.Equal(t, http.StatusUnprocessableEntity, rr.Code, text)
		out := decode[services.Outcome](t, rr)
		require.True(t, out.Rejected)
		require.False(t, out.Changed)
		require.Contains(t, out.Message, "invalid amount")
	}

	rr := do(t, srv, http.MethodGet, "/expenses", "")
	require.Equal(t, 0, decode[ListResponse](t, rr).Count)
}

func TestCommandBadRequests(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/commands", "")
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	require.Equal(t, "POST", rr.Header().Get("Allow"))

	rr = do(t, srv, http.MethodPost, "/commands", `{"text":`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode[ErrorBody](t, rr)
	require.NotEmpty(t, body.RequestID)
}

func TestListExpensesValidation(t *testing.T) {
	srv := newTestServer(t)
	rr := do(t, srv, http.MethodGet, "/expenses?min=abc&from=yesterday", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
	body := decode[ErrorBody](t, rr)
	require.Contains(t, body.Fields, "min")
	require.Contains(t, body.Fields, "from")
}

func TestDeleteExpense(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodPost, "/commands", `{"text":"spent 20 on lunch"}`)

	rr := do(t, srv, http.MethodDelete, "/expenses/exp_test_1", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.Equal(t, "Deleted exp_test_1", decode[services.Outcome](t, rr).Message)

	rr = do(t, srv, http.MethodDelete, "/expenses/exp_test_1", "")
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, srv, http.MethodGet, "/expenses/exp_test_1", "")
	require.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestMiddlewareHeaders(t *testing.T) {
	srv := newTestServer(t)
	rr := do(t, srv, http.MethodGet, "/summary", "")
	require.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	require.True(t, strings.HasPrefix(rr.Header().Get("X-Request-ID"), "req_"))
}

func TestRateLimitOnWrites(t *testing.T) {
	srv := newTestServer(t, WithRateLimit(1))

	rr := do(t, srv, http.MethodPost, "/commands", `{"text":"help"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, srv, http.MethodPost, "/commands", `{"text":"help"}`)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.NotEmpty(t, rr.Header().Get("Retry-After"))

	// Reads are not limited.
	rr = do(t, srv, http.MethodGet, "/expenses", "")
	require.Equal(t, http.StatusOK, rr.Code)
}

type brokenRunner struct{}

func (brokenRunner) Execute(context.Context, string) (services.Outcome, error) {
	return services.Outcome{}, errors.New("load state: disk on fire")
}

func (brokenRunner) ExecuteCommand(context.Context, core.Command) (services.Outcome, error) {
	return services.Outcome{}, errors.New("load state: disk on fire")
}

func (brokenRunner) List(context.Context, core.QueryFilters) ([]core.Expense, error) {
	return nil, errors.New("load state: disk on fire")
}

func (brokenRunner) Summary(context.Context) (core.Summary, error) {
	return core.Summary{}, errors.New("load state: disk on fire")
}

func TestStorageFailuresAreInternalErrors(t *testing.T) {
	srv := NewServer(":0", brokenRunner{})
	defer srv.Shutdown(context.Background())

	for _, tc := range []struct{ method, target, body string }{
		{http.MethodPost, "/commands", `{"text":"undo"}`},
		{http.MethodGet, "/expenses", ""},
		{http.MethodDelete, "/expenses/exp_a_b", ""},
		{http.MethodGet, "/summary", ""},
	} {
		rr := do(t, srv, tc.method, tc.target, tc.body)
		require.Equal(t, http.StatusInternalServerError, rr.Code, tc.target)
		require.Equal(t, "internal error", decode[ErrorBody](t, rr).Error)
	}
}
