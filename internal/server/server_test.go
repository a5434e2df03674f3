package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/practicehq/planbudget/internal/server"
	"github.com/practicehq/planbudget/pkg/budget"
	"github.com/practicehq/planbudget/pkg/model"
	"github.com/practicehq/planbudget/pkg/storage"
)

func setupServer(t *testing.T) (*httptest.Server, storage.Storage) {
	t.Helper()
	store, err := storage.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	engine := budget.NewEngine(store, logger)
	srv := httptest.NewServer(server.NewServer(store, engine, nil, logger).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestHealth(t *testing.T) {
	srv, _ := setupServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	decodeBody(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestBudgetItems_CRUD(t *testing.T) {
	srv, _ := setupServer(t)
	base := srv.URL + "/api/v1/clients/client-1/budget-items"

	resp := doJSON(t, http.MethodPost, base, map[string]any{
		"item_code":   "01_011_0107_1_1",
		"description": "Physiotherapy session",
		"unit_price":  193.99,
		"quantity":    20,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err := http.Get(base)
	require.NoError(t, err)
	defer resp.Body.Close()
	var items []model.BudgetItem
	decodeBody(t, resp, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "01_011_0107_1_1", items[0].ItemCode)
	assert.Equal(t, "client-1", items[0].ClientID)

	req, err := http.NewRequest(http.MethodDelete, base+"/01_011_0107_1_1", nil)
	require.NoError(t, err)
	dresp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	dresp.Body.Close()
	assert.Equal(t, http.StatusNoContent, dresp.StatusCode)

	dresp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	dresp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, dresp2.StatusCode)
}

func TestBudgetItems_Validation(t *testing.T) {
	srv, _ := setupServer(t)
	base := srv.URL + "/api/v1/clients/client-1/budget-items"

	resp := doJSON(t, http.MethodPost, base, map[string]any{"description": "no code"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, base, bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	bresp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	bresp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bresp.StatusCode)
}

func TestBudgetItems_StringAmountsAccepted(t *testing.T) {
	srv, _ := setupServer(t)
	base := srv.URL + "/api/v1/clients/client-1/budget-items"

	resp := doJSON(t, http.MethodPost, base, map[string]any{
		"item_code":  "A1",
		"unit_price": "$193.99",
		"quantity":   "20",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var item model.BudgetItem
	decodeBody(t, resp, &item)
	assert.InDelta(t, 193.99, float64(item.UnitPrice), 1e-9)
	assert.InDelta(t, 20.0, float64(item.Quantity), 1e-9)
}

func TestBudgetSettings_PutAndGet(t *testing.T) {
	srv, _ := setupServer(t)
	base := srv.URL + "/api/v1/clients/client-1/budget-settings"

	resp := doJSON(t, http.MethodPut, base, map[string]any{
		"total_funds": 15000,
		"start_date":  "2026-03-01",
		"end_date":    "2027-02-28",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	gresp, err := http.Get(base)
	require.NoError(t, err)
	defer gresp.Body.Close()
	require.Equal(t, http.StatusOK, gresp.StatusCode)

	var settings model.BudgetSettings
	decodeBody(t, gresp, &settings)
	assert.InDelta(t, 15000.0, float64(settings.TotalFunds), 1e-9)
	assert.True(t, settings.IsActive)
	assert.Equal(t, "2026-03-01", settings.StartDate.String())
}

func TestBudgetSettings_NotFound(t *testing.T) {
	srv, _ := setupServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/clients/nobody/budget-settings")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBudgetSettings_Validation(t *testing.T) {
	srv, _ := setupServer(t)
	base := srv.URL + "/api/v1/clients/client-1/budget-settings"

	resp := doJSON(t, http.MethodPut, base, map[string]any{"total_funds": 100})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, base, map[string]any{
		"start_date": "2027-02-28",
		"end_date":   "2026-03-01",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessions_CreateAndList(t *testing.T) {
	srv, _ := setupServer(t)
	base := srv.URL + "/api/v1/clients/client-1/sessions"

	resp := doJSON(t, http.MethodPost, base, map[string]any{
		"status":       "completed",
		"session_date": "2026-03-04",
		"products": []map[string]any{
			{"item_code": "A1", "quantity": 2, "unit_price": 10},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created model.SessionRecord
	decodeBody(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, model.SessionCompleted, created.Status)

	lresp, err := http.Get(base)
	require.NoError(t, err)
	defer lresp.Body.Close()
	var sessions []model.SessionRecord
	decodeBody(t, lresp, &sessions)
	require.Len(t, sessions, 1)
	require.Len(t, sessions[0].Products, 1)
	assert.InDelta(t, 2.0, float64(sessions[0].Products[0].Quantity), 1e-9)
}

func TestSessions_MissingDate(t *testing.T) {
	srv, _ := setupServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/clients/client-1/sessions",
		map[string]any{"status": "completed"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSummary(t *testing.T) {
	srv, store := setupServer(t)
	ctx := t.Context()

	require.NoError(t, store.SetBudgetSettings(ctx, &model.BudgetSettings{
		ClientID:  "client-1",
		StartDate: mustDate(t, "2026-03-01"),
		EndDate:   mustDate(t, "2026-03-11"),
		IsActive:  true,
	}))
	require.NoError(t, store.UpsertBudgetItem(ctx, &model.BudgetItem{
		ClientID: "client-1", ItemCode: "A1", UnitPrice: 10, Quantity: 5,
	}))
	require.NoError(t, store.RecordSession(ctx, &model.SessionRecord{
		ClientID:    "client-1",
		Status:      model.SessionCompleted,
		SessionDate: mustDate(t, "2026-03-04"),
		Products:    []model.ProductUsage{{ItemCode: "A1", Quantity: 2}},
	}))

	resp, err := http.Get(srv.URL + "/api/v1/clients/client-1/budget/summary?today=2026-03-04")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary model.BudgetSummary
	decodeBody(t, resp, &summary)
	assert.Equal(t, "client-1", summary.ClientID)
	assert.Equal(t, "2026-03-04", summary.AsOf.String())
	assert.InDelta(t, 50.0, summary.Scalars.TotalBudget, 1e-9)
	assert.InDelta(t, 20.0, summary.Scalars.UsedBudget, 1e-9)
	assert.Len(t, summary.Timeseries, 11)
}

func TestSummary_NoActivePlan(t *testing.T) {
	srv, _ := setupServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/clients/nobody/budget/summary")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSummary_BadTodayParam(t *testing.T) {
	srv, _ := setupServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/clients/client-1/budget/summary?today=garbage")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func mustDate(t *testing.T, s string) model.Date {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}
