package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adbudget/internal/adapter/memory"
	"adbudget/internal/adapter/usecase"
	"adbudget/internal/core/domain"
	"adbudget/internal/core/port"
)

func newTestServer(t *testing.T) (*httptest.Server, *memory.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	activation := usecase.NewActivation(store, logger)
	ledger := usecase.NewLedger(store, activation, logger)
	schedules := usecase.NewSchedules(store, activation, logger)
	sweeper := usecase.NewSweeper(store, ledger, activation, logger)

	h := NewHandler(ledger, schedules, sweeper, store, logger)
	srv := httptest.NewServer(h.Router())
	t.Cleanup(srv.Close)
	return srv, store
}

func seedBrandAndCampaign(t *testing.T, store *memory.Store) (*domain.Brand, *domain.Campaign) {
	t.Helper()
	b := &domain.Brand{
		Name:          "brand",
		DailyBudget:   decimal.RequireFromString("500.00"),
		MonthlyBudget: decimal.RequireFromString("5000.00"),
		IsActive:      true,
	}
	require.NoError(t, store.CreateBrand(context.Background(), b))
	c := &domain.Campaign{
		BrandID:     b.ID,
		Name:        "campaign",
		Status:      domain.StatusActive,
		DailyBudget: decimal.RequireFromString("100.00"),
		IsActive:    true,
	}
	require.NoError(t, store.CreateCampaign(context.Background(), c))
	return b, c
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestSpendEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	b, c := seedBrandAndCampaign(t, store)

	ev := port.SpendEvent{
		BrandID:     b.ID,
		CampaignID:  &c.ID,
		Amount:      decimal.RequireFromString("30.00"),
		ReferenceID: "evt-1",
	}
	resp := postJSON(t, srv.URL+"/api/v1/spend", ev)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var res port.SpendResult
	decodeBody(t, resp, &res)
	assert.True(t, res.Applied)

	// Replaying the same reference id stays a 200 with applied=false.
	resp = postJSON(t, srv.URL+"/api/v1/spend", ev)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &res)
	assert.False(t, res.Applied)
	assert.NotEmpty(t, res.Warnings)

	got, err := store.GetCampaign(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, got.CurrentDailySpend.Equal(decimal.RequireFromString("30.00")))
}

func TestSpendEndpointErrors(t *testing.T) {
	srv, store := newTestServer(t)
	b, c := seedBrandAndCampaign(t, store)

	bad := port.SpendEvent{BrandID: b.ID, CampaignID: &c.ID,
		Amount: decimal.RequireFromString("-1"), ReferenceID: "evt-neg"}
	resp := postJSON(t, srv.URL+"/api/v1/spend", bad)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	missing := port.SpendEvent{BrandID: 404,
		Amount: decimal.RequireFromString("1"), ReferenceID: "evt-404"}
	resp = postJSON(t, srv.URL+"/api/v1/spend", missing)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err := http.Post(srv.URL+"/api/v1/spend", "application/json",
		bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBudgetEndpoints(t *testing.T) {
	srv, store := newTestServer(t)
	b, c := seedBrandAndCampaign(t, store)

	ev := port.SpendEvent{BrandID: b.ID, CampaignID: &c.ID,
		Amount: decimal.RequireFromString("40.00"), ReferenceID: "evt-1"}
	resp := postJSON(t, srv.URL+"/api/v1/spend", ev)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err := http.Get(srv.URL + "/api/v1/brands/1/budget")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var brand brandBudgetResponse
	decodeBody(t, resp, &brand)
	assert.True(t, brand.DailyRemaining.Equal(decimal.RequireFromString("460.00")))
	assert.True(t, brand.MonthlyRemaining.Equal(decimal.RequireFromString("4960.00")))

	resp, err = http.Get(srv.URL + "/api/v1/campaigns/1/budget")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var campaign campaignBudgetResponse
	decodeBody(t, resp, &campaign)
	assert.True(t, campaign.DailyRemaining.Equal(decimal.RequireFromString("60.00")))
	assert.True(t, campaign.IsActive)

	resp, err = http.Get(srv.URL + "/api/v1/brands/99/budget")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSweepEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	b, c := seedBrandAndCampaign(t, store)

	ev := port.SpendEvent{BrandID: b.ID, CampaignID: &c.ID,
		Amount: decimal.RequireFromString("100.00"), ReferenceID: "evt-1"}
	resp := postJSON(t, srv.URL+"/api/v1/spend", ev)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err := http.Post(srv.URL+"/api/v1/sweeps/daily-reset", "application/json", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var report port.SweepReport
	decodeBody(t, resp, &report)
	assert.Equal(t, int64(1), report.BrandsReset)
	assert.Equal(t, 1, report.Reactivated)
}
