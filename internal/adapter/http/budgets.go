package httpadapter

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type brandBudgetResponse struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	IsActive         bool            `json:"is_active"`
	DailyBudget      decimal.Decimal `json:"daily_budget"`
	DailySpend       decimal.Decimal `json:"daily_spend"`
	DailyRemaining   decimal.Decimal `json:"daily_remaining"`
	MonthlyBudget    decimal.Decimal `json:"monthly_budget"`
	MonthlySpend     decimal.Decimal `json:"monthly_spend"`
	MonthlyRemaining decimal.Decimal `json:"monthly_remaining"`
}

type campaignBudgetResponse struct {
	ID             int64           `json:"id"`
	BrandID        int64           `json:"brand_id"`
	Name           string          `json:"name"`
	Status         string          `json:"status"`
	IsActive       bool            `json:"is_active"`
	DailyBudget    decimal.Decimal `json:"daily_budget"`
	DailySpend     decimal.Decimal `json:"daily_spend"`
	DailyRemaining decimal.Decimal `json:"daily_remaining"`
}

// handleBrandBudget returns the brand's remaining daily and monthly budget.
func (h *Handler) handleBrandBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	b, err := h.store.GetBrand(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, brandBudgetResponse{
		ID:               b.ID,
		Name:             b.Name,
		IsActive:         b.IsActive,
		DailyBudget:      b.DailyBudget,
		DailySpend:       b.CurrentDailySpend,
		DailyRemaining:   b.RemainingDailyBudget(),
		MonthlyBudget:    b.MonthlyBudget,
		MonthlySpend:     b.CurrentMonthlySpend,
		MonthlyRemaining: b.RemainingMonthlyBudget(),
	})
}

// handleCampaignBudget returns the campaign's remaining daily budget along
// with its operator status and computed activation flag.
func (h *Handler) handleCampaignBudget(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	c, err := h.store.GetCampaign(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, campaignBudgetResponse{
		ID:             c.ID,
		BrandID:        c.BrandID,
		Name:           c.Name,
		Status:         string(c.Status),
		IsActive:       c.IsActive,
		DailyBudget:    c.DailyBudget,
		DailySpend:     c.CurrentDailySpend,
		DailyRemaining: c.RemainingDailyBudget(),
	})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
