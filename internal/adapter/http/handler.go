package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"adbudget/internal/core/port"
)

// Handler contains dependencies and routes. It is an inbound adapter for
// HTTP: a thin surface over the ledger, schedule and sweep entry points,
// plus read-only budget queries. Routes are registered on a chi.Router.
type Handler struct {
	ledger    port.Ledger
	schedules port.Schedules
	sweeper   port.Sweeper
	store     port.Store
	logger    *slog.Logger
	router    chi.Router
}

// NewHandler creates a handler with all routes configured.
func NewHandler(ledger port.Ledger, schedules port.Schedules, sweeper port.Sweeper, store port.Store, logger *slog.Logger) *Handler {
	h := &Handler{ledger: ledger, schedules: schedules, sweeper: sweeper, store: store, logger: logger}
	r := chi.NewRouter()

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/spend", h.handleApplySpend)

		r.Get("/brands/{id}/budget", h.handleBrandBudget)
		r.Get("/campaigns/{id}/budget", h.handleCampaignBudget)

		r.Post("/campaigns/{id}/schedules", h.handleCreateSchedule)
		r.Get("/campaigns/{id}/schedules/eligible", h.handleEligibleSchedules)
		r.Put("/schedules/{id}", h.handleUpdateSchedule)
		r.Delete("/schedules/{id}", h.handleDeleteSchedule)

		r.Post("/sweeps/daily-reset", h.handleSweep(sweeper.DailyResetSweep))
		r.Post("/sweeps/monthly-reset", h.handleSweep(sweeper.MonthlyResetSweep))
		r.Post("/sweeps/budget-check", h.handleSweep(sweeper.BudgetCheckSweep))
		r.Post("/sweeps/schedule-check", h.handleSweep(sweeper.ScheduleCheckSweep))

		r.Get("/stats/overview", h.handleStatsOverview)
	})
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

// writeError maps domain errors to HTTP statuses. Anything unrecognized is
// a 500 with a generic body so storage details do not leak.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, port.ErrBrandNotFound),
		errors.Is(err, port.ErrCampaignNotFound),
		errors.Is(err, port.ErrScheduleNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, port.ErrInvalidAmount),
		errors.Is(err, port.ErrScheduleInvalid),
		errors.Is(err, port.ErrScheduleInvalidRange):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, port.ErrCampaignMismatch),
		errors.Is(err, port.ErrScheduleOverlap):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		h.logger.Error("internal error", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
