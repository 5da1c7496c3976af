package httpadapter

import (
	"context"
	"net/http"

	"adbudget/internal/core/port"
)

// handleSweep turns a sweep entry point into an HTTP handler. The external
// scheduler only needs these endpoints and a cadence; the response is the
// sweep summary (counts of checked/paused/reactivated plus per-item errors),
// never a raw failure for a single campaign.
func (h *Handler) handleSweep(sweep func(context.Context) (port.SweepReport, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := sweep(r.Context())
		if err != nil {
			h.writeError(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, report)
	}
}
