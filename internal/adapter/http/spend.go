package httpadapter

import (
	"encoding/json"
	"net/http"

	"adbudget/internal/core/port"
)

// handleApplySpend ingests one spend event. The body is a port.SpendEvent;
// amounts are decimal strings or JSON numbers. A duplicate reference id
// returns 200 with applied=false and a warning, matching the ledger's
// duplicate-is-not-an-error contract. Parsing errors produce HTTP 400.
func (h *Handler) handleApplySpend(w http.ResponseWriter, r *http.Request) {
	var ev port.SpendEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	res, err := h.ledger.ApplySpend(r.Context(), ev)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}
