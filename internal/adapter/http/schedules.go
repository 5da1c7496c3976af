package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"adbudget/internal/core/domain"
)

// scheduleRequest is the write DTO for dayparting windows. Times are
// "HH:MM" in the schedule's own time zone.
type scheduleRequest struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Timezone  string `json:"timezone"`
	IsActive  *bool  `json:"is_active"`
	Priority  int    `json:"priority"`
}

type scheduleResponse struct {
	ID         int64  `json:"id"`
	CampaignID int64  `json:"campaign_id"`
	DayOfWeek  int    `json:"day_of_week"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Timezone   string `json:"timezone"`
	IsActive   bool   `json:"is_active"`
	Priority   int    `json:"priority"`
}

func (req *scheduleRequest) toDomain() (domain.Schedule, error) {
	start, err := domain.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return domain.Schedule{}, err
	}
	end, err := domain.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return domain.Schedule{}, err
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return domain.Schedule{
		DayOfWeek: req.DayOfWeek,
		StartTime: start,
		EndTime:   end,
		Timezone:  req.Timezone,
		IsActive:  active,
		Priority:  req.Priority,
	}, nil
}

func toScheduleResponse(s *domain.Schedule) scheduleResponse {
	return scheduleResponse{
		ID:         s.ID,
		CampaignID: s.CampaignID,
		DayOfWeek:  s.DayOfWeek,
		StartTime:  s.StartTime.String(),
		EndTime:    s.EndTime.String(),
		Timezone:   s.Timezone,
		IsActive:   s.IsActive,
		Priority:   s.Priority,
	}
}

// handleCreateSchedule adds a dayparting window to the campaign in the
// path. Overlapping active windows are rejected with HTTP 409.
func (h *Handler) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	sched, err := req.toDomain()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sched.CampaignID = campaignID
	created, err := h.schedules.Create(r.Context(), sched)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toScheduleResponse(created))
}

// handleUpdateSchedule edits the schedule in the path. The owning campaign
// cannot be changed.
func (h *Handler) handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	sched, err := req.toDomain()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sched.ID = id
	updated, err := h.schedules.Update(r.Context(), sched)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toScheduleResponse(updated))
}

func (h *Handler) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.schedules.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleEligibleSchedules lists the campaign's schedules covering "now",
// highest priority first. Intended for diagnostics and admin display.
func (h *Handler) handleEligibleSchedules(w http.ResponseWriter, r *http.Request) {
	campaignID, ok := h.pathID(w, r)
	if !ok {
		return
	}
	eligible, err := h.schedules.ListEligibleNow(r.Context(), campaignID, time.Now().UTC())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]scheduleResponse, 0, len(eligible))
	for i := range eligible {
		out = append(out, toScheduleResponse(&eligible[i]))
	}
	h.writeJSON(w, http.StatusOK, out)
}
