package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"fabric-registry/internal/domain"
)

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	id := domain.RecordID(mux.Vars(r)["id"])
	st, err := h.services.Status.Latest(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if st == nil {
		writeError(w, http.StatusNotFound, "entity has no status")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

type setStatusRequest struct {
	StatusType     domain.StatusType `json:"status_type"`
	Reason         string            `json:"reason,omitempty"`
	SuspendedUntil *time.Time        `json:"suspended_until,omitempty"`
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id := domain.RecordID(mux.Vars(r)["id"])
	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	next := domain.Status{Type: req.StatusType, Reason: req.Reason, Until: req.SuspendedUntil}
	rec, err := h.services.Status.Update(r.Context(), id, next)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) GetStatusHistory(w http.ResponseWriter, r *http.Request) {
	id := domain.RecordID(mux.Vars(r)["id"])
	records, err := h.services.Status.History(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

type suspendRequest struct {
	Reason         string `json:"reason"`
	DurationInDays *int   `json:"duration_in_days,omitempty"`
}

// Suspend handles both flavors: a duration makes the suspension temporary,
// its absence makes it indefinite.
func (h *Handler) Suspend(w http.ResponseWriter, r *http.Request) {
	id := domain.RecordID(mux.Vars(r)["id"])
	var req suspendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var err error
	if req.DurationInDays != nil {
		err = h.services.Status.SuspendTemporarily(r.Context(), id, req.Reason, *req.DurationInDays)
	} else {
		err = h.services.Status.SuspendIndefinitely(r.Context(), id, req.Reason)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"suspended": true})
}

func (h *Handler) Unsuspend(w http.ResponseWriter, r *http.Request) {
	id := domain.RecordID(mux.Vars(r)["id"])
	if err := h.services.Status.Unsuspend(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"unsuspended": true})
}

func (h *Handler) UnsuspendIfExpired(w http.ResponseWriter, r *http.Request) {
	id := domain.RecordID(mux.Vars(r)["id"])
	unsuspended, err := h.services.Status.UnsuspendIfExpired(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"unsuspended": unsuspended})
}
