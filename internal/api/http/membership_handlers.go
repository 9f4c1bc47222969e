package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"fabric-registry/internal/domain"
)

type memberRequest struct {
	UserID domain.RecordID `json:"user_id"`
}

func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	orgID := domain.RecordID(mux.Vars(r)["id"])
	ids, err := h.services.Memberships.Members(r.Context(), orgID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	orgID := domain.RecordID(mux.Vars(r)["id"])
	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.services.Memberships.AddMember(r.Context(), orgID, req.UserID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"added": true})
}

func (h *Handler) CheckMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	orgID := domain.RecordID(vars["id"])
	userID := domain.RecordID(vars["userId"])
	isMember, err := h.services.Memberships.IsMember(r.Context(), orgID, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_member": isMember})
}

func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	orgID := domain.RecordID(vars["id"])
	userID := domain.RecordID(vars["userId"])
	if err := h.services.Memberships.RemoveMember(r.Context(), orgID, userID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
}

func (h *Handler) ListCoordinators(w http.ResponseWriter, r *http.Request) {
	orgID := domain.RecordID(mux.Vars(r)["id"])
	ids, err := h.services.Memberships.Coordinators(r.Context(), orgID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

func (h *Handler) AddCoordinator(w http.ResponseWriter, r *http.Request) {
	orgID := domain.RecordID(mux.Vars(r)["id"])
	var req memberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.services.Memberships.AddCoordinator(r.Context(), orgID, req.UserID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"added": true})
}

func (h *Handler) RemoveCoordinator(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	orgID := domain.RecordID(vars["id"])
	userID := domain.RecordID(vars["userId"])
	if err := h.services.Memberships.RemoveCoordinator(r.Context(), orgID, userID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
}

func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	orgID := domain.RecordID(mux.Vars(r)["id"])
	if err := h.services.Memberships.Leave(r.Context(), orgID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"left": true})
}
