package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"fabric-registry/internal/domain"
)

func (h *Handler) ListAdministrators(w http.ResponseWriter, r *http.Request) {
	kind := domain.EntityKind(mux.Vars(r)["kind"])
	ids, err := h.services.Admins.ListAdministrators(r.Context(), kind)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

type addAdministratorRequest struct {
	EntityID domain.RecordID `json:"entity_id"`
	// Bootstrap bypasses the administrator gate; only meaningful while the
	// registry for the kind is still empty.
	Bootstrap bool `json:"bootstrap,omitempty"`
}

func (h *Handler) AddAdministrator(w http.ResponseWriter, r *http.Request) {
	kind := domain.EntityKind(mux.Vars(r)["kind"])
	var req addAdministratorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var err error
	if req.Bootstrap {
		err = h.services.Admins.Register(r.Context(), kind, req.EntityID)
	} else {
		err = h.services.Admins.Add(r.Context(), kind, req.EntityID)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"registered": true})
}

func (h *Handler) CheckAdministrator(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := domain.EntityKind(vars["kind"])
	id := domain.RecordID(vars["id"])
	isAdmin, err := h.services.Admins.IsAdministrator(r.Context(), kind, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_administrator": isAdmin})
}

func (h *Handler) RemoveAdministrator(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind := domain.EntityKind(vars["kind"])
	id := domain.RecordID(vars["id"])
	if err := h.services.Admins.Remove(r.Context(), kind, id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
}
