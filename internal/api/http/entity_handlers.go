package http

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"fabric-registry/internal/domain"
)

type createEntityRequest struct {
	Payload json.RawMessage `json:"payload"`
}

func (h *Handler) createEntity(w http.ResponseWriter, r *http.Request, kind domain.EntityKind) {
	var req createEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := h.services.Entities.Create(r.Context(), kind, req.Payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	h.createEntity(w, r, domain.KindUser)
}

func (h *Handler) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	h.createEntity(w, r, domain.KindOrganization)
}

func (h *Handler) GetLatest(w http.ResponseWriter, r *http.Request) {
	id := domain.RecordID(mux.Vars(r)["id"])
	rec, err := h.services.Entities.Latest(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) UpdateEntity(w http.ResponseWriter, r *http.Request) {
	id := domain.RecordID(mux.Vars(r)["id"])
	var req createEntityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, err := h.services.Entities.Update(r.Context(), id, req.Payload)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	id := domain.RecordID(mux.Vars(r)["id"])
	if err := h.services.Entities.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (h *Handler) GetRevisions(w http.ResponseWriter, r *http.Request) {
	id := domain.RecordID(mux.Vars(r)["id"])
	records, err := h.services.Entities.Revisions(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	kind := domain.EntityKind(mux.Vars(r)["kind"])
	ids, err := h.services.Entities.All(r.Context(), kind)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}

func (h *Handler) ListAccepted(w http.ResponseWriter, r *http.Request) {
	kind := domain.EntityKind(mux.Vars(r)["kind"])
	ids, err := h.services.Status.Accepted(r.Context(), kind)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ids)
}
