package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"fabric-registry/internal/obs"
	"fabric-registry/internal/security"
	"fabric-registry/internal/service"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	services *service.Services
	tokens   security.TokenManager
}

func NewHandler(services *service.Services, tokens security.TokenManager) *Handler {
	return &Handler{services: services, tokens: tokens}
}

// Router builds the full route table. Every operation group from the API
// contract gets a route; the metrics endpoint is unauthenticated.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Handle("/metrics", obs.Handler())

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(h.authenticate)

	// Entities
	api.HandleFunc("/users", h.CreateUser).Methods(http.MethodPost)
	api.HandleFunc("/organizations", h.CreateOrganization).Methods(http.MethodPost)
	api.HandleFunc("/entities/{id}", h.GetLatest).Methods(http.MethodGet)
	api.HandleFunc("/entities/{id}", h.UpdateEntity).Methods(http.MethodPut)
	api.HandleFunc("/entities/{id}", h.DeleteEntity).Methods(http.MethodDelete)
	api.HandleFunc("/entities/{id}/revisions", h.GetRevisions).Methods(http.MethodGet)
	api.HandleFunc("/kinds/{kind}/entities", h.ListAll).Methods(http.MethodGet)
	api.HandleFunc("/kinds/{kind}/accepted", h.ListAccepted).Methods(http.MethodGet)

	// Status
	api.HandleFunc("/entities/{id}/status", h.GetStatus).Methods(http.MethodGet)
	api.HandleFunc("/entities/{id}/status", h.SetStatus).Methods(http.MethodPost)
	api.HandleFunc("/entities/{id}/status/history", h.GetStatusHistory).Methods(http.MethodGet)
	api.HandleFunc("/entities/{id}/suspend", h.Suspend).Methods(http.MethodPost)
	api.HandleFunc("/entities/{id}/unsuspend", h.Unsuspend).Methods(http.MethodPost)
	api.HandleFunc("/entities/{id}/unsuspend-if-expired", h.UnsuspendIfExpired).Methods(http.MethodPost)

	// Administration
	api.HandleFunc("/kinds/{kind}/administrators", h.ListAdministrators).Methods(http.MethodGet)
	api.HandleFunc("/kinds/{kind}/administrators", h.AddAdministrator).Methods(http.MethodPost)
	api.HandleFunc("/kinds/{kind}/administrators/{id}", h.CheckAdministrator).Methods(http.MethodGet)
	api.HandleFunc("/kinds/{kind}/administrators/{id}", h.RemoveAdministrator).Methods(http.MethodDelete)

	// Membership
	api.HandleFunc("/organizations/{id}/members", h.ListMembers).Methods(http.MethodGet)
	api.HandleFunc("/organizations/{id}/members", h.AddMember).Methods(http.MethodPost)
	api.HandleFunc("/organizations/{id}/members/{userId}", h.CheckMember).Methods(http.MethodGet)
	api.HandleFunc("/organizations/{id}/members/{userId}", h.RemoveMember).Methods(http.MethodDelete)
	api.HandleFunc("/organizations/{id}/coordinators", h.ListCoordinators).Methods(http.MethodGet)
	api.HandleFunc("/organizations/{id}/coordinators", h.AddCoordinator).Methods(http.MethodPost)
	api.HandleFunc("/organizations/{id}/coordinators/{userId}", h.RemoveCoordinator).Methods(http.MethodDelete)
	api.HandleFunc("/organizations/{id}/leave", h.Leave).Methods(http.MethodPost)

	r.Use(obs.Instrument)
	return r
}
