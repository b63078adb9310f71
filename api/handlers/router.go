package handlers

import (
	"net/http"

	"github.com/EO-DataHub/eodhp-kasm-services/api/middleware"
	"github.com/EO-DataHub/eodhp-kasm-services/api/services"
	"github.com/gorilla/mux"
)

// RegisterRoutes adds the session API under basePath. Every route requires
// a bearer token carrying adminRole.
func RegisterRoutes(r *mux.Router, basePath, adminRole string, svc *services.Service) {
	api := r.PathPrefix(basePath).Subrouter()

	api.Use(middleware.WithLogger)
	api.Use(middleware.JWTMiddleware)
	api.Use(middleware.RequireRole(adminRole))

	api.HandleFunc("/sessions", GetSessions(svc)).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{kasm-id}", GetSession(svc)).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{kasm-id}", DeleteSession(svc)).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{kasm-id}/keepalive", KeepaliveSession(svc)).Methods(http.MethodPost)
	api.HandleFunc("/extensions", GetExtensions(svc)).Methods(http.MethodGet)
}
