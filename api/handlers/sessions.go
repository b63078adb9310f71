package handlers

import (
	"net/http"

	"github.com/EO-DataHub/eodhp-kasm-services/api/services"
)

// @Summary List sessions
// @Description List the active and paused Kasm sessions.
// @Tags sessions
// @Produce json
// @Success 200 {object} models.SessionsResponse
// @Failure 401 {object} string
// @Failure 403 {object} models.Response
// @Failure 502 {object} models.Response
// @Router /sessions [get]
func GetSessions(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.GetSessionsService(svc, w, r)
	}
}

// @Summary Get a session
// @Description Get the status of one session of a user.
// @Tags sessions
// @Produce json
// @Param kasm-id path string true "Session ID"
// @Param user_id query string true "Owner of the session"
// @Success 200 {object} models.Session
// @Failure 400 {object} models.Response
// @Failure 502 {object} models.Response
// @Router /sessions/{kasm-id} [get]
func GetSession(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.GetSessionService(svc, w, r)
	}
}

// @Summary Extend a session
// @Description Raise the keepalive setting of the owner's group, refresh the session and restore the setting.
// @Tags sessions
// @Accept json
// @Produce json
// @Param kasm-id path string true "Session ID"
// @Param request body models.KeepaliveRequest false "Hours the session should stay alive"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.Response
// @Failure 403 {object} models.Response
// @Failure 404 {object} models.Response
// @Failure 429 {object} models.Response
// @Failure 502 {object} models.Response
// @Router /sessions/{kasm-id}/keepalive [post]
func KeepaliveSession(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.KeepaliveSessionService(svc, w, r)
	}
}

// @Summary Destroy a session
// @Tags sessions
// @Param kasm-id path string true "Session ID"
// @Success 204
// @Failure 403 {object} models.Response
// @Failure 404 {object} models.Response
// @Failure 502 {object} models.Response
// @Router /sessions/{kasm-id} [delete]
func DeleteSession(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.DeleteSessionService(svc, w, r)
	}
}

// @Summary List extensions
// @Description List recorded keepalive extensions, newest first.
// @Tags extensions
// @Produce json
// @Param kasm_id query string false "Only extensions of this session"
// @Param limit query int false "Maximum number of records" default(100)
// @Success 200 {object} models.ExtensionsResponse
// @Failure 400 {object} models.Response
// @Failure 501 {object} models.Response
// @Router /extensions [get]
func GetExtensions(svc *services.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services.GetExtensionsService(svc, w, r)
	}
}
