package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/EO-DataHub/eodhp-kasm-services/models"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// GetSessionsService lists the active and paused sessions.
func GetSessionsService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	sessions, err := svc.Kasm.GetSessions(r.Context())
	if err != nil {
		HandleErrResponse(w, logger, err)
		return
	}

	if sessions == nil {
		sessions = []models.Session{}
	}

	logger.Info().Int("session_count", len(sessions)).Msg("Successfully retrieved sessions")
	WriteResponse(w, http.StatusOK, models.SessionsResponse{Sessions: sessions})
}

// GetSessionService retrieves one session of a user.
func GetSessionService(svc *Service, w http.ResponseWriter, r *http.Request) {

	kasmID := mux.Vars(r)["kasm-id"]
	logger := zerolog.Ctx(r.Context()).With().Str("kasm_id", kasmID).Logger()

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		logger.Warn().Msg("Missing user_id query parameter")
		WriteResponse(w, http.StatusBadRequest, models.Response{ErrorDetails: "user_id query parameter is required"})
		return
	}

	session, err := svc.Kasm.GetSessionStatus(r.Context(), kasmID, userID)
	if err != nil {
		HandleErrResponse(w, &logger, err)
		return
	}

	WriteResponse(w, http.StatusOK, session)
}

// KeepaliveSessionService extends the idle window of a session by the
// requested number of hours.
func KeepaliveSessionService(svc *Service, w http.ResponseWriter, r *http.Request) {

	kasmID := mux.Vars(r)["kasm-id"]
	logger := zerolog.Ctx(r.Context()).With().Str("kasm_id", kasmID).Logger()

	req := models.KeepaliveRequest{Hours: svc.Config.Kasm.DefaultHours}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn().Err(err).Msg("Invalid keepalive request")
			WriteResponse(w, http.StatusBadRequest, models.Response{ErrorDetails: "invalid request body"})
			return
		}
	}
	if req.Hours < 1 || req.Hours > svc.Config.Kasm.MaxHours {
		WriteResponse(w, http.StatusBadRequest, models.Response{
			ErrorDetails: fmt.Sprintf("hours must be between 1 and %d", svc.Config.Kasm.MaxHours),
		})
		return
	}

	session, ok := findSession(svc, w, r, &logger, kasmID)
	if !ok {
		return
	}

	ctx := logger.WithContext(r.Context())
	if err := svc.Extender.Extend(ctx, session, time.Duration(req.Hours)*time.Hour); err != nil {
		HandleErrResponse(w, &logger, err)
		return
	}

	logger.Info().Int("hours", req.Hours).Msg("Session expiration extended")
	WriteResponse(w, http.StatusOK, models.Response{Success: 1, Data: session})
}

// DeleteSessionService destroys a session.
func DeleteSessionService(svc *Service, w http.ResponseWriter, r *http.Request) {

	kasmID := mux.Vars(r)["kasm-id"]
	logger := zerolog.Ctx(r.Context()).With().Str("kasm_id", kasmID).Logger()

	session, ok := findSession(svc, w, r, &logger, kasmID)
	if !ok {
		return
	}

	if err := svc.Kasm.DestroySession(logger.WithContext(r.Context()), session.KasmID, session.UserID); err != nil {
		HandleErrResponse(w, &logger, err)
		return
	}

	WriteResponse(w, http.StatusNoContent, nil)
}

// GetExtensionsService lists recorded extensions, newest first.
func GetExtensionsService(svc *Service, w http.ResponseWriter, r *http.Request) {

	logger := zerolog.Ctx(r.Context())

	if svc.DB == nil {
		WriteResponse(w, http.StatusNotImplemented, models.Response{ErrorDetails: "extension history is not configured"})
		return
	}

	limit := 0
	if value := r.URL.Query().Get("limit"); value != "" {
		var err error
		limit, err = strconv.Atoi(value)
		if err != nil || limit < 1 {
			WriteResponse(w, http.StatusBadRequest, models.Response{ErrorDetails: "limit must be a positive integer"})
			return
		}
	}

	extensions, err := svc.DB.ListExtensions(r.Context(), r.URL.Query().Get("kasm_id"), limit)
	if err != nil {
		logger.Error().Err(err).Msg("Database error retrieving extensions")
		WriteResponse(w, http.StatusInternalServerError, nil)
		return
	}

	if extensions == nil {
		extensions = []models.ExtensionEvent{}
	}
	WriteResponse(w, http.StatusOK, models.ExtensionsResponse{Extensions: extensions})
}

var errSessionNotFound = errors.New("session not found")

// findSession looks a session up among the listed ones. A response has been
// written when ok is false.
func findSession(svc *Service, w http.ResponseWriter, r *http.Request, logger *zerolog.Logger, kasmID string) (models.Session, bool) {
	sessions, err := svc.Kasm.GetSessions(r.Context())
	if err != nil {
		HandleErrResponse(w, logger, err)
		return models.Session{}, false
	}

	for _, s := range sessions {
		if s.KasmID == kasmID {
			return s, true
		}
	}

	logger.Warn().Err(errSessionNotFound).Msg("Session does not exist")
	WriteResponse(w, http.StatusNotFound, models.Response{ErrorDetails: errSessionNotFound.Error()})
	return models.Session{}, false
}
