package services

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/EO-DataHub/eodhp-kasm-services/models"
	"github.com/rs/zerolog"
)

func WriteResponse(w http.ResponseWriter, statusCode int, response interface{}) {

	w.Header().Set("Content-Type", "application/json")

	// Session state changes all the time so responses must not be cached
	w.Header().Set("Cache-Control", "max-age=0")

	w.WriteHeader(statusCode)

	if response != nil {
		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}
	}
}

// HandleErrResponse logs err and writes it as a models.Response with a
// status matching its kind.
func HandleErrResponse(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	status, code := ErrorStatus(err)

	event := logger.Error()
	if status < http.StatusInternalServerError {
		event = logger.Warn()
	}
	event.Err(err).Int("status", status).Msg("Kasm request failed")

	WriteResponse(w, status, models.Response{
		Success:      0,
		ErrorCode:    code,
		ErrorDetails: err.Error(),
	})
}

// ErrorStatus maps an error to an HTTP status and an error code.
func ErrorStatus(err error) (int, string) {
	var httpErr *HTTPError
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden, "permission_denied"
	case errors.Is(err, ErrUsageQuotaReached):
		return http.StatusTooManyRequests, "usage_quota_reached"
	case errors.Is(err, ErrConfigurationMissing):
		return http.StatusInternalServerError, "configuration_missing"
	case errors.Is(err, ErrMalformedResponse):
		return http.StatusBadGateway, "malformed_response"
	case errors.As(err, &httpErr):
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
