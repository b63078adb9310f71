package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/EO-DataHub/eodhp-kasm-services/internal/appconfig"
)

var (
	// ErrConfigurationMissing covers absent environment values and API keys
	// that have no matching API config on the server.
	ErrConfigurationMissing = appconfig.ErrConfigurationMissing

	// ErrPermissionDenied is matched by every *PermissionDeniedError.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUsageQuotaReached is returned when keepalive reports usage_reached.
	// Callers may try again later, it is never retried here.
	ErrUsageQuotaReached = errors.New("usage quota reached")

	// ErrMalformedResponse is returned when a successful response lacks the
	// field its record lives under.
	ErrMalformedResponse = errors.New("malformed response")
)

// HTTPError is returned for any non-2xx response.
type HTTPError struct {
	Message string
	Status  int
}

func (e *HTTPError) Error() string {
	return e.Message
}

// PermissionDeniedError lists the permissions an API config lacks for an
// operation. It is permanent until the grants of the key change.
type PermissionDeniedError struct {
	ConfigName string
	Missing    []PermissionName
}

func (e *PermissionDeniedError) Error() string {
	names := make([]string, len(e.Missing))
	for i, p := range e.Missing {
		names[i] = string(p)
	}
	return fmt.Sprintf("missing permissions for '%s': %s", e.ConfigName, strings.Join(names, ", "))
}

func (e *PermissionDeniedError) Is(target error) bool {
	return target == ErrPermissionDenied
}

// ConfigurationMissingError is returned when no API config matches the key
// the client authenticates with.
type ConfigurationMissingError struct {
	APIKey string
}

func (e *ConfigurationMissingError) Error() string {
	return fmt.Sprintf("%s: no API config found for key '%s'", ErrConfigurationMissing, e.APIKey)
}

func (e *ConfigurationMissingError) Is(target error) bool {
	return target == ErrConfigurationMissing
}
