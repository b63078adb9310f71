// Package secrets reads the Kasm API key pair from Kubernetes or AWS Secrets
// Manager when it is not supplied by the environment.
package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/EO-DataHub/eodhp-kasm-services/internal/appconfig"
	"github.com/rs/zerolog/log"
)

// ErrSecretNotFound is returned when the configured secret does not exist.
var ErrSecretNotFound = errors.New("secret not found")

const (
	DefaultKeyField    = "api_key"
	DefaultSecretField = "api_key_secret"
)

// Credentials is a Kasm API key pair.
type Credentials struct {
	APIKey       string `json:"api_key"`
	APIKeySecret string `json:"api_key_secret"`
}

// Source loads a key pair from somewhere.
type Source interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// Apply fills in the key and secret missing from cfg. Values already set
// are kept and the source is not read at all when nothing is missing.
func Apply(ctx context.Context, source Source, cfg *appconfig.KasmConfig) error {
	if cfg.APIKey != "" && cfg.APIKeySecret != "" {
		return nil
	}

	creds, err := source.Credentials(ctx)
	if err != nil {
		return err
	}

	if cfg.APIKey == "" {
		cfg.APIKey = creds.APIKey
	}
	if cfg.APIKeySecret == "" {
		cfg.APIKeySecret = creds.APIKeySecret
	}

	log.Debug().Msgf("Kasm credentials loaded from %T", source)
	return nil
}

func missingField(secret, field string) error {
	return fmt.Errorf("%w: secret %s has no field %q", appconfig.ErrConfigurationMissing, secret, field)
}
