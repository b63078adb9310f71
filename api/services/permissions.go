package services

import (
	"context"

	"github.com/EO-DataHub/eodhp-kasm-services/models"
	"github.com/rs/zerolog"
)

// PermissionName is the name of a permission as granted in Kasm.
type PermissionName string

const (
	PermissionUser             PermissionName = "User"
	PermissionUsersAuthSession PermissionName = "Users Auth Session"
	PermissionImagesView       PermissionName = "Images View"
	PermissionUsersView        PermissionName = "Users View"
)

// CheckPermissions verifies that the API config behind the client's key is
// granted every required permission. It must be called before a privileged
// operation is attempted.
func (kc *KasmClient) CheckPermissions(ctx context.Context, required ...PermissionName) error {
	logger := zerolog.Ctx(ctx)

	configs, err := kc.GetAPIConfigs(ctx)
	if err != nil {
		return err
	}

	config := findAPIConfig(configs, kc.APIKey)
	if config == nil {
		logger.Error().Msg("No API config matches the client key")
		return &ConfigurationMissingError{APIKey: kc.APIKey}
	}

	granted, err := kc.GetPermissionsGroup(ctx, *config)
	if err != nil {
		return err
	}

	if missing := MissingPermissions(required, granted); len(missing) > 0 {
		logger.Warn().Str("api_config", config.Name).Interface("missing", missing).Msg("Permission denied")
		return &PermissionDeniedError{ConfigName: config.Name, Missing: missing}
	}

	logger.Debug().Str("api_config", config.Name).Msg("Permission check passed")
	return nil
}

// MissingPermissions returns the required permissions that are not granted,
// in the order they were required and without duplicates.
func MissingPermissions(required []PermissionName, granted []models.Permission) []PermissionName {
	grantedNames := make(map[PermissionName]struct{}, len(granted))
	for _, p := range granted {
		grantedNames[PermissionName(p.PermissionName)] = struct{}{}
	}

	var missing []PermissionName
	seen := make(map[PermissionName]struct{}, len(required))
	for _, p := range required {
		if _, ok := grantedNames[p]; ok {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		missing = append(missing, p)
	}
	return missing
}

func findAPIConfig(configs []models.APIConfig, apiKey string) *models.APIConfig {
	for i := range configs {
		if configs[i].APIKey == apiKey {
			return &configs[i]
		}
	}
	return nil
}
