package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/EO-DataHub/eodhp-kasm-services/models"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// KasmClient is a client for interacting with the Kasm Workspaces API.
type KasmClient struct {
	BaseURL      string
	APIKey       string
	APIKeySecret string
	HTTPClient   *resty.Client
}

// RequestSessionOptions are the optional parameters of RequestSession.
type RequestSessionOptions struct {
	EnableSharing bool
	Environment   map[string]string
}

// NewKasmClient creates a new instance of KasmClient. Every call made by the
// client is bounded by timeout and is never retried.
func NewKasmClient(baseURL, apiKey, apiKeySecret string, timeout time.Duration) *KasmClient {
	baseURL = strings.TrimRight(baseURL, "/")

	httpClient := resty.New().
		SetBaseURL(baseURL+"/api").
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &KasmClient{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		APIKeySecret: apiKeySecret,
		HTTPClient:   httpClient,
	}
}

// GetUser retrieves a user together with the settings of each of its groups.
func (kc *KasmClient) GetUser(ctx context.Context, userID, username string) (*models.User, error) {
	respBody, err := kc.post(ctx, "public/get_user", map[string]any{
		"target_user": map[string]any{
			"user_id":  userID,
			"username": username,
		},
	})
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := decodeField(respBody, models.UserField, &user); err != nil {
		return nil, err
	}

	if err := kc.loadGroupSettings(ctx, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// GetUsers lists the users visible to the API key.
func (kc *KasmClient) GetUsers(ctx context.Context) ([]models.User, error) {
	if err := kc.CheckPermissions(ctx, PermissionUsersView); err != nil {
		return nil, err
	}

	respBody, err := kc.post(ctx, "public/get_users", nil)
	if err != nil {
		return nil, err
	}

	var users []models.User
	if err := decodeField(respBody, models.UsersField, &users); err != nil {
		return nil, err
	}

	for i := range users {
		if err := kc.loadGroupSettings(ctx, &users[i]); err != nil {
			return nil, err
		}
	}

	return users, nil
}

// GetSettingsGroup retrieves all settings of a group.
func (kc *KasmClient) GetSettingsGroup(ctx context.Context, groupID string) ([]models.Setting, error) {
	respBody, err := kc.post(ctx, "admin/get_settings_group", map[string]any{
		"target_group": map[string]any{
			"group_id": groupID,
		},
	})
	if err != nil {
		return nil, err
	}

	var settings []models.Setting
	if err := decodeField(respBody, models.SettingsField, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdateSetting writes a new value for a group setting. The local copy is
// only changed once the service has accepted the write.
func (kc *KasmClient) UpdateSetting(ctx context.Context, setting *models.Setting, value models.SettingValue) error {
	_, err := kc.post(ctx, "admin/update_settings_group", map[string]any{
		"target_group": map[string]any{
			"group_id": setting.GroupID,
		},
		"target_setting": map[string]any{
			"group_setting_id": setting.GroupSettingID,
			"value":            value,
		},
	})
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Debug().
		Str("group_id", setting.GroupID).
		Str("setting", setting.Name).
		Str("old_value", setting.Value.String()).
		Str("new_value", value.String()).
		Msg("Setting updated")

	setting.Value = value
	return nil
}

// GetImages lists the images visible to the API key.
func (kc *KasmClient) GetImages(ctx context.Context) ([]models.Image, error) {
	if err := kc.CheckPermissions(ctx, PermissionImagesView); err != nil {
		return nil, err
	}

	respBody, err := kc.post(ctx, "public/get_images", nil)
	if err != nil {
		return nil, err
	}

	var images []models.Image
	if err := decodeField(respBody, models.ImagesField, &images); err != nil {
		return nil, err
	}
	return images, nil
}

// GetAPIConfigs lists the API key configurations.
func (kc *KasmClient) GetAPIConfigs(ctx context.Context) ([]models.APIConfig, error) {
	respBody, err := kc.post(ctx, "admin/get_api_configs", nil)
	if err != nil {
		return nil, err
	}

	var configs []models.APIConfig
	if err := decodeField(respBody, models.APIConfigsField, &configs); err != nil {
		return nil, err
	}
	return configs, nil
}

// GetPermissionsGroup lists the permissions granted to an API config.
func (kc *KasmClient) GetPermissionsGroup(ctx context.Context, config models.APIConfig) ([]models.Permission, error) {
	respBody, err := kc.post(ctx, "admin/get_permissions_group", map[string]any{
		"target_api_config": config,
	})
	if err != nil {
		return nil, err
	}

	var permissions []models.Permission
	if err := decodeField(respBody, models.PermissionsField, &permissions); err != nil {
		return nil, err
	}
	return permissions, nil
}

// GetSessions lists the active sessions visible to the API key.
func (kc *KasmClient) GetSessions(ctx context.Context) ([]models.Session, error) {
	respBody, err := kc.post(ctx, "public/get_kasms", nil)
	if err != nil {
		return nil, err
	}

	var sessions []models.Session
	if err := decodeField(respBody, models.KasmsField, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// GetSessionStatus retrieves a single session of a user.
func (kc *KasmClient) GetSessionStatus(ctx context.Context, kasmID, userID string) (*models.Session, error) {
	respBody, err := kc.post(ctx, "public/get_kasm_status", map[string]any{
		"kasm_id": kasmID,
		"user_id": userID,
	})
	if err != nil {
		return nil, err
	}

	var session models.Session
	if err := decodeField(respBody, models.KasmField, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// RequestSession starts a new session of the given image for a user.
func (kc *KasmClient) RequestSession(ctx context.Context, userID, imageID string, opts RequestSessionOptions) (*models.Session, error) {
	if err := kc.CheckPermissions(ctx, PermissionUser, PermissionUsersAuthSession); err != nil {
		return nil, err
	}

	respBody, err := kc.post(ctx, "public/request_kasm", map[string]any{
		"user_id":        userID,
		"image_id":       imageID,
		"enable_sharing": opts.EnableSharing,
		"environment":    opts.Environment,
	})
	if err != nil {
		return nil, err
	}

	var created models.RequestKasmResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if created.KasmID == "" {
		return nil, fmt.Errorf("%w: missing %q%s", ErrMalformedResponse, "kasm_id", kasmErrorSuffix(respBody))
	}

	zerolog.Ctx(ctx).Info().Str("kasm_id", created.KasmID).Str("image_id", imageID).Msg("Session requested")

	return kc.GetSessionStatus(ctx, created.KasmID, userID)
}

// KeepaliveSession resets the idle timer of a session. ErrUsageQuotaReached
// is returned when the service refuses the refresh.
func (kc *KasmClient) KeepaliveSession(ctx context.Context, kasmID string) error {
	if err := kc.CheckPermissions(ctx, PermissionUser, PermissionUsersAuthSession); err != nil {
		return err
	}

	respBody, err := kc.post(ctx, "public/keepalive", map[string]any{
		"kasm_id": kasmID,
	})
	if err != nil {
		return err
	}

	var usageReached bool
	if err := decodeField(respBody, "usage_reached", &usageReached); err != nil {
		return err
	}
	if usageReached {
		return ErrUsageQuotaReached
	}

	zerolog.Ctx(ctx).Debug().Str("kasm_id", kasmID).Msg("Session keepalive sent")
	return nil
}

// DestroySession terminates a session. Only transport failures are reported.
func (kc *KasmClient) DestroySession(ctx context.Context, kasmID, userID string) error {
	if err := kc.CheckPermissions(ctx, PermissionUser, PermissionUsersAuthSession); err != nil {
		return err
	}

	_, err := kc.post(ctx, "public/destroy_kasm", map[string]any{
		"kasm_id": kasmID,
		"user_id": userID,
	})
	if err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Str("kasm_id", kasmID).Msg("Session destroyed")
	return nil
}

// loadGroupSettings fills in the settings of every group of a user.
func (kc *KasmClient) loadGroupSettings(ctx context.Context, user *models.User) error {
	for i := range user.Groups {
		settings, err := kc.GetSettingsGroup(ctx, user.Groups[i].GroupID)
		if err != nil {
			return fmt.Errorf("failed to fetch settings of group %s: %w", user.Groups[i].GroupID, err)
		}
		user.Groups[i].Settings = settings
	}
	return nil
}

// authenticate merges a request body over the API key pair. Fields of the
// body win, so a call may authenticate with another key pair.
func (kc *KasmClient) authenticate(body map[string]any) map[string]any {
	payload := make(map[string]any, len(body)+2)
	payload["api_key"] = kc.APIKey
	payload["api_key_secret"] = kc.APIKeySecret
	for k, v := range body {
		payload[k] = v
	}
	return payload
}

func (kc *KasmClient) post(ctx context.Context, path string, body map[string]any) ([]byte, error) {
	return kc.makeRequest(ctx, http.MethodPost, path, body)
}

// Helper function for making HTTP requests to the Kasm API.
func (kc *KasmClient) makeRequest(ctx context.Context, method, path string, body map[string]any) ([]byte, error) {
	req := kc.HTTPClient.R().SetContext(ctx)
	if method != http.MethodGet {
		req.SetBody(kc.authenticate(body))
	}

	resp, err := req.Execute(method, "/"+path)
	if err != nil {
		return nil, err
	}

	respBody := resp.Body()
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		message := fmt.Sprintf("error response from %s: status %d", path, resp.StatusCode())
		var kasmErr models.KasmError
		if json.Unmarshal(respBody, &kasmErr) == nil && kasmErr.ErrorMessage != "" {
			message = fmt.Sprintf("%s: %s", message, kasmErr.ErrorMessage)
		} else if len(respBody) > 0 {
			message = fmt.Sprintf("%s, body: %s", message, string(respBody))
		}
		return respBody, &HTTPError{Message: message, Status: resp.StatusCode()}
	}

	return respBody, nil
}

// decodeField unmarshals the named top level field of a response body.
func decodeField(body []byte, field string, out any) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	raw, ok := fields[field]
	if !ok {
		return fmt.Errorf("%w: missing %q%s", ErrMalformedResponse, field, kasmErrorSuffix(body))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decoding %q: %v", ErrMalformedResponse, field, err)
	}
	return nil
}

func kasmErrorSuffix(body []byte) string {
	var kasmErr models.KasmError
	if json.Unmarshal(body, &kasmErr) == nil && kasmErr.ErrorMessage != "" {
		return ": " + kasmErr.ErrorMessage
	}
	return ""
}
