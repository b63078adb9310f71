package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/EO-DataHub/eodhp-kasm-services/internal/kasmtest"
	"github.com/EO-DataHub/eodhp-kasm-services/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func granted(names ...string) []models.Permission {
	permissions := make([]models.Permission, len(names))
	for i, name := range names {
		permissions[i] = models.Permission{PermissionName: name}
	}
	return permissions
}

func TestMissingPermissions(t *testing.T) {
	tests := []struct {
		name     string
		required []PermissionName
		granted  []models.Permission
		missing  []PermissionName
	}{
		{
			name:     "subset is allowed",
			required: []PermissionName{PermissionUser},
			granted:  granted("User", "Users Auth Session"),
		},
		{
			name:     "nothing required",
			required: nil,
			granted:  nil,
		},
		{
			name:     "exact difference in required order",
			required: []PermissionName{PermissionUsersView, PermissionUser, PermissionImagesView},
			granted:  granted("User"),
			missing:  []PermissionName{PermissionUsersView, PermissionImagesView},
		},
		{
			name:     "duplicates reported once",
			required: []PermissionName{PermissionUser, PermissionUser},
			granted:  granted("Images View"),
			missing:  []PermissionName{PermissionUser},
		},
		{
			name:     "names are compared exactly",
			required: []PermissionName{PermissionUser},
			granted:  granted("user"),
			missing:  []PermissionName{PermissionUser},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.missing, MissingPermissions(tt.required, tt.granted))
		})
	}
}

func TestCheckPermissions_Allowed(t *testing.T) {
	server := kasmtest.NewServer(t)

	err := newTestClient(server).CheckPermissions(context.Background(), PermissionUser, PermissionUsersAuthSession)
	require.NoError(t, err)

	calls := server.CallsTo("admin/get_permissions_group")
	require.Len(t, calls, 1)
	target, ok := calls[0].Body["target_api_config"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "cfg-1", target["api_id"])
}

func TestCheckPermissions_Denied(t *testing.T) {
	server := kasmtest.NewServer(t)
	server.Granted = []string{"User"}

	err := newTestClient(server).CheckPermissions(context.Background(), PermissionUser, PermissionUsersAuthSession)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPermissionDenied))
	assert.False(t, errors.Is(err, ErrConfigurationMissing))

	var denied *PermissionDeniedError
	require.True(t, errors.As(err, &denied))
	assert.Equal(t, kasmtest.ConfigName, denied.ConfigName)
	assert.Equal(t, []PermissionName{PermissionUsersAuthSession}, denied.Missing)
	assert.Equal(t, "missing permissions for 'automation': Users Auth Session", err.Error())
}

func TestCheckPermissions_NoMatchingConfig(t *testing.T) {
	server := kasmtest.NewServer(t)
	server.Configs = []models.APIConfig{{APIID: "other", Name: "other", APIKey: "another-key"}}

	err := newTestClient(server).CheckPermissions(context.Background(), PermissionUser)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigurationMissing))
	assert.False(t, errors.Is(err, ErrPermissionDenied))
	assert.Empty(t, server.CallsTo("admin/get_permissions_group"))
}

func TestCheckPermissions_TransportFailure(t *testing.T) {
	server := kasmtest.NewServer(t)
	server.Fail["admin/get_api_configs"] = http.StatusServiceUnavailable

	err := newTestClient(server).CheckPermissions(context.Background(), PermissionUser)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.Status)
}

func TestGuardedOperations_ShortCircuit(t *testing.T) {
	server := kasmtest.NewServer(t)
	server.Granted = []string{}
	server.Sessions = []models.Session{{KasmID: "abc", UserID: "u1"}}
	client := newTestClient(server)
	ctx := context.Background()

	assert.ErrorIs(t, client.KeepaliveSession(ctx, "abc"), ErrPermissionDenied)
	assert.ErrorIs(t, client.DestroySession(ctx, "abc", "u1"), ErrPermissionDenied)
	_, err := client.RequestSession(ctx, "u1", "img-1", RequestSessionOptions{})
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = client.GetImages(ctx)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = client.GetUsers(ctx)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	assert.Empty(t, server.CallsTo("public/keepalive"))
	assert.Empty(t, server.CallsTo("public/destroy_kasm"))
	assert.Empty(t, server.CallsTo("public/request_kasm"))
	assert.Empty(t, server.CallsTo("public/get_images"))
	assert.Empty(t, server.CallsTo("public/get_users"))
	assert.Len(t, server.Sessions, 1)
}
