package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/EO-DataHub/eodhp-kasm-services/internal/appconfig"
	"github.com/EO-DataHub/eodhp-kasm-services/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSessions(t *testing.T) {
	var buf bytes.Buffer
	renderSessions(&buf, []models.Session{{
		KasmID:            "abc",
		Username:          "alice",
		Image:             models.Image{FriendlyName: "Chrome"},
		OperationalStatus: "running",
		StartDate:         "2024-01-01 10:00:00",
		ExpirationDate:    "2024-01-01 16:00:00",
	}})

	out := buf.String()
	for _, want := range []string{"ID", "USER", "IMAGE", "STATUS", "abc", "alice", "Chrome", "running", "2024-01-01 16:00:00"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderUsers(t *testing.T) {
	var buf bytes.Buffer
	renderUsers(&buf, []models.User{{
		UserID:   "u1",
		Username: "alice",
		Groups:   []models.Group{{Name: "All Users"}, {Name: "Admins"}},
	}})

	assert.Contains(t, buf.String(), "All Users, Admins")
}

func TestRenderImages(t *testing.T) {
	var buf bytes.Buffer
	renderImages(&buf, []models.Image{{ImageID: "img-1", FriendlyName: "Terminal"}})

	assert.Contains(t, buf.String(), "img-1")
	assert.Contains(t, buf.String(), "Terminal")
}

func TestResolveCredentials_EnvironmentWins(t *testing.T) {
	cfg := appconfig.Default()
	cfg.Kasm.APIKey = "key"
	cfg.Kasm.APIKeySecret = "secret"
	// Would fail outside a cluster if it were consulted
	cfg.Credentials.Kubernetes.Name = "kasm-api"

	require.NoError(t, resolveCredentials(context.Background(), cfg))
	assert.Equal(t, "key", cfg.Kasm.APIKey)
	assert.Equal(t, "secret", cfg.Kasm.APIKeySecret)
}

func TestResolveCredentials_NoSource(t *testing.T) {
	cfg := appconfig.Default()

	require.NoError(t, resolveCredentials(context.Background(), cfg))
	assert.ErrorIs(t, cfg.Validate(), appconfig.ErrConfigurationMissing)
}
