package appconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoadConfig_FileAndTemplate(t *testing.T) {
	unsetEnv(t, "KASM_URL", "API_KEY", "API_KEY_SECRET")
	t.Setenv("TEST_PULSAR_URL", "pulsar://pulsar:6650")

	path := writeConfig(t, `
basePath: /kasm
kasm:
  url: https://kasm.example.com/
  apiKey: file-key
  apiKeySecret: file-secret
  timeoutSeconds: 3
pulsar:
  url: {{ .TEST_PULSAR_URL }}
  topicProducer: keepalive-extensions
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/kasm", cfg.BasePath)
	assert.Equal(t, "https://kasm.example.com", cfg.Kasm.URL)
	assert.Equal(t, "file-key", cfg.Kasm.APIKey)
	assert.Equal(t, 3*time.Second, cfg.Kasm.Timeout())
	assert.Equal(t, DefaultHours, cfg.Kasm.DefaultHours)
	assert.Equal(t, DefaultMaxHours, cfg.Kasm.MaxHours)
	assert.Equal(t, "pulsar://pulsar:6650", cfg.Pulsar.URL)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("KASM_URL", "https://env.example.com")
	t.Setenv("API_KEY", "env-key")
	t.Setenv("API_KEY_SECRET", "env-secret")

	path := writeConfig(t, `
kasm:
  url: https://file.example.com
  apiKey: file-key
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.Kasm.URL)
	assert.Equal(t, "env-key", cfg.Kasm.APIKey)
	assert.Equal(t, "env-secret", cfg.Kasm.APIKeySecret)
}

func TestLoadConfig_NoFile(t *testing.T) {
	t.Setenv("KASM_URL", "https://env.example.com")
	unsetEnv(t, "API_KEY", "API_KEY_SECRET")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeoutSeconds*time.Second, cfg.Kasm.Timeout())
	assert.Equal(t, "kasm_admin", cfg.Auth.AdminRole)

	err = cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrConfigurationMissing))
	assert.Contains(t, err.Error(), "API_KEY, API_KEY_SECRET")
	assert.NotContains(t, err.Error(), "KASM_URL")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_HourBounds(t *testing.T) {
	tests := []struct {
		name         string
		kasm         string
		defaultHours int
		maxHours     int
	}{
		{name: "configured", kasm: "defaultHours: 2\n  maxHours: 12", defaultHours: 2, maxHours: 12},
		{name: "max beyond a duration", kasm: "maxHours: 9000000", defaultHours: DefaultHours, maxHours: DefaultMaxHours},
		{name: "default above max", kasm: "defaultHours: 48\n  maxHours: 24", defaultHours: 24, maxHours: 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, "kasm:\n  "+tt.kasm+"\n"))
			require.NoError(t, err)
			assert.Equal(t, tt.defaultHours, cfg.Kasm.DefaultHours)
			assert.Equal(t, tt.maxHours, cfg.Kasm.MaxHours)
		})
	}
}
