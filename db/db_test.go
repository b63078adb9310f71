package db

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/EO-DataHub/eodhp-kasm-services/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a PostgreSQL container and returns a migrated
// ExtensionDB connected to it.
func setupPostgres(t *testing.T) *ExtensionDB {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:13",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(time.Minute),
	}

	postgresC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "could not start container")
	t.Cleanup(func() { _ = postgresC.Terminate(ctx) })

	host, err := postgresC.Host(ctx)
	require.NoError(t, err)
	port, err := postgresC.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	logger := zerolog.New(os.Stdout)
	extensionDB, err := NewExtensionDB("postgres", connStr, &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = extensionDB.Close() })

	require.NoError(t, extensionDB.Migrate())
	return extensionDB
}

func TestNewExtensionDB_MissingSource(t *testing.T) {
	logger := zerolog.Nop()
	_, err := NewExtensionDB("postgres", "", &logger)
	assert.Error(t, err)
}

func TestExtensionDB(t *testing.T) {
	extensionDB := setupPostgres(t)
	ctx := context.Background()

	// Running migrations twice is a no-op
	require.NoError(t, extensionDB.Migrate())

	raised := models.ExtensionEvent{
		ID:             uuid.New(),
		Status:         models.ExtensionRaised,
		KasmID:         "abc",
		UserID:         "u1",
		Username:       "alice",
		GroupID:        "g1",
		GroupSettingID: "g1-keepalive",
		OriginalValue:  models.StringValue("21600"),
		ExtendedValue:  models.IntValue(7200),
		Timestamp:      time.Now().Add(-time.Hour).UnixMilli(),
	}
	require.NoError(t, extensionDB.RecordEvent(ctx, raised))

	other := raised
	other.ID = uuid.New()
	other.KasmID = "def"
	other.Timestamp = time.Now().UnixMilli()
	require.NoError(t, extensionDB.RecordEvent(ctx, other))

	t.Run("pending extensions", func(t *testing.T) {
		pending, err := extensionDB.PendingExtensions(ctx, time.Now().Add(-time.Minute))
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, raised, pending[0])
		assert.False(t, pending[0].OriginalValue.IsInt())
		assert.True(t, pending[0].ExtendedValue.IsInt())
	})

	t.Run("final event replaces state", func(t *testing.T) {
		extended := raised
		extended.Status = models.ExtensionExtended
		extended.Restored = true
		extended.Timestamp = raised.Timestamp + 1
		require.NoError(t, extensionDB.RecordEvent(ctx, extended))

		// A late duplicate of the first event is ignored
		require.NoError(t, extensionDB.RecordEvent(ctx, raised))

		list, err := extensionDB.ListExtensions(ctx, "abc", 10)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, models.ExtensionExtended, list[0].Status)
		assert.True(t, list[0].Restored)

		pending, err := extensionDB.PendingExtensions(ctx, time.Now().Add(-time.Minute))
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("final state is not reverted by a redelivered raise", func(t *testing.T) {
		redelivered := raised
		redelivered.ID = uuid.New()
		redelivered.KasmID = "ghi"
		require.NoError(t, extensionDB.RecordEvent(ctx, redelivered))

		quota := redelivered
		quota.Status = models.ExtensionQuotaReached
		quota.Restored = true
		require.NoError(t, extensionDB.RecordEvent(ctx, quota))

		// Same millisecond as the final event
		require.NoError(t, extensionDB.RecordEvent(ctx, redelivered))

		list, err := extensionDB.ListExtensions(ctx, "ghi", 10)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, models.ExtensionQuotaReached, list[0].Status)
		assert.True(t, list[0].Restored)
		assert.Equal(t, raised.Timestamp, list[0].Timestamp)

		pending, err := extensionDB.PendingExtensions(ctx, time.Now().Add(-time.Minute))
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("list all", func(t *testing.T) {
		list, err := extensionDB.ListExtensions(ctx, "", 0)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "def", list[0].KasmID)
	})
}
