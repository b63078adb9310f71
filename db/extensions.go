package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/EO-DataHub/eodhp-kasm-services/models"
)

const extensionColumns = `id, kasm_id, user_id, username, group_id, group_setting_id,
	original_value, extended_value, status, restored, error,
	(EXTRACT(EPOCH FROM updated_at) * 1000)::BIGINT`

// RecordEvent inserts an extension or moves it to the state carried by the
// event. Events older than the stored state are ignored, and a final state
// never goes back to raised. Timestamps are unix milliseconds.
func (e *ExtensionDB) RecordEvent(ctx context.Context, event models.ExtensionEvent) error {
	original, err := json.Marshal(event.OriginalValue)
	if err != nil {
		return fmt.Errorf("error encoding original value: %w", err)
	}
	extended, err := json.Marshal(event.ExtendedValue)
	if err != nil {
		return fmt.Errorf("error encoding extended value: %w", err)
	}

	_, err = e.DB.ExecContext(ctx, `
		INSERT INTO extensions (id, kasm_id, user_id, username, group_id, group_setting_id,
			original_value, extended_value, status, restored, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			TIMESTAMPTZ 'epoch' + $12::BIGINT * INTERVAL '1 millisecond',
			TIMESTAMPTZ 'epoch' + $12::BIGINT * INTERVAL '1 millisecond')
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			restored = EXCLUDED.restored,
			error = EXCLUDED.error,
			updated_at = EXCLUDED.updated_at
		WHERE extensions.updated_at <= EXCLUDED.updated_at
			AND (EXCLUDED.status <> $13 OR extensions.status = $13)`,
		event.ID, event.KasmID, event.UserID, event.Username, event.GroupID, event.GroupSettingID,
		original, extended, string(event.Status), event.Restored, event.Error, event.Timestamp,
		string(models.ExtensionRaised))
	if err != nil {
		e.Log.Error().Err(err).Str("event_id", event.ID.String()).Msg("error recording extension event")
		return fmt.Errorf("error recording extension event: %w", err)
	}

	e.Log.Debug().Str("event_id", event.ID.String()).Str("status", string(event.Status)).Msg("Extension event recorded")
	return nil
}

// ListExtensions returns the most recently updated extensions first. A
// non-empty kasmID limits the result to one session.
func (e *ExtensionDB) ListExtensions(ctx context.Context, kasmID string, limit int) ([]models.ExtensionEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + extensionColumns + ` FROM extensions
		WHERE ($1 = '' OR kasm_id = $1)
		ORDER BY updated_at DESC
		LIMIT $2`

	return e.queryExtensions(ctx, query, kasmID, limit)
}

// PendingExtensions returns extensions that were raised before olderThan
// and never reached a final state.
func (e *ExtensionDB) PendingExtensions(ctx context.Context, olderThan time.Time) ([]models.ExtensionEvent, error) {
	query := `SELECT ` + extensionColumns + ` FROM extensions
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at`

	return e.queryExtensions(ctx, query, string(models.ExtensionRaised), olderThan)
}

func (e *ExtensionDB) queryExtensions(ctx context.Context, query string, args ...interface{}) ([]models.ExtensionEvent, error) {
	rows, err := e.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying extensions: %w", err)
	}
	defer rows.Close()

	var extensions []models.ExtensionEvent
	for rows.Next() {
		var (
			ext      models.ExtensionEvent
			status   string
			original []byte
			extended []byte
		)
		if err := rows.Scan(&ext.ID, &ext.KasmID, &ext.UserID, &ext.Username, &ext.GroupID, &ext.GroupSettingID,
			&original, &extended, &status, &ext.Restored, &ext.Error, &ext.Timestamp); err != nil {
			return nil, fmt.Errorf("error scanning extension: %w", err)
		}
		if err := json.Unmarshal(original, &ext.OriginalValue); err != nil {
			return nil, fmt.Errorf("error decoding original value of %s: %w", ext.ID, err)
		}
		if err := json.Unmarshal(extended, &ext.ExtendedValue); err != nil {
			return nil, fmt.Errorf("error decoding extended value of %s: %w", ext.ID, err)
		}
		ext.Status = models.ExtensionStatus(status)
		extensions = append(extensions, ext)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating extensions: %w", err)
	}
	return extensions, nil
}
