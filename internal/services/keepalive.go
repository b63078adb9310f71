package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	kasm "github.com/EO-DataHub/eodhp-kasm-services/api/services"
	"github.com/EO-DataHub/eodhp-kasm-services/internal/events"
	"github.com/EO-DataHub/eodhp-kasm-services/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrNoGroup is returned when the owner of a session belongs to no group.
	ErrNoGroup = errors.New("user has no group")

	// ErrSettingMissing is returned when a group has no keepalive setting.
	ErrSettingMissing = errors.New("keepalive setting not found")
)

// KasmAPI is the part of the Kasm client needed to extend a session.
type KasmAPI interface {
	GetUser(ctx context.Context, userID, username string) (*models.User, error)
	UpdateSetting(ctx context.Context, setting *models.Setting, value models.SettingValue) error
	KeepaliveSession(ctx context.Context, kasmID string) error
}

// Extender extends the idle window of a session by raising the keepalive
// setting of the owner's group, refreshing the session and putting the
// setting back. Extensions run one at a time: an extension reading another
// one's raised value as its original would restore the raise.
type Extender struct {
	Client   KasmAPI
	Notifier events.Notifier
	Now      func() time.Time

	mu sync.Mutex
}

func NewExtender(client KasmAPI, notifier events.Notifier) *Extender {
	if notifier == nil {
		notifier = events.NopNotifier{}
	}
	return &Extender{Client: client, Notifier: notifier, Now: time.Now}
}

// Extend refreshes a session so that it stays alive for duration. Once the
// temporary value has been written, the original value is written back on
// every return path, panics included. A failed restore is joined to the
// returned error.
func (e *Extender) Extend(ctx context.Context, session models.Session, duration time.Duration) (err error) {
	logger := zerolog.Ctx(ctx).With().Str("kasm_id", session.KasmID).Logger()

	seconds := int64(duration / time.Second)
	if seconds <= 0 {
		return fmt.Errorf("extension must be at least one second, got %s", duration)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	user, err := e.Client.GetUser(ctx, session.UserID, session.Username)
	if err != nil {
		return fmt.Errorf("failed to fetch user %s: %w", session.UserID, err)
	}
	if len(user.Groups) == 0 {
		return fmt.Errorf("%w: %s", ErrNoGroup, session.Username)
	}

	group := &user.Groups[0]
	setting := group.Setting(models.KeepaliveSetting)
	if setting == nil {
		return fmt.Errorf("%w: group %s", ErrSettingMissing, group.Name)
	}

	original := setting.Value
	extended := models.IntValue(seconds)

	event := models.ExtensionEvent{
		ID:             uuid.New(),
		KasmID:         session.KasmID,
		UserID:         session.UserID,
		Username:       session.Username,
		GroupID:        setting.GroupID,
		GroupSettingID: setting.GroupSettingID,
		OriginalValue:  original,
		ExtendedValue:  extended,
	}

	if err := e.Client.UpdateSetting(ctx, setting, extended); err != nil {
		return fmt.Errorf("failed to raise %s: %w", models.KeepaliveSetting, err)
	}

	defer func() {
		recovered := recover()
		if recovered != nil {
			err = fmt.Errorf("keepalive panicked: %v", recovered)
		}

		// The caller's context may already be done; the raise must still be undone.
		restoreErr := e.Client.UpdateSetting(context.WithoutCancel(ctx), setting, original)
		if restoreErr != nil {
			logger.Error().Err(restoreErr).Str("group_id", setting.GroupID).Msg("Failed to restore keepalive setting")
			err = errors.Join(err, fmt.Errorf("failed to restore %s to %s: %w", models.KeepaliveSetting, original, restoreErr))
		} else {
			event.Restored = true
			logger.Info().Str("group_id", setting.GroupID).Str("value", original.String()).Msg("Keepalive setting restored")
		}

		status := models.ExtensionExtended
		switch {
		case errors.Is(err, kasm.ErrUsageQuotaReached):
			status = models.ExtensionQuotaReached
		case err != nil:
			status = models.ExtensionFailed
		}
		if err != nil {
			event.Error = err.Error()
		}
		e.publish(context.WithoutCancel(ctx), event, status)

		if recovered != nil {
			panic(recovered)
		}
	}()

	logger.Info().Str("group_id", setting.GroupID).Str("value", extended.String()).Msg("Keepalive setting raised")
	e.publish(ctx, event, models.ExtensionRaised)

	return e.Client.KeepaliveSession(ctx, session.KasmID)
}

// Reconcile restores the original value of an extension that was raised but
// never restored. Nothing is written when the setting no longer holds the
// raised value. The returned event describes the outcome.
func (e *Extender) Reconcile(ctx context.Context, pending models.ExtensionEvent) (models.ExtensionEvent, error) {
	logger := zerolog.Ctx(ctx).With().Str("kasm_id", pending.KasmID).Str("group_id", pending.GroupID).Logger()
	event := pending

	e.mu.Lock()
	defer e.mu.Unlock()

	user, err := e.Client.GetUser(ctx, pending.UserID, pending.Username)
	if err != nil {
		return event, fmt.Errorf("failed to fetch user %s: %w", pending.UserID, err)
	}

	var setting *models.Setting
	for i := range user.Groups {
		if user.Groups[i].GroupID != pending.GroupID {
			continue
		}
		for j := range user.Groups[i].Settings {
			if user.Groups[i].Settings[j].GroupSettingID == pending.GroupSettingID {
				setting = &user.Groups[i].Settings[j]
			}
		}
	}
	if setting == nil {
		return event, fmt.Errorf("%w: group %s", ErrSettingMissing, pending.GroupID)
	}

	event.Status = models.ExtensionFailed
	event.Timestamp = e.Now().UTC().UnixMilli()
	if setting.Value.String() != pending.ExtendedValue.String() {
		logger.Info().Str("value", setting.Value.String()).Msg("Keepalive setting already changed, leaving it alone")
		event.Restored = true
		e.publish(ctx, event, event.Status)
		return event, nil
	}

	if err := e.Client.UpdateSetting(ctx, setting, pending.OriginalValue); err != nil {
		return event, fmt.Errorf("failed to restore %s to %s: %w", models.KeepaliveSetting, pending.OriginalValue, err)
	}

	logger.Info().Str("value", pending.OriginalValue.String()).Msg("Keepalive setting restored")
	event.Restored = true
	e.publish(ctx, event, event.Status)
	return event, nil
}

// publish sends an event. Failures are logged only.
func (e *Extender) publish(ctx context.Context, event models.ExtensionEvent, status models.ExtensionStatus) {
	event.Status = status
	event.Timestamp = e.Now().UTC().UnixMilli()

	if err := e.Notifier.Publish(ctx, event); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("event_id", event.ID.String()).Str("status", string(status)).Msg("Failed to publish extension event")
	}
}
