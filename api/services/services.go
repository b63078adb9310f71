package services

import (
	"context"
	"time"

	"github.com/EO-DataHub/eodhp-kasm-services/internal/appconfig"
	"github.com/EO-DataHub/eodhp-kasm-services/models"
)

// SessionAPI is the part of the Kasm client used by the HTTP API.
type SessionAPI interface {
	GetSessions(ctx context.Context) ([]models.Session, error)
	GetSessionStatus(ctx context.Context, kasmID, userID string) (*models.Session, error)
	DestroySession(ctx context.Context, kasmID, userID string) error
}

// Extender extends the idle window of a session.
type Extender interface {
	Extend(ctx context.Context, session models.Session, duration time.Duration) error
}

// ExtensionStore lists recorded extensions.
type ExtensionStore interface {
	ListExtensions(ctx context.Context, kasmID string, limit int) ([]models.ExtensionEvent, error)
}

// Service contains all shared dependencies for handlers.
type Service struct {
	Config   *appconfig.Config
	Kasm     SessionAPI
	Extender Extender
	// DB is nil when no database is configured.
	DB ExtensionStore
}
