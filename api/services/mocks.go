package services

import (
	"context"
	"time"

	"github.com/EO-DataHub/eodhp-kasm-services/models"
	"github.com/stretchr/testify/mock"
)

type MockSessionAPI struct {
	mock.Mock
}

type MockExtender struct {
	mock.Mock
}

type MockExtensionStore struct {
	mock.Mock
}

func (m *MockSessionAPI) GetSessions(ctx context.Context) ([]models.Session, error) {
	args := m.Called(ctx)
	sessions, _ := args.Get(0).([]models.Session)
	return sessions, args.Error(1)
}

func (m *MockSessionAPI) GetSessionStatus(ctx context.Context, kasmID, userID string) (*models.Session, error) {
	args := m.Called(ctx, kasmID, userID)
	session, _ := args.Get(0).(*models.Session)
	return session, args.Error(1)
}

func (m *MockSessionAPI) DestroySession(ctx context.Context, kasmID, userID string) error {
	args := m.Called(ctx, kasmID, userID)
	return args.Error(0)
}

func (m *MockExtender) Extend(ctx context.Context, session models.Session, duration time.Duration) error {
	args := m.Called(ctx, session, duration)
	return args.Error(0)
}

func (m *MockExtensionStore) ListExtensions(ctx context.Context, kasmID string, limit int) ([]models.ExtensionEvent, error) {
	args := m.Called(ctx, kasmID, limit)
	extensions, _ := args.Get(0).([]models.ExtensionEvent)
	return extensions, args.Error(1)
}
