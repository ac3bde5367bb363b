package mocks

import (
	"context"
	"net/url"

	"github.com/absmach/greenboard/dashboard"
	"github.com/absmach/greenboard/profiles"
	"github.com/absmach/greenboard/session"
	"github.com/stretchr/testify/mock"
)

var _ dashboard.Service = (*MockService)(nil)

// MockService is a mock implementation of the dashboard.Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) Snapshot(ctx context.Context) (dashboard.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(dashboard.Snapshot), args.Error(1)
}

func (m *MockService) RefreshSnapshot(ctx context.Context) (dashboard.Snapshot, error) {
	args := m.Called(ctx)
	return args.Get(0).(dashboard.Snapshot), args.Error(1)
}

// EvaluateSession resolves the session of a view
func (m *MockService) EvaluateSession(ctx context.Context, viewID string, entry *url.URL) (session.Evaluation, error) {
	args := m.Called(ctx, viewID, entry)
	return args.Get(0).(session.Evaluation), args.Error(1)
}

func (m *MockService) SessionStatus(ctx context.Context, viewID string) (dashboard.SessionStatus, error) {
	args := m.Called(ctx, viewID)
	return args.Get(0).(dashboard.SessionStatus), args.Error(1)
}

func (m *MockService) Logout(ctx context.Context, viewID string) (dashboard.SessionStatus, error) {
	args := m.Called(ctx, viewID)
	return args.Get(0).(dashboard.SessionStatus), args.Error(1)
}

func (m *MockService) ListUsers(ctx context.Context) ([]profiles.Profile, error) {
	args := m.Called(ctx)
	return args.Get(0).([]profiles.Profile), args.Error(1)
}

// GetUser retrieves a profile by external id
func (m *MockService) GetUser(ctx context.Context, externalID string) (profiles.Profile, error) {
	args := m.Called(ctx, externalID)
	return args.Get(0).(profiles.Profile), args.Error(1)
}

func (m *MockService) UpsertUser(ctx context.Context, p profiles.Profile) (profiles.Profile, error) {
	args := m.Called(ctx, p)
	return args.Get(0).(profiles.Profile), args.Error(1)
}

func (m *MockService) UserStats(ctx context.Context) (profiles.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(profiles.Stats), args.Error(1)
}

func (m *MockService) DatabaseStatus(ctx context.Context) (dashboard.Platform, error) {
	args := m.Called(ctx)
	return args.Get(0).(dashboard.Platform), args.Error(1)
}

func (m *MockService) Start(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockService) Shutdown(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
