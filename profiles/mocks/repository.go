package mocks

import (
	"context"

	"github.com/absmach/greenboard/profiles"
	"github.com/stretchr/testify/mock"
)

var _ profiles.Repository = (*Repository)(nil)

type Repository struct {
	mock.Mock
}

func (m *Repository) GetByExternalID(ctx context.Context, externalID string) (profiles.Profile, error) {
	args := m.Called(ctx, externalID)

	return args.Get(0).(profiles.Profile), args.Error(1)
}

func (m *Repository) Upsert(ctx context.Context, p profiles.Profile) (profiles.Profile, error) {
	args := m.Called(ctx, p)

	return args.Get(0).(profiles.Profile), args.Error(1)
}

func (m *Repository) List(ctx context.Context) ([]profiles.Profile, error) {
	args := m.Called(ctx)
	ps, _ := args.Get(0).([]profiles.Profile)

	return ps, args.Error(1)
}

func (m *Repository) Ping(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
