package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type Navigator struct {
	mock.Mock
}

func (m *Navigator) Navigate(ctx context.Context, dest string) {
	m.Called(ctx, dest)
}

type ProfileSyncer struct {
	mock.Mock
}

func (m *ProfileSyncer) Sync(ctx context.Context, externalID string) {
	m.Called(ctx, externalID)
}
