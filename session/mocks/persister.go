package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type Persister struct {
	mock.Mock
}

func (m *Persister) Load(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	data, _ := args.Get(0).([]byte)

	return data, args.Error(1)
}

func (m *Persister) Save(ctx context.Context, data []byte) error {
	args := m.Called(ctx, data)

	return args.Error(0)
}

func (m *Persister) Clear(ctx context.Context) error {
	args := m.Called(ctx)

	return args.Error(0)
}
