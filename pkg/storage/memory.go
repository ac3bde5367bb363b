package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/absmach/greenboard/pkg/errors"
)

var _ Storage = (*inMemoryStorage)(nil)

type inMemoryStorage struct {
	sync.Mutex

	data map[string][]byte
}

func NewInMemoryStorage() Storage {
	return &inMemoryStorage{
		data: make(map[string][]byte),
	}
}

func (s *inMemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, errors.ErrEmptyKey
	}

	s.Lock()
	defer s.Unlock()

	if val, ok := s.data[key]; ok {
		return slices.Clone(val), nil
	}

	return nil, errors.ErrNotFound
}

func (s *inMemoryStorage) Set(_ context.Context, key string, value []byte) error {
	if key == "" {
		return errors.ErrEmptyKey
	}

	s.Lock()
	defer s.Unlock()

	s.data[key] = slices.Clone(value)

	return nil
}

func (s *inMemoryStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return errors.ErrEmptyKey
	}

	s.Lock()
	defer s.Unlock()

	delete(s.data, key)

	return nil
}
