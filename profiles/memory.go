package profiles

import (
	"context"
	"slices"
	"sync"

	"github.com/absmach/greenboard/pkg/errors"
)

var _ Repository = (*memoryRepository)(nil)

type memoryRepository struct {
	sync.Mutex

	data map[string]Profile
}

func NewMemoryRepository() Repository {
	return &memoryRepository{
		data: make(map[string]Profile),
	}
}

func (r *memoryRepository) GetByExternalID(_ context.Context, externalID string) (Profile, error) {
	r.Lock()
	defer r.Unlock()

	p, ok := r.data[externalID]
	if !ok {
		return Profile{}, errors.ErrNotFound
	}

	return p, nil
}

func (r *memoryRepository) Upsert(_ context.Context, p Profile) (Profile, error) {
	if p.ExternalID == "" {
		return Profile{}, errors.ErrEmptyKey
	}

	r.Lock()
	defer r.Unlock()

	if old, ok := r.data[p.ExternalID]; ok {
		p.ID = old.ID
		p.CreatedAt = old.CreatedAt
		if p.Name == "" {
			p.Name = old.Name
		}
		if p.Picture == "" {
			p.Picture = old.Picture
		}
	}
	r.data[p.ExternalID] = p

	return p, nil
}

func (r *memoryRepository) List(_ context.Context) ([]Profile, error) {
	r.Lock()
	defer r.Unlock()

	out := make([]Profile, 0, len(r.data))
	for _, p := range r.data {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Profile) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return out, nil
}

func (r *memoryRepository) Ping(context.Context) error {
	return nil
}
