package session

import (
	"context"

	"github.com/absmach/greenboard/pkg/storage"
)

// RecordKey is the storage key of the persisted session record.
const RecordKey = "dashboard_auth"

// Persister stores a single encoded session record.
type Persister interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}

var _ Persister = (*kvPersister)(nil)

type kvPersister struct {
	kv  storage.Storage
	key string
}

// NewKVPersister keeps the record in kv under RecordKey, namespaced by scope
// when it is not empty.
func NewKVPersister(kv storage.Storage, scope string) Persister {
	key := RecordKey
	if scope != "" {
		key = scope + "/" + RecordKey
	}

	return &kvPersister{kv: kv, key: key}
}

func (p *kvPersister) Load(ctx context.Context) ([]byte, error) {
	return p.kv.Get(ctx, p.key)
}

func (p *kvPersister) Save(ctx context.Context, data []byte) error {
	return p.kv.Set(ctx, p.key, data)
}

func (p *kvPersister) Clear(ctx context.Context) error {
	return p.kv.Delete(ctx, p.key)
}
