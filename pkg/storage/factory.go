package storage

import (
	"fmt"
	"io"
	"time"

	"github.com/absmach/greenboard/pkg/storage/badger"
	"github.com/absmach/greenboard/pkg/storage/redis"
)

const redisPrefix = "greenboard:"

var (
	_ Storage = (*badger.Database)(nil)
	_ Storage = (*redis.Store)(nil)
)

type Config struct {
	Type       string        `env:"TYPE"        envDefault:"memory"`
	BadgerPath string        `env:"BADGER_PATH" envDefault:"./data/badger"`
	RedisURL   string        `env:"REDIS_URL"   envDefault:"redis://localhost:6379/0"`
	RedisTTL   time.Duration `env:"REDIS_TTL"   envDefault:"720h"`
}

// New opens the configured store. The returned Closer is nil for the
// in-memory backend.
func New(cfg Config) (Storage, io.Closer, error) {
	switch cfg.Type {
	case "memory":
		return NewInMemoryStorage(), nil, nil
	case "badger":
		db, err := badger.NewDatabase(cfg.BadgerPath)
		if err != nil {
			return nil, nil, err
		}

		return db, db, nil
	case "redis":
		client, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		store := redis.NewStore(client, redisPrefix, cfg.RedisTTL)

		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupported, cfg.Type)
	}
}
