package storage_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/absmach/greenboard/pkg/errors"
	"github.com/absmach/greenboard/pkg/storage"
	"github.com/absmach/greenboard/pkg/storage/badger"
	"github.com/absmach/greenboard/pkg/storage/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func engines(t *testing.T) map[string]storage.Storage {
	t.Helper()

	db, err := badger.NewDatabase(filepath.Join(t.TempDir(), "badger"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	client, err := redis.NewClient("redis://" + mr.Addr())
	require.NoError(t, err)
	rs := redis.NewStore(client, "test:", 0)
	t.Cleanup(func() { rs.Close() })

	return map[string]storage.Storage{
		"memory": storage.NewInMemoryStorage(),
		"badger": db,
		"redis":  rs,
	}
}

func TestStorage(t *testing.T) {
	for name, s := range engines(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			cases := []struct {
				desc  string
				key   string
				value []byte
				err   error
			}{
				{
					desc:  "set and get value",
					key:   "viewer/dashboard_auth",
					value: []byte(`{"auth":true}`),
				},
				{
					desc:  "overwrite value",
					key:   "viewer/dashboard_auth",
					value: []byte(`{"auth":false}`),
				},
				{
					desc:  "empty key",
					key:   "",
					value: []byte("x"),
					err:   errors.ErrEmptyKey,
				},
			}

			for _, tc := range cases {
				err := s.Set(ctx, tc.key, tc.value)
				assert.ErrorIs(t, err, tc.err, tc.desc)
				if tc.err != nil {
					continue
				}
				got, err := s.Get(ctx, tc.key)
				require.NoError(t, err, tc.desc)
				assert.Equal(t, tc.value, got, tc.desc)
			}

			require.NoError(t, s.Delete(ctx, "viewer/dashboard_auth"))
			_, err := s.Get(ctx, "viewer/dashboard_auth")
			assert.ErrorIs(t, err, errors.ErrNotFound)

			assert.NoError(t, s.Delete(ctx, "missing"), "deleting a missing key is not an error")
		})
	}
}

func TestInMemoryStorageCopiesValues(t *testing.T) {
	t.Parallel()

	s := storage.NewInMemoryStorage()
	ctx := context.Background()

	val := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", val))
	val[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestRedisStoreTTL(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	client, err := redis.NewClient("redis://" + mr.Addr())
	require.NoError(t, err)
	s := redis.NewStore(client, "ttl:", 30*time.Minute)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, "k", []byte("v")))
	assert.True(t, mr.Exists("ttl:k"))
	assert.Positive(t, mr.TTL("ttl:k"))

	mr.FastForward(31 * time.Minute)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestNew(t *testing.T) {
	t.Parallel()

	cases := []struct {
		desc   string
		cfg    storage.Config
		closer bool
		err    error
	}{
		{
			desc: "memory",
			cfg:  storage.Config{Type: "memory"},
		},
		{
			desc:   "badger",
			cfg:    storage.Config{Type: "badger", BadgerPath: filepath.Join(t.TempDir(), "kv")},
			closer: true,
		},
		{
			desc: "unknown",
			cfg:  storage.Config{Type: "etcd"},
			err:  storage.ErrUnsupported,
		},
	}

	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			s, closer, err := storage.New(tc.cfg)
			assert.ErrorIs(t, err, tc.err)
			if tc.err != nil {
				return
			}
			assert.NotNil(t, s)
			if tc.closer {
				require.NotNil(t, closer)
				assert.NoError(t, closer.Close())
			} else {
				assert.Nil(t, closer)
			}
		})
	}
}
