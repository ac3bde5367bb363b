package profiles_test

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	pkgerrors "github.com/absmach/greenboard/pkg/errors"
	"github.com/absmach/greenboard/pkg/storage/sqlite"
	"github.com/absmach/greenboard/profiles"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profileColumns = []string{"id", "auth0_id", "email", "name", "picture", "email_verified", "created_at", "updated_at"}

func setupMockDB(t *testing.T) (sqlmock.Sqlmock, profiles.Repository) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return mock, profiles.NewSQLRepository(sqlx.NewDb(db, "pgx"))
}

func TestSQLGetByExternalID(t *testing.T) {
	t.Parallel()

	query := regexp.QuoteMeta("SELECT id, auth0_id, email, name, picture, email_verified, created_at, updated_at FROM users WHERE auth0_id = $1")

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		mock, repo := setupMockDB(t)
		mock.ExpectQuery(query).
			WithArgs("ext-1").
			WillReturnRows(sqlmock.NewRows(profileColumns).
				AddRow("1", "ext-1", "a@x.com", "A", nil, nil, now, now))

		p, err := repo.GetByExternalID(context.Background(), "ext-1")
		require.NoError(t, err)
		assert.Equal(t, profiles.Profile{
			ID: "1", ExternalID: "ext-1", Email: "a@x.com", Name: "A",
			CreatedAt: now, UpdatedAt: now,
		}, p)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		mock, repo := setupMockDB(t)
		mock.ExpectQuery(query).
			WithArgs("ext-2").
			WillReturnRows(sqlmock.NewRows(profileColumns))

		_, err := repo.GetByExternalID(context.Background(), "ext-2")
		assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
	})

	t.Run("query failure", func(t *testing.T) {
		t.Parallel()

		mock, repo := setupMockDB(t)
		mock.ExpectQuery(query).WillReturnError(errBackend)

		_, err := repo.GetByExternalID(context.Background(), "ext-1")
		assert.ErrorIs(t, err, profiles.ErrDBQuery)
		assert.ErrorIs(t, err, errBackend)
	})
}

func TestSQLUpsertUsesConflictKey(t *testing.T) {
	t.Parallel()

	mock, repo := setupMockDB(t)
	p := profiles.Profile{ID: "1", ExternalID: "ext-1", Email: "a@x.com", CreatedAt: now, UpdatedAt: now}

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (auth0_id) DO UPDATE SET")).
		WithArgs("1", "ext-1", "a@x.com", nil, nil, false, now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE auth0_id = $1")).
		WithArgs("ext-1").
		WillReturnRows(sqlmock.NewRows(profileColumns).
			AddRow("1", "ext-1", "a@x.com", nil, nil, false, now, now))

	saved, err := repo.Upsert(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p, saved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLPing(t *testing.T) {
	t.Parallel()

	mock, repo := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).
		WillReturnError(errBackend)

	assert.NoError(t, repo.Ping(context.Background()))
	assert.ErrorIs(t, repo.Ping(context.Background()), profiles.ErrDBQuery)
}

func TestSQLiteRepository(t *testing.T) {
	t.Parallel()

	db, err := sqlite.NewDatabase(filepath.Join(t.TempDir(), "profiles.db"))
	require.NoError(t, err)
	defer db.Close()

	repo := profiles.NewSQLRepository(db.DB)
	ctx := context.Background()

	require.NoError(t, repo.Ping(ctx))

	older := profiles.Profile{
		ID: "1", ExternalID: "ext-1", Email: "a@x.com", Name: "A", Picture: "a.png",
		CreatedAt: now.Add(-48 * time.Hour), UpdatedAt: now.Add(-48 * time.Hour),
	}
	newer := profiles.Profile{
		ID: "2", ExternalID: "ext-2", Email: "b@x.com", EmailVerified: true,
		CreatedAt: now, UpdatedAt: now,
	}
	for _, p := range []profiles.Profile{older, newer} {
		saved, err := repo.Upsert(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, p, saved)
	}

	update := profiles.Profile{
		ID: "ignored", ExternalID: "ext-1", Email: "a2@x.com", EmailVerified: true,
		CreatedAt: now, UpdatedAt: now,
	}
	saved, err := repo.Upsert(ctx, update)
	require.NoError(t, err)
	assert.Equal(t, "1", saved.ID, "conflicting insert keeps the original row")
	assert.Equal(t, "a2@x.com", saved.Email)
	assert.Equal(t, "A", saved.Name, "empty optional fields keep stored values")
	assert.Equal(t, "a.png", saved.Picture)
	assert.True(t, saved.EmailVerified)
	assert.True(t, saved.CreatedAt.Equal(older.CreatedAt))
	assert.True(t, saved.UpdatedAt.Equal(now))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ext-2", list[0].ExternalID)
	assert.Equal(t, "ext-1", list[1].ExternalID)

	_, err = repo.GetByExternalID(ctx, "missing")
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestMemoryRepository(t *testing.T) {
	t.Parallel()

	repo := profiles.NewMemoryRepository()
	ctx := context.Background()

	_, err := repo.Upsert(ctx, profiles.Profile{})
	assert.ErrorIs(t, err, pkgerrors.ErrEmptyKey)

	_, err = repo.Upsert(ctx, profiles.Profile{ID: "1", ExternalID: "ext-1", Email: "a@x.com", Name: "A", CreatedAt: now.Add(-time.Hour)})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, profiles.Profile{ID: "2", ExternalID: "ext-2", Email: "b@x.com", CreatedAt: now})
	require.NoError(t, err)

	saved, err := repo.Upsert(ctx, profiles.Profile{ID: "3", ExternalID: "ext-1", Email: "a2@x.com", CreatedAt: now})
	require.NoError(t, err)
	assert.Equal(t, "1", saved.ID)
	assert.Equal(t, "A", saved.Name)
	assert.Equal(t, now.Add(-time.Hour), saved.CreatedAt)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ext-2", list[0].ExternalID)

	_, err = repo.GetByExternalID(ctx, "ext-3")
	assert.ErrorIs(t, err, pkgerrors.ErrNotFound)
	assert.NoError(t, repo.Ping(ctx))
}
