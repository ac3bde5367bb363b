package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/absmach/greenboard/pkg/errors"
	"github.com/jmoiron/sqlx"
)

var (
	ErrDBQuery = errors.New("database query error")
	ErrUpsert  = errors.New("upsert error")
)

const columns = `id, auth0_id, email, name, picture, email_verified, created_at, updated_at`

var _ Repository = (*sqlRepository)(nil)

type sqlRepository struct {
	db *sqlx.DB
}

// NewSQLRepository works on any sqlx driver; queries are rebound to the
// driver's placeholder style.
func NewSQLRepository(db *sqlx.DB) Repository {
	return &sqlRepository{db: db}
}

type dbProfile struct {
	ID            string         `db:"id"`
	ExternalID    string         `db:"auth0_id"`
	Email         string         `db:"email"`
	Name          sql.NullString `db:"name"`
	Picture       sql.NullString `db:"picture"`
	EmailVerified sql.NullBool   `db:"email_verified"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r *sqlRepository) GetByExternalID(ctx context.Context, externalID string) (Profile, error) {
	query := r.db.Rebind(`SELECT ` + columns + ` FROM users WHERE auth0_id = ?`)

	var row dbProfile
	if err := r.db.GetContext(ctx, &row, query, externalID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Profile{}, pkgerrors.ErrNotFound
		}

		return Profile{}, fmt.Errorf("%w: %w", ErrDBQuery, err)
	}

	return toProfile(row), nil
}

func (r *sqlRepository) Upsert(ctx context.Context, p Profile) (Profile, error) {
	query := r.db.Rebind(`INSERT INTO users (` + columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (auth0_id) DO UPDATE SET
			email = excluded.email,
			name = COALESCE(excluded.name, users.name),
			picture = COALESCE(excluded.picture, users.picture),
			email_verified = excluded.email_verified,
			updated_at = excluded.updated_at`)

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.ExternalID, p.Email, nullString(p.Name), nullString(p.Picture),
		p.EmailVerified, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %w", ErrUpsert, err)
	}

	return r.GetByExternalID(ctx, p.ExternalID)
}

func (r *sqlRepository) List(ctx context.Context) ([]Profile, error) {
	query := `SELECT ` + columns + ` FROM users ORDER BY created_at DESC`

	var rows []dbProfile
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDBQuery, err)
	}

	out := make([]Profile, len(rows))
	for i, row := range rows {
		out[i] = toProfile(row)
	}

	return out, nil
}

// Ping checks the users table is reachable, not only the server.
func (r *sqlRepository) Ping(ctx context.Context) error {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return fmt.Errorf("%w: %w", ErrDBQuery, err)
	}

	return nil
}

func toProfile(row dbProfile) Profile {
	return Profile{
		ID:            row.ID,
		ExternalID:    row.ExternalID,
		Email:         row.Email,
		Name:          row.Name.String,
		Picture:       row.Picture.String,
		EmailVerified: row.EmailVerified.Bool,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
