package sqlite

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	migrate "github.com/rubenv/sql-migrate"
)

var (
	ErrDBConnection = errors.New("database connection error")
	ErrMigration    = errors.New("database migration error")
)

type Database struct {
	*sqlx.DB
}

func NewDatabase(path string) (*Database, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDBConnection, err)
	}

	// One connection so ":memory:" databases are not split per connection.
	db.SetMaxOpenConns(1)

	database := &Database{DB: db}
	if err := database.Migrate(); err != nil {
		db.Close()

		return nil, err
	}

	return database, nil
}

func (db *Database) Migrate() error {
	migrations := &migrate.MemoryMigrationSource{
		Migrations: []*migrate.Migration{
			{
				Id: "users_01",
				Up: []string{
					`CREATE TABLE IF NOT EXISTS users (
						id             TEXT PRIMARY KEY,
						auth0_id       TEXT NOT NULL UNIQUE,
						email          TEXT NOT NULL,
						name           TEXT,
						picture        TEXT,
						email_verified BOOLEAN NOT NULL DEFAULT 0,
						created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
						updated_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
					`CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)`,
				},
				Down: []string{
					`DROP INDEX IF EXISTS idx_users_created_at`,
					`DROP INDEX IF EXISTS idx_users_email`,
					`DROP TABLE IF EXISTS users`,
				},
			},
		},
	}

	if _, err := migrate.Exec(db.DB.DB, "sqlite3", migrations, migrate.Up); err != nil {
		return fmt.Errorf("%w: %w", ErrMigration, err)
	}

	return nil
}
