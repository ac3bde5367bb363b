package postgres

import (
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	migrate "github.com/rubenv/sql-migrate"
)

var (
	ErrDBConnection = errors.New("database connection error")
	ErrMigration    = errors.New("database migration error")
)

type Config struct {
	Host    string `env:"HOST"    envDefault:"localhost"`
	Port    string `env:"PORT"    envDefault:"5432"`
	User    string `env:"USER"    envDefault:"greenboard"`
	Pass    string `env:"PASS"    envDefault:"greenboard"`
	Name    string `env:"NAME"    envDefault:"greenboard"`
	SSLMode string `env:"SSLMODE" envDefault:"disable"`
}

type Database struct {
	*sqlx.DB
}

func NewDatabase(cfg Config) (*Database, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Pass, cfg.Name, cfg.SSLMode)
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDBConnection, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

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
						id             VARCHAR(36) PRIMARY KEY,
						auth0_id       VARCHAR(255) NOT NULL UNIQUE,
						email          VARCHAR(320) NOT NULL,
						name           VARCHAR(255),
						picture        TEXT,
						email_verified BOOLEAN NOT NULL DEFAULT FALSE,
						created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
						updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
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

	if _, err := migrate.Exec(db.DB.DB, "postgres", migrations, migrate.Up); err != nil {
		return fmt.Errorf("%w: %w", ErrMigration, err)
	}

	return nil
}
