package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // driver: postgres
	_ "modernc.org/sqlite" // driver: sqlite

	"github.com/noah-isme/evaluer-api/pkg/config"
)

const defaultSQLiteDSN = "file:evaluer.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"

// Open returns a configured relational client for the selected driver and bootstraps the grade schema
// when auto-migration is enabled.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sqlx.DB, error) {
	driver, dsn, err := resolve(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := EnsureSchema(ctx, db, cfg.Driver); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return db, nil
}

func resolve(cfg config.DatabaseConfig) (string, string, error) {
	switch cfg.Driver {
	case config.DriverPostgres, "":
		if cfg.DSN != "" {
			return "postgres", cfg.DSN, nil
		}
		return "postgres", postgresDSN(cfg), nil
	case config.DriverPGX:
		if cfg.DSN != "" {
			return "pgx", cfg.DSN, nil
		}
		return "pgx", postgresDSN(cfg), nil
	case config.DriverSQLite:
		if cfg.DSN != "" {
			return "sqlite", cfg.DSN, nil
		}
		return "sqlite", defaultSQLiteDSN, nil
	default:
		return "", "", fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

func postgresDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}
