package cli

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pthm/sqltemplate/pkg/query"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "postgres" // lib/pq
	DriverPgx      = "pgx"      // jackc/pgx stdlib
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite3"
)

// PlaceholderStyle returns the bind parameter syntax understood by driver.
func PlaceholderStyle(driver string) (query.PlaceholderStyle, error) {
	switch driver {
	case DriverPostgres, DriverPgx:
		return query.Dollar, nil
	case DriverMySQL, DriverSQLite:
		return query.Question, nil
	default:
		return query.PlaceholderNone, fmt.Errorf("unsupported driver %q", driver)
	}
}

func defaultPort(driver string) int {
	if driver == DriverMySQL {
		return 3306
	}
	return 5432
}

// OpenDB opens and pings the configured database.
func OpenDB(ctx context.Context, cfg *Config) (*sql.DB, error) {
	if _, err := PlaceholderStyle(cfg.Database.Driver); err != nil {
		return nil, err
	}

	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Database.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", cfg.Database.Driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", cfg.Database.Driver, err)
	}
	return db, nil
}
