package runner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrUndefinedTable is returned when the statement references a table that
// does not exist. The driver error is kept in the chain.
var ErrUndefinedTable = errors.New("sqltemplate: undefined table")

// IsUndefinedTableErr returns true if err is or wraps ErrUndefinedTable.
func IsUndefinedTableErr(err error) bool {
	return errors.Is(err, ErrUndefinedTable)
}

const (
	pgUndefinedTable  = "42P01" // undefined_table
	mysqlNoSuchTable  = 1146    // ER_NO_SUCH_TABLE
	sqliteNoSuchTable = "no such table"
)

// mapError wraps driver errors, adding ErrUndefinedTable when the driver
// reports a missing relation.
func mapError(err error) error {
	if isUndefinedTable(err) {
		return fmt.Errorf("executing statement: %w: %w", ErrUndefinedTable, err)
	}
	return fmt.Errorf("executing statement: %w", err)
}

func isUndefinedTable(err error) bool {
	if sqlState(err) == pgUndefinedTable {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlNoSuchTable {
		return true
	}
	return strings.Contains(err.Error(), sqliteNoSuchTable)
}

// sqlState extracts the SQLSTATE code from a PostgreSQL error raised by
// pgx or lib/pq. Returns "" for other errors.
func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
