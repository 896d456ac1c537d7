package runner

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pthm/sqltemplate/pkg/query"
	"github.com/pthm/sqltemplate/pkg/template"
)

const usersDDL = `CREATE TABLE users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL,
	password TEXT NOT NULL,
	org INTEGER,
	active BOOLEAN NOT NULL DEFAULT 1
)`

type user struct {
	ID       int64  `db:"id,auto"`
	Email    string `db:"email"`
	Password string `db:"password"`
	Org      int64  `db:"org"`
}

func (user) TableName() string { return "users" }

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(usersDDL)
	require.NoError(t, err)
	for _, stmt := range []string{
		"INSERT INTO users (email, password, org) VALUES ('user1@org_1', 'password', 1)",
		"INSERT INTO users (email, password, org) VALUES ('user2@org_1', 'password', 1)",
		"INSERT INTO users (email, password, org) VALUES ('user3@org_2', 'password', 2)",
	} {
		_, err = db.Exec(stmt)
		require.NoError(t, err)
	}
	return db
}

func collectIDs(t *testing.T, rows *sql.Rows) []int64 {
	t.Helper()
	defer func() { _ = rows.Close() }()
	var ids []int64
	for rows.Next() {
		var id int64
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	return ids
}

func TestRunner_SQLite(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name     string
		compiler *query.Compiler
	}{
		{"inline literals", query.NewCompiler()},
		{"bound arguments", query.NewCompiler(query.WithPlaceholders(query.Question))},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := New(openSQLite(t), WithCompiler(tc.compiler))

			rows, err := r.Query(ctx, query.SelectFrom("users", "id").Where(
				query.AllOf(query.AnyOf("org", "1", "2"), query.Contains("email", "org_1"))...,
			))
			require.NoError(t, err)
			assert.Equal(t, []int64{1, 2}, collectIDs(t, rows))

			sub := query.SelectFrom("users").Where(query.Eq("org", "1"))
			rows, err = r.Query(ctx, query.SelectFromQuery(sub, "id").Where(query.Ne("email", "user1@org_1")))
			require.NoError(t, err)
			assert.Equal(t, []int64{2}, collectIDs(t, rows))

			res, err := r.Exec(ctx, query.UpdateTable("users", map[string]string{"password": "changed"}))
			require.NoError(t, err)
			n, err := res.RowsAffected()
			require.NoError(t, err)
			assert.EqualValues(t, 3, n)

			res, err = r.Exec(ctx, query.DeleteFrom("users", query.NoneOf("id", "1", "2")))
			require.NoError(t, err)
			n, err = res.RowsAffected()
			require.NoError(t, err)
			assert.EqualValues(t, 1, n)
		})
	}
}

func TestRunner_Template(t *testing.T) {
	ctx := context.Background()
	r := New(openSQLite(t), WithCompiler(query.NewCompiler(query.WithPlaceholders(query.Question))))

	users, err := template.For[user](template.WithCompiler(query.NewCompiler(query.WithPlaceholders(query.Question))))
	require.NoError(t, err)

	stmt, err := users.Update(user{ID: 2, Password: "secret"}, []string{"id"}, "password")
	require.NoError(t, err)
	res, err := r.ExecStatement(ctx, stmt)
	require.NoError(t, err)
	n, err := res.RowsAffected()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	sel, err := users.Select(user{Password: "secret"}, "password")
	require.NoError(t, err)
	rows, err := r.Query(ctx, sel)
	require.NoError(t, err)
	defer func() { _ = rows.Close() }()

	var got []user
	for rows.Next() {
		var (
			u      user
			active bool
		)
		require.NoError(t, rows.Scan(&u.ID, &u.Email, &u.Password, &u.Org, &active))
		got = append(got, u)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []user{{ID: 2, Email: "user2@org_1", Password: "secret", Org: 1}}, got)
	require.NoError(t, rows.Close())

	del, err := users.Delete(user{ID: 2}, "id")
	require.NoError(t, err)
	_, err = r.Exec(ctx, del)
	require.NoError(t, err)

	unrestricted, err := users.Delete(user{})
	require.NoError(t, err)
	_, err = r.Exec(ctx, unrestricted)
	require.ErrorIs(t, err, query.ErrMissingDeleteCondition)
}

func TestRunner_ConstructionErrorsSkipDatabase(t *testing.T) {
	r := New(nil)

	_, err := r.Exec(context.Background(), query.QueryComponent{Action: query.Update, TableName: "users"})
	require.ErrorIs(t, err, query.ErrMissingUpdateParams)

	_, err = r.Query(context.Background(), query.SelectFromQuery(query.QueryComponent{Action: query.Delete, TableName: "users"}))
	require.ErrorIs(t, err, query.ErrMissingDeleteCondition)
	assert.True(t, query.IsNestedErr(err))
}

func TestRunner_UndefinedTable(t *testing.T) {
	r := New(openSQLite(t))

	_, err := r.Query(context.Background(), query.SelectFrom("missing"))
	require.Error(t, err)
	assert.True(t, IsUndefinedTableErr(err))
	assert.Contains(t, err.Error(), "executing statement")
}

func TestRunner_Logging(t *testing.T) {
	ctx := context.Background()

	t.Run("slow statements", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		r := New(openSQLite(t), WithLogger(zap.New(core)), WithSlowThreshold(time.Nanosecond))

		rows, err := r.Query(ctx, query.SelectFrom("users", "id"))
		require.NoError(t, err)
		_ = rows.Close()

		entries := logs.FilterMessage("slow statement").All()
		require.Len(t, entries, 1)
		assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
		assert.Equal(t, "SELECT ( id ) FROM users", entries[0].ContextMap()["sql"])
	})

	t.Run("fast statements at debug", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		r := New(openSQLite(t), WithLogger(zap.New(core)), WithSlowThreshold(0))

		_, err := r.Exec(ctx, query.DeleteFrom("users", query.Eq("id", "1")))
		require.NoError(t, err)

		assert.Equal(t, 1, logs.FilterMessage("statement executed").Len())
		assert.Equal(t, 0, logs.FilterMessage("slow statement").Len())
	})

	t.Run("failures", func(t *testing.T) {
		core, logs := observer.New(zapcore.DebugLevel)
		r := New(openSQLite(t), WithLogger(zap.New(core)))

		_, err := r.Exec(ctx, query.DeleteFrom("missing", query.Eq("id", "1")))
		require.Error(t, err)
		assert.Equal(t, 1, logs.FilterMessage("statement failed").Len())
	})
}

func TestMapError(t *testing.T) {
	plain := errors.New("connection reset")
	err := mapError(plain)
	assert.ErrorIs(t, err, plain)
	assert.False(t, IsUndefinedTableErr(err))

	for _, tc := range []struct {
		name string
		err  error
	}{
		{"lib/pq", &pq.Error{Code: "42P01", Message: `relation "missing" does not exist`}},
		{"pgx", &pgconn.PgError{Code: "42P01", Message: `relation "missing" does not exist`}},
		{"mysql", &mysql.MySQLError{Number: 1146, Message: "Table 'app.missing' doesn't exist"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := mapError(tc.err)
			assert.True(t, IsUndefinedTableErr(err))
			assert.ErrorIs(t, err, tc.err)
		})
	}
}
