// Package runner executes compiled statements through database/sql handles.
//
// A Runner compiles a query.QueryComponent, hands the SQL to the database and
// logs the statement. Statements that take longer than the slow threshold are
// logged at warn level.
//
//	db, _ := sql.Open("pgx", dsn)
//	r := runner.New(db, runner.WithLogger(logger), runner.WithSlowThreshold(time.Second))
//	res, err := r.Exec(ctx, query.DeleteFrom("users", query.Eq("id", "5")))
//
// The Querier interface is satisfied by *sql.DB, *sql.Tx and *sql.Conn, so a
// Runner can be created per transaction.
package runner

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/pthm/sqltemplate/pkg/query"
)

// Querier is the subset of database/sql used by Runner.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DefaultSlowThreshold is used when WithSlowThreshold is not given.
const DefaultSlowThreshold = time.Second

// Runner compiles and executes statements. It holds no state beyond its
// handle and configuration and is safe for concurrent use when the handle is.
type Runner struct {
	q        Querier
	compiler *query.Compiler
	logger   *zap.Logger
	slow     time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = l
	}
}

// WithSlowThreshold sets the duration above which a statement is logged as
// slow. Zero disables slow statement logging.
func WithSlowThreshold(d time.Duration) Option {
	return func(r *Runner) {
		r.slow = d
	}
}

// WithCompiler sets the compiler. A compiler configured with placeholders
// makes the Runner pass values as driver arguments.
func WithCompiler(c *query.Compiler) Option {
	return func(r *Runner) {
		r.compiler = c
	}
}

// New returns a Runner over q.
func New(q Querier, opts ...Option) *Runner {
	r := &Runner{
		q:        q,
		compiler: query.NewCompiler(),
		logger:   zap.NewNop(),
		slow:     DefaultSlowThreshold,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Compile renders qc with the Runner's compiler without executing it.
func (r *Runner) Compile(qc query.QueryComponent) (query.Statement, error) {
	return r.compiler.Statement(qc)
}

// Exec compiles and executes a statement that returns no rows.
// Construction errors are returned unchanged.
func (r *Runner) Exec(ctx context.Context, qc query.QueryComponent) (sql.Result, error) {
	stmt, err := r.Compile(qc)
	if err != nil {
		return nil, err
	}
	return r.ExecStatement(ctx, stmt)
}

// Query compiles and executes a statement that returns rows.
// The caller must close the returned rows.
func (r *Runner) Query(ctx context.Context, qc query.QueryComponent) (*sql.Rows, error) {
	stmt, err := r.Compile(qc)
	if err != nil {
		return nil, err
	}
	return r.QueryStatement(ctx, stmt)
}

// ExecStatement executes a statement assembled elsewhere, such as a filtered
// update built by package template.
func (r *Runner) ExecStatement(ctx context.Context, stmt query.Statement) (sql.Result, error) {
	start := time.Now()
	res, err := r.q.ExecContext(ctx, stmt.SQL, stmt.Args...)
	r.observe(stmt, time.Since(start), err)
	if err != nil {
		return nil, mapError(err)
	}
	return res, nil
}

// QueryStatement executes a pre-assembled statement that returns rows.
func (r *Runner) QueryStatement(ctx context.Context, stmt query.Statement) (*sql.Rows, error) {
	start := time.Now()
	rows, err := r.q.QueryContext(ctx, stmt.SQL, stmt.Args...)
	r.observe(stmt, time.Since(start), err)
	if err != nil {
		return nil, mapError(err)
	}
	return rows, nil
}

func (r *Runner) observe(stmt query.Statement, elapsed time.Duration, err error) {
	fields := []zap.Field{
		zap.String("sql", stmt.SQL),
		zap.Int("args", len(stmt.Args)),
		zap.Duration("elapsed", elapsed),
	}
	if err != nil {
		r.logger.Error("statement failed", append(fields, zap.Error(err))...)
		return
	}
	if r.slow > 0 && elapsed > r.slow {
		r.logger.Warn("slow statement", append(fields, zap.Duration("threshold", r.slow))...)
		return
	}
	r.logger.Debug("statement executed", fields...)
}
