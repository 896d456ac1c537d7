// Package doctor provides health checks for a sqltemplate setup.
//
// The doctor command validates that configuration, database connectivity and
// query tree files are consistent with each other: the configured driver is
// supported, the placeholder style matches it, the database is reachable, and
// every tree compiles and references tables that exist.
//
// Example usage:
//
//	d := doctor.New(cfg, configPath, []string{"queries/active_users.yaml"})
//	report, err := d.Run(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	report.Print(os.Stdout, true) // verbose=true
package doctor

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/pthm/sqltemplate/internal/cli"
	"github.com/pthm/sqltemplate/pkg/query"
	"github.com/pthm/sqltemplate/pkg/runner"
)

// Status represents the result of a health check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical issue that will cause failures.
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// Symbol returns a status indicator symbol for terminal output.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return color.GreenString("✓")
	case StatusWarn:
		return color.YellowString("⚠")
	case StatusFail:
		return color.RedString("✗")
	default:
		return "?"
	}
}

// Check categories, in report order.
const (
	categoryConfig   = "Configuration"
	categoryDatabase = "Database"
	categoryTrees    = "Query Trees"
)

// CheckResult represents the outcome of a single health check.
type CheckResult struct {
	// Category groups related checks (e.g., "Configuration", "Database").
	Category string

	// Name is a short identifier for the check.
	Name string

	Status  Status
	Message string

	// Details provides additional information for verbose output.
	Details string

	// FixHint suggests how to resolve issues.
	FixHint string
}

// Report contains all health check results.
type Report struct {
	Checks []CheckResult

	// Summary counts.
	Passed   int
	Warnings int
	Errors   int
}

// AddCheck adds a check result and updates summary counts.
func (r *Report) AddCheck(check CheckResult) {
	r.Checks = append(r.Checks, check)
	switch check.Status {
	case StatusPass:
		r.Passed++
	case StatusWarn:
		r.Warnings++
	case StatusFail:
		r.Errors++
	}
}

// Find returns the first check with the given name.
func (r *Report) Find(name string) (CheckResult, bool) {
	for _, check := range r.Checks {
		if check.Name == name {
			return check, true
		}
	}
	return CheckResult{}, false
}

// Print writes the report to the given writer.
func (r *Report) Print(w io.Writer, verbose bool) {
	var (
		current string
		started bool
	)
	for _, check := range r.Checks {
		if !started || check.Category != current {
			_, _ = fmt.Fprintf(w, "\n%s\n", check.Category)
			current, started = check.Category, true
		}
		_, _ = fmt.Fprintf(w, "  %s %s\n", check.Status.Symbol(), check.Message)
		if verbose && check.Details != "" {
			for _, line := range strings.Split(check.Details, "\n") {
				_, _ = fmt.Fprintf(w, "      %s\n", line)
			}
		}
		if check.Status != StatusPass && check.FixHint != "" {
			_, _ = fmt.Fprintf(w, "      Fix: %s\n", check.FixHint)
		}
	}

	_, _ = fmt.Fprintf(w, "\nSummary: %d passed, %d warnings, %d errors\n",
		r.Passed, r.Warnings, r.Errors)
}

// HasErrors returns true if any check failed.
func (r *Report) HasErrors() bool {
	return r.Errors > 0
}

// Doctor performs health checks on configuration, database and tree files.
type Doctor struct {
	cfg        *cli.Config
	configPath string
	trees      []string
	logger     *zap.Logger

	// Populated during Run
	compiler *query.Compiler
	db       *sql.DB
}

// Option configures a Doctor.
type Option func(*Doctor)

// WithLogger sets the logger handed to the statement runner.
func WithLogger(l *zap.Logger) Option {
	return func(d *Doctor) {
		d.logger = l
	}
}

// New creates a new Doctor instance. Trees are query tree files to verify.
func New(cfg *cli.Config, configPath string, trees []string, opts ...Option) *Doctor {
	d := &Doctor{
		cfg:        cfg,
		configPath: configPath,
		trees:      trees,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run executes all health checks and returns a report.
func (d *Doctor) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	d.checkConfig(report)
	d.checkDatabase(ctx, report)
	if d.db != nil {
		defer func() { _ = d.db.Close() }()
	}
	d.checkTrees(ctx, report)
	return report, nil
}

func (d *Doctor) checkConfig(report *Report) {
	if d.configPath != "" {
		report.AddCheck(CheckResult{
			Category: categoryConfig,
			Name:     "file",
			Status:   StatusPass,
			Message:  fmt.Sprintf("Config file found at %s", d.configPath),
		})
	} else {
		report.AddCheck(CheckResult{
			Category: categoryConfig,
			Name:     "file",
			Status:   StatusWarn,
			Message:  "No config file found, using defaults and environment",
			FixHint:  "Create sqltemplate.yaml in your project root",
		})
	}

	driver := d.cfg.Database.Driver
	driverStyle, err := cli.PlaceholderStyle(driver)
	if err != nil {
		report.AddCheck(CheckResult{
			Category: categoryConfig,
			Name:     "driver",
			Status:   StatusFail,
			Message:  fmt.Sprintf("Driver %q is not supported", driver),
			FixHint:  "Set database.driver to postgres, pgx, mysql or sqlite3",
		})
		return
	}
	report.AddCheck(CheckResult{
		Category: categoryConfig,
		Name:     "driver",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Driver %s is supported", driver),
	})

	d.checkPlaceholders(report, driverStyle)
}

func (d *Doctor) checkPlaceholders(report *Report, driverStyle query.PlaceholderStyle) {
	compiler, err := d.cfg.Compiler()
	if err != nil {
		report.AddCheck(CheckResult{
			Category: categoryConfig,
			Name:     "placeholders",
			Status:   StatusFail,
			Message:  "Placeholder style is invalid",
			Details:  err.Error(),
			FixHint:  "Set compile.placeholders to none, dollar, question or auto",
		})
		return
	}
	d.compiler = compiler

	configured := d.cfg.Compile.Placeholders
	style, perr := query.ParsePlaceholderStyle(configured)
	switch {
	case strings.EqualFold(configured, "auto"):
		report.AddCheck(CheckResult{
			Category: categoryConfig,
			Name:     "placeholders",
			Status:   StatusPass,
			Message:  fmt.Sprintf("Placeholders follow the driver (%s)", driverStyle),
		})
	case perr == nil && style == query.PlaceholderNone:
		check := CheckResult{
			Category: categoryConfig,
			Name:     "placeholders",
			Status:   StatusWarn,
			Message:  "Literals are inlined into statements without bound arguments",
			FixHint:  "Set compile.placeholders to auto",
		}
		if d.cfg.Compile.Escape {
			check.Message = "Literals are inlined with quote escaping"
		}
		report.AddCheck(check)
	case style != driverStyle:
		report.AddCheck(CheckResult{
			Category: categoryConfig,
			Name:     "placeholders",
			Status:   StatusFail,
			Message:  fmt.Sprintf("Placeholder style %s does not match driver %s", style, d.cfg.Database.Driver),
			FixHint:  fmt.Sprintf("Set compile.placeholders to %s or auto", driverStyle),
		})
	default:
		report.AddCheck(CheckResult{
			Category: categoryConfig,
			Name:     "placeholders",
			Status:   StatusPass,
			Message:  fmt.Sprintf("Placeholder style %s matches the driver", style),
		})
	}
}

func (d *Doctor) checkDatabase(ctx context.Context, report *Report) {
	if _, err := cli.PlaceholderStyle(d.cfg.Database.Driver); err != nil {
		return
	}

	if _, err := d.cfg.DSN(); err != nil {
		report.AddCheck(CheckResult{
			Category: categoryDatabase,
			Name:     "dsn",
			Status:   StatusFail,
			Message:  "Connection settings are incomplete",
			Details:  err.Error(),
			FixHint:  "Set database.url or the discrete database fields",
		})
		return
	}

	db, err := cli.OpenDB(ctx, d.cfg)
	if err != nil {
		report.AddCheck(CheckResult{
			Category: categoryDatabase,
			Name:     "connect",
			Status:   StatusFail,
			Message:  "Cannot connect to database",
			Details:  err.Error(),
			FixHint:  "Check that the database is running and the credentials are correct",
		})
		return
	}
	d.db = db

	report.AddCheck(CheckResult{
		Category: categoryDatabase,
		Name:     "connect",
		Status:   StatusPass,
		Message:  fmt.Sprintf("Connected using %s", d.cfg.Database.Driver),
	})
}

func (d *Doctor) checkTrees(ctx context.Context, report *Report) {
	if len(d.trees) == 0 {
		return
	}

	compiler := d.compiler
	if compiler == nil {
		compiler = query.NewCompiler()
	}

	var r *runner.Runner
	if d.db != nil {
		r = runner.New(d.db, runner.WithCompiler(compiler), runner.WithLogger(d.logger))
	}

	for _, path := range d.trees {
		qc, err := cli.LoadTree(path)
		if err != nil {
			report.AddCheck(CheckResult{
				Category: categoryTrees,
				Name:     path,
				Status:   StatusFail,
				Message:  fmt.Sprintf("%s cannot be read", path),
				Details:  err.Error(),
			})
			continue
		}

		stmt, err := compiler.Statement(qc)
		if err != nil {
			report.AddCheck(CheckResult{
				Category: categoryTrees,
				Name:     path,
				Status:   StatusFail,
				Message:  fmt.Sprintf("%s does not compile", path),
				Details:  err.Error(),
				FixHint:  compileHint(err),
			})
			continue
		}

		check := CheckResult{
			Category: categoryTrees,
			Name:     path,
			Status:   StatusPass,
			Message:  fmt.Sprintf("%s compiles", path),
			Details:  stmt.SQL,
		}
		if r == nil {
			report.AddCheck(check)
			continue
		}

		table := sourceTable(qc)
		if err := probeTable(ctx, r, table); err != nil {
			check.Status = StatusFail
			check.Details = err.Error()
			if runner.IsUndefinedTableErr(err) {
				check.Message = fmt.Sprintf("%s references missing table %s", path, table)
			} else {
				check.Message = fmt.Sprintf("%s: table %s cannot be queried", path, table)
			}
		}
		report.AddCheck(check)
	}
}

// sourceTable returns the table at the bottom of the OperatedIn chain.
func sourceTable(qc query.QueryComponent) string {
	cur := &qc
	for cur.Action == query.Select && cur.OperatedIn != nil {
		cur = cur.OperatedIn
	}
	return cur.TableName
}

// probeTable checks that table can be read. The filter matches no rows, so
// the database only has to resolve the relation.
func probeTable(ctx context.Context, r *runner.Runner, table string) error {
	stmt, err := r.Compile(query.SelectFrom(table))
	if err != nil {
		return err
	}
	stmt.SQL += " WHERE 1 = 0"
	rows, err := r.QueryStatement(ctx, stmt)
	if err != nil {
		return err
	}
	return rows.Close()
}

func compileHint(err error) string {
	switch {
	case query.IsMissingUpdateParamsErr(err):
		return "Add params to the update"
	case query.IsMissingDeleteConditionErr(err):
		return "Add where_conditions to the delete"
	case query.IsEmptyValueListErr(err):
		return "Give every condition at least one value"
	default:
		return ""
	}
}
