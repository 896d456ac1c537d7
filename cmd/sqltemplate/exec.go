package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pthm/sqltemplate/internal/cli"
	"github.com/pthm/sqltemplate/pkg/query"
	"github.com/pthm/sqltemplate/pkg/runner"
)

var (
	execFile         string
	execDB           string
	execPlaceholders string
)

var execCmd = &cobra.Command{
	Use:   "exec",
	Short: "Compile a query tree and run it",
	Long: `Compile a query tree and run it against the configured database.

SELECT statements print their rows tab separated with a header line. UPDATE
and DELETE statements print the number of affected rows.`,
	Example: `  # Run against the configured database
  sqltemplate exec -f tree.yaml

  # Override the connection
  sqltemplate exec -f tree.yaml --db postgres://localhost/mydb`,
	RunE: func(cmd *cobra.Command, args []string) error {
		compiler, err := resolveCompiler(execPlaceholderStyle(execPlaceholders, cfg.Compile.Placeholders), false)
		if err != nil {
			return err
		}

		stmt, err := compileTree(execFile, compiler)
		if err != nil {
			return err
		}

		c := *cfg
		if execDB != "" {
			c.Database.URL = execDB
		}

		ctx := cmd.Context()
		if cfg.Exec.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Exec.Timeout)
			defer cancel()
		}

		db, err := cli.OpenDB(ctx, &c)
		if err != nil {
			return cli.DBConnectError("connecting to database", err)
		}
		defer func() { _ = db.Close() }()

		r := runner.New(db,
			runner.WithCompiler(compiler),
			runner.WithLogger(logger.With(zap.String("driver", c.Database.Driver))),
			runner.WithSlowThreshold(cfg.Exec.SlowThreshold),
		)
		return runStatement(ctx, cmd.OutOrStdout(), r, stmt)
	},
}

func init() {
	f := execCmd.Flags()
	f.StringVarP(&execFile, "file", "f", "", "query tree file (- for stdin)")
	f.StringVar(&execDB, "db", "", "database URL (overrides config)")
	f.StringVar(&execPlaceholders, "placeholders", "", "placeholder style: none, dollar, question or auto")
	_ = execCmd.MarkFlagRequired("file")
}

// execPlaceholderStyle resolves the placeholder style for exec. Inline
// literals are for compile only, so none becomes auto.
func execPlaceholderStyle(flag, configured string) string {
	placeholders := resolveString(flag, configured)
	if style, err := query.ParsePlaceholderStyle(placeholders); err == nil && style == query.PlaceholderNone {
		return "auto"
	}
	return placeholders
}

func runStatement(ctx context.Context, w io.Writer, r *runner.Runner, stmt query.Statement) error {
	if !strings.HasPrefix(stmt.SQL, query.Select.String()) {
		res, err := r.ExecStatement(ctx, stmt)
		if err != nil {
			return cli.GeneralError("executing statement", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return cli.GeneralError("reading result", err)
		}
		if !quiet {
			_, _ = color.New(color.FgGreen).Fprintf(w, "%d row(s) affected\n", n)
		}
		return nil
	}

	rows, err := r.QueryStatement(ctx, stmt)
	if err != nil {
		return cli.GeneralError("executing statement", err)
	}
	defer func() { _ = rows.Close() }()

	if err := printRows(w, rows); err != nil {
		return cli.GeneralError("reading rows", err)
	}
	return nil
}

func printRows(w io.Writer, rows *sql.Rows) error {
	cols, err := rows.Columns()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, strings.Join(cols, "\t"))

	values := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		fields := make([]string, len(values))
		for i, v := range values {
			if v.Valid {
				fields[i] = v.String
			} else {
				fields[i] = "NULL"
			}
		}
		fmt.Fprintln(w, strings.Join(fields, "\t"))
	}
	return rows.Err()
}
