package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pthm/sqltemplate/internal/cli"
	"github.com/pthm/sqltemplate/pkg/query"
)

var (
	compileFile         string
	compilePlaceholders string
	compileEscape       bool
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Render a query tree to SQL",
	Long: `Render a YAML or JSON query tree to SQL text.

In placeholder mode the bound arguments are printed after the statement, one
per line, in placeholder order.`,
	Example: `  # Inline literals
  sqltemplate compile -f tree.yaml

  # PostgreSQL placeholders
  sqltemplate compile -f tree.yaml --placeholders dollar

  # Read the tree from stdin
  cat tree.json | sqltemplate compile -f -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		compiler, err := resolveCompiler(compilePlaceholders, compileEscape)
		if err != nil {
			return err
		}

		stmt, err := compileTree(compileFile, compiler)
		if err != nil {
			return err
		}
		printStatement(cmd.OutOrStdout(), stmt)
		return nil
	},
}

func init() {
	f := compileCmd.Flags()
	f.StringVarP(&compileFile, "file", "f", "", "query tree file (- for stdin)")
	f.StringVar(&compilePlaceholders, "placeholders", "", "placeholder style: none, dollar, question or auto")
	f.BoolVar(&compileEscape, "escape", false, "double single quotes inside inlined literals")
	_ = compileCmd.MarkFlagRequired("file")
}

// resolveCompiler applies flag overrides to the compile section of the config.
func resolveCompiler(placeholders string, escape bool) (*query.Compiler, error) {
	c := *cfg
	c.Compile.Placeholders = resolveString(placeholders, cfg.Compile.Placeholders)
	c.Compile.Escape = resolveBool(escape, cfg.Compile.Escape)

	compiler, err := c.Compiler()
	if err != nil {
		return nil, cli.ConfigError("compile configuration", err)
	}
	return compiler, nil
}

func compileTree(path string, compiler *query.Compiler) (query.Statement, error) {
	qc, err := cli.LoadTree(path)
	if err != nil {
		return query.Statement{}, cli.TreeError("loading tree", err)
	}

	stmt, err := compiler.Statement(qc)
	if err != nil {
		return query.Statement{}, cli.TreeError("compiling tree", err)
	}
	logger.Debug("compiled tree",
		zap.String("file", path),
		zap.String("sql", stmt.SQL),
		zap.Int("args", len(stmt.Args)),
	)
	return stmt, nil
}

func printStatement(w io.Writer, stmt query.Statement) {
	fmt.Fprintln(w, stmt.SQL)
	for i, arg := range stmt.Args {
		fmt.Fprintf(w, "-- arg %d: %v\n", i+1, arg)
	}
}
