package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pthm/sqltemplate/internal/cli"
	"github.com/pthm/sqltemplate/internal/doctor"
)

var (
	doctorDB string
)

var doctorCmd = &cobra.Command{
	Use:   "doctor [tree files...]",
	Short: "Run health checks",
	Long: `Check configuration, database connectivity and query tree files.

Every tree given as an argument is compiled with the configured compiler and,
when the database is reachable, its source table is probed.`,
	Example: `  # Check configuration and connectivity
  sqltemplate doctor

  # Also verify tree files, with compiled SQL in the output
  sqltemplate doctor -v queries/*.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := *cfg
		if doctorDB != "" {
			c.Database.URL = doctorDB
		}

		out := cmd.OutOrStdout()
		if !quiet {
			fmt.Fprintln(out, "sqltemplate doctor - Health Check")
		}

		d := doctor.New(&c, configPath, args, doctor.WithLogger(logger))
		report, err := d.Run(cmd.Context())
		if err != nil {
			return cli.GeneralError("running doctor", err)
		}

		report.Print(out, verbose > 0)

		if report.HasErrors() {
			return cli.GeneralError("health checks failed", nil)
		}
		return nil
	},
}

func init() {
	doctorCmd.Flags().StringVar(&doctorDB, "db", "", "database URL (overrides config)")
}
