package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/schedmigrate/runner"
)

var sqlmigrateDialect string

var sqlmigrateCmd = &cobra.Command{
	Use:   "sqlmigrate <app> <name>",
	Short: "Print the SQL statements of one migration",
	Long: `Print the SQL a migration would execute. With --dialect no database
connection is needed.

Examples:
  schedmigrate sqlmigrate api 0004
  schedmigrate sqlmigrate api 0004 --dialect sqlite
`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			engine *runner.Engine
			err    error
		)
		if sqlmigrateDialect != "" {
			engine, err = offlineEngine(sqlmigrateDialect)
		} else {
			engine, err = openEngine()
		}
		if err != nil {
			return err
		}

		key, err := resolveKey(engine.Graph(), args[0], args[1])
		if err != nil {
			return err
		}
		stmts, err := engine.SQLFor(key)
		if err != nil {
			return err
		}
		for _, stmt := range stmts {
			fmt.Println(stmt)
		}
		return nil
	},
}

func init() {
	sqlmigrateCmd.Flags().StringVar(&sqlmigrateDialect, "dialect", "", "Render for this dialect (postgres, sqlite) without connecting")
}
