package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the migration ledger tables",
	Long: `Create the schema_migrations ledger and the migration_logs audit table
in the target database. Running it again is harmless.

Examples:
  schedmigrate init
  schedmigrate init --database-url sqlite://./dev.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		fmt.Println("🔧 Ensuring migration tables exist...")
		if err := engine.EnsureLedger(context.Background()); err != nil {
			return err
		}
		fmt.Println("✅ schema_migrations table ensured")
		fmt.Println("✅ migration_logs table ensured")
		return nil
	},
}
