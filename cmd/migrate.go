package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/schedmigrate/migration"
	"github.com/ridoystarlord/schedmigrate/runner"
)

var (
	dryRunMigrate bool
	fakeMigrate   bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [app] [name]",
	Short: "Apply pending migrations",
	Long: `Apply pending migrations in dependency order, one transaction per migration.

With no arguments every pending migration is applied. With an app, that
app's latest migration and its dependencies are applied. With an app and
a name (or unique name prefix), only that migration and its dependencies.

Examples:
  schedmigrate migrate
  schedmigrate migrate api
  schedmigrate migrate api 0004
  schedmigrate migrate --dry-run
  schedmigrate migrate api 0003 --fake
`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		target, err := targetFromArgs(engine.Graph(), args)
		if err != nil {
			return err
		}
		ctx := context.Background()

		if dryRunMigrate {
			return previewMigrations(ctx, engine, target)
		}

		if err := engine.CheckConsistentHistory(ctx); err != nil {
			return err
		}

		applied, err := engine.Migrate(ctx, runner.MigrateOptions{Target: target, Fake: fakeMigrate})
		for _, key := range applied {
			if fakeMigrate {
				fmt.Printf("  Faking %s... FAKED\n", key)
			} else {
				fmt.Printf("  Applying %s... OK\n", key)
			}
		}
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		if len(applied) == 0 {
			fmt.Println("✅ No pending migrations.")
			return nil
		}
		fmt.Println("✅ All migrations applied.")
		return nil
	},
}

// previewMigrations prints the SQL of all pending migrations without applying them.
func previewMigrations(ctx context.Context, engine *runner.Engine, target *migration.Key) error {
	steps, err := engine.Plan(ctx, target)
	if err != nil {
		return err
	}

	pending := 0
	fmt.Println("\n================ DRY RUN: Migration Preview ================")
	for _, step := range steps {
		if step.Applied {
			continue
		}
		pending++
		fmt.Printf("\n-- Migration: %s --\n", step.Key)
		sqls, err := engine.SQLFor(step.Key)
		if err != nil {
			return err
		}
		for _, stmt := range sqls {
			fmt.Println(stmt)
		}
	}
	fmt.Println("============================================================")
	if pending == 0 {
		fmt.Println("✅ No pending migrations.")
		return nil
	}
	fmt.Println("(Dry run only. No migrations were applied.)")
	return nil
}

func init() {
	migrateCmd.Flags().BoolVar(&dryRunMigrate, "dry-run", false, "Preview the SQL that would be executed without applying migrations")
	migrateCmd.Flags().BoolVar(&fakeMigrate, "fake", false, "Record migrations as applied without running their SQL")
}
