package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/schedmigrate/apps/api/migrations"
	"github.com/ridoystarlord/schedmigrate/apps/api/models"
	"github.com/ridoystarlord/schedmigrate/migration"
	"github.com/ridoystarlord/schedmigrate/schema"
	"github.com/ridoystarlord/schedmigrate/validator"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check models against migrations and the ledger",
	Long: `Check that the application models match the state produced by the
migrations, and, when a database is configured, that the ledger history is
consistent with the registered migrations.

This command will:
- Compare every model field with the migrated project state
- Report model changes that have no migration yet
- Verify applied migrations have their dependencies applied
- Detect applied migrations whose content changed afterwards

Examples:
  schedmigrate check
  schedmigrate check --timeout 10s
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkProject(); err != nil {
			fmt.Printf("❌ Check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Check completed successfully")
	},
}

var checkTimeout time.Duration

func init() {
	checkCmd.Flags().DurationVarP(&checkTimeout, "timeout", "t", 10*time.Second, "Timeout for the ledger check")
}

func checkProject() error {
	all, err := loadMigrations()
	if err != nil {
		return err
	}
	graph, err := migration.NewGraph(all)
	if err != nil {
		return err
	}
	state, err := graph.State(graph.FullPlan())
	if err != nil {
		return err
	}

	declared, err := schema.LoadModels(migrations.App, models.All()...)
	if err != nil {
		return fmt.Errorf("failed to load models: %w", err)
	}
	result := validator.CheckModels(migrations.App, declared, state)
	outputText(result, "Model check")
	if !result.Valid {
		return fmt.Errorf("models have changes that are not reflected in a migration")
	}

	if _, err := databaseURL(); err != nil {
		fmt.Println("⚠️  No database configured, skipping the ledger check")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	engine, err := openEngine()
	if err != nil {
		return err
	}
	if err := engine.CheckConsistentHistory(ctx); err != nil {
		return err
	}
	report, err := engine.Status(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("📊 Found %d applied migrations, %d pending\n", len(report.Applied), len(report.Pending))
	return nil
}
