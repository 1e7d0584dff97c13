package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/schedmigrate/database"
	"github.com/ridoystarlord/schedmigrate/introspect"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check database connectivity",
	Long: `Check if the database is accessible and responsive.

Examples:
  schedmigrate health                    # Check default database connection
  schedmigrate health --timeout 10s      # Set custom timeout
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkDatabaseHealth(); err != nil {
			fmt.Printf("❌ Database health check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("✅ Database is healthy and accessible")
	},
}

var healthTimeout time.Duration

func init() {
	healthCmd.Flags().DurationVarP(&healthTimeout, "timeout", "t", 5*time.Second, "Timeout for health check")
}

func checkDatabaseHealth() error {
	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	url, err := databaseURL()
	if err != nil {
		return err
	}
	db, err := database.Get(url)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	fmt.Printf("🔌 Connected (%s)\n", db.Dialect.Name())

	exists, err := introspect.NewInspector(db, db.Dialect.Name()).TableExists(ctx, "schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to check schema_migrations table: %w", err)
	}
	if !exists {
		fmt.Println("⚠️  Database is accessible but schema_migrations table not found")
		fmt.Println("   Run 'schedmigrate init' to set up the migration tracking table")
		return nil
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		return fmt.Errorf("failed to count migrations: %w", err)
	}
	fmt.Printf("📊 Found %d applied migrations\n", count)
	return nil
}
