package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ridoystarlord/schedmigrate/utils"
)

var rootCmd = &cobra.Command{
	Use:   "schedmigrate",
	Short: "Apply the schema history of the scheduling backend",
	Long: `schedmigrate applies registered schema change descriptors in dependency
order and records each one in the schema_migrations ledger.

Examples:

  schedmigrate init
  schedmigrate status
  schedmigrate migrate
  schedmigrate migrate api 0004
  schedmigrate sqlmigrate api 0004 --dialect postgres
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger(viper.GetString("log_level"))
	},
}

// Execute runs the CLI
func Execute() {
	utils.LoadEnv()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

func setupLogger(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// Register subcommands
func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("database-url", "", "Database URL (postgres://... or sqlite://...), defaults to $DATABASE_URL")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("migrations-dir", "migrations", "Directory with additional YAML descriptors")

	viper.BindPFlag("database_url", flags.Lookup("database-url"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("migrations_dir", flags.Lookup("migrations-dir"))
	viper.BindEnv("database_url", "SCHEDMIGRATE_DATABASE_URL", "DATABASE_URL")
	viper.BindEnv("log_level", "SCHEDMIGRATE_LOG_LEVEL")
	viper.BindEnv("migrations_dir", "SCHEDMIGRATE_MIGRATIONS_DIR")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(sqlmigrateCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(healthCmd)
}
