package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/schedmigrate/runner"
)

var logLimit int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show recent migration activities",
	Long: `Show recent migration activities, including failed attempts.

Examples:
  schedmigrate log                    # Show recent migration logs
  schedmigrate log --limit 20         # Show last 20 log entries
`,
	Run: func(cmd *cobra.Command, args []string) {
		engine, err := openEngine()
		if err != nil {
			fmt.Printf("❌ Error connecting to database: %v\n", err)
			os.Exit(1)
		}

		logs, err := engine.Logs(context.Background(), logLimit)
		if err != nil {
			fmt.Printf("❌ Error getting migration logs: %v\n", err)
			os.Exit(1)
		}

		if len(logs) == 0 {
			fmt.Println("📋 No migration logs found")
			return
		}

		showMigrationLogs(logs)
	},
}

func showMigrationLogs(logs []runner.MigrationLog) {
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	red := color.New(color.FgRed, color.Bold)
	blue := color.New(color.FgBlue, color.Bold)
	cyan := color.New(color.FgCyan)

	fmt.Println("📋 Recent Migration Activities")
	fmt.Println(strings.Repeat("=", 60))

	for i, log := range logs {
		fmt.Printf("\n%d. ", i+1)

		switch log.Level {
		case "INFO":
			blue.Print("ℹ️  ")
		case "WARN":
			yellow.Print("⚠️  ")
		case "ERROR":
			red.Print("❌ ")
		case "SUCCESS":
			green.Print("✅ ")
		default:
			fmt.Print("📝 ")
		}

		cyan.Printf("[%s] ", log.Timestamp.Format("2006-01-02 15:04:05"))
		fmt.Printf("%s", log.Message)
		if log.User != "" {
			fmt.Printf(" (by %s)", log.User)
		}
		fmt.Println()

		if log.Details != "" {
			cyan.Printf("   📄 Details: %s\n", log.Details)
		}
		if len(log.RunID) >= 8 {
			cyan.Printf("   🔗 Run: %s\n", log.RunID[:8])
		}
	}

	fmt.Println(strings.Repeat("-", 60))
	fmt.Printf("📊 Showing %d recent log entries\n", len(logs))
}

func init() {
	logCmd.Flags().IntVarP(&logLimit, "limit", "l", 50, "Limit number of log entries to show")
}
