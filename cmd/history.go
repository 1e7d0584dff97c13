package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/schedmigrate/runner"
)

var (
	historyLimit    int
	historyApp      string
	historyDetailed bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show detailed migration history",
	Long: `Show the applied-migrations ledger with timestamps, execution times, and user information.

Examples:
  schedmigrate history                    # Show all migration history
  schedmigrate history --limit 10         # Show last 10 migrations
  schedmigrate history --app api          # Show migrations of one app
  schedmigrate history --detailed         # Show detailed information
`,
	Run: func(cmd *cobra.Command, args []string) {
		engine, err := openEngine()
		if err != nil {
			fmt.Printf("❌ Error connecting to database: %v\n", err)
			os.Exit(1)
		}

		history, err := engine.History(context.Background(), historyLimit, historyApp)
		if err != nil {
			fmt.Printf("❌ Error getting migration history: %v\n", err)
			os.Exit(1)
		}

		if len(history) == 0 {
			fmt.Println("📋 No migration history found")
			return
		}

		fmt.Println("📋 Migration History")
		fmt.Println(strings.Repeat("=", 60))
		if historyDetailed {
			showDetailedHistory(history)
		} else {
			showSummaryHistory(history)
		}
	},
}

func showDetailedHistory(history []runner.MigrationRecord) {
	green := color.New(color.FgGreen, color.Bold)
	blue := color.New(color.FgBlue, color.Bold)
	cyan := color.New(color.FgCyan)

	for i, record := range history {
		fmt.Printf("\n%d. ", i+1)
		green.Print("✅ ")
		blue.Printf("%s\n", record.Key())

		cyan.Printf("   📅 Applied: %s\n", record.AppliedAt.Format("2006-01-02 15:04:05"))
		if record.ExecutionTime > 0 {
			cyan.Printf("   ⏱️  Duration: %v\n", record.ExecutionTime)
		}
		if record.ExecutedBy != "" {
			cyan.Printf("   👤 User: %s\n", record.ExecutedBy)
		}
		if len(record.Checksum) > 8 {
			cyan.Printf("   🔍 Checksum: %s\n", record.Checksum[:8]+"...")
		}
	}
}

func showSummaryHistory(history []runner.MigrationRecord) {
	blue := color.New(color.FgBlue, color.Bold)

	fmt.Printf("%-4s %-45s %-12s %-10s %s\n", "ID", "Migration", "Duration", "User", "Date")
	fmt.Println(strings.Repeat("-", 90))

	totalDuration := time.Duration(0)
	for _, record := range history {
		duration := "N/A"
		if record.ExecutionTime > 0 {
			duration = record.ExecutionTime.String()
			totalDuration += record.ExecutionTime
		}

		user := record.ExecutedBy
		if user == "" {
			user = "N/A"
		}

		name := record.Key().String()
		if len(name) > 43 {
			name = name[:40] + "..."
		}

		fmt.Printf("%-4d %-45s %-12s %-10s %s\n",
			record.ID,
			blue.Sprint(name),
			duration,
			user,
			record.AppliedAt.Format("2006-01-02 15:04"),
		)
	}

	fmt.Println(strings.Repeat("-", 90))
	fmt.Printf("📊 Summary: %d applied\n", len(history))
	if totalDuration > 0 {
		fmt.Printf("⏱️  Total execution time: %v\n", totalDuration)
	}
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 0, "Limit number of records to show (0 = all)")
	historyCmd.Flags().StringVarP(&historyApp, "app", "a", "", "Filter by app label")
	historyCmd.Flags().BoolVarP(&historyDetailed, "detailed", "d", false, "Show detailed information")
}
