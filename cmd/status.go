package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	Run: func(cmd *cobra.Command, args []string) {
		engine, err := openEngine()
		if err != nil {
			fmt.Println("❌ Status error:", err)
			os.Exit(1)
		}

		report, err := engine.Status(context.Background())
		if err != nil {
			fmt.Println("❌ Status error:", err)
			os.Exit(1)
		}

		drifted := map[string]bool{}
		for _, key := range report.Drifted {
			drifted[key.String()] = true
		}

		fmt.Println("✅ Applied migrations:")
		for _, r := range report.Applied {
			if drifted[r.Key().String()] {
				color.Yellow("   - %s (changed since it was applied)", r.Key())
				continue
			}
			fmt.Printf("   - %s (%s)\n", r.Key(), r.AppliedAt.Format("2006-01-02 15:04:05"))
		}

		if len(report.Unknown) > 0 {
			fmt.Println("\n❌ Applied but not registered:")
			for _, r := range report.Unknown {
				color.Red("   - %s", r.Key())
			}
		}

		fmt.Println("\n🕒 Pending migrations:")
		for _, key := range report.Pending {
			fmt.Println("   -", key)
		}
	},
}
