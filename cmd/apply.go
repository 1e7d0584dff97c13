package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply <app> <name>",
	Short: "Apply exactly one migration",
	Long: `Apply exactly one migration. Fails when it is already applied or when
any of its dependencies has not been applied yet.

Examples:
  schedmigrate apply api 0004_schedule_end_time_schedule_start_time_and_more
  schedmigrate apply api 0004
`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := openEngine()
		if err != nil {
			return err
		}
		key, err := resolveKey(engine.Graph(), args[0], args[1])
		if err != nil {
			return err
		}
		if err := engine.ApplyOne(context.Background(), key); err != nil {
			return err
		}
		fmt.Printf("✅ Applied %s\n", key)
		return nil
	},
}
