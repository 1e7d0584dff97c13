package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var planCmd = &cobra.Command{
	Use:   "plan [app] [name]",
	Short: "Show the order in which migrations would be applied",
	Long: `List every migration on the way to the target in apply order, marking
those already recorded in the ledger.

Examples:
  schedmigrate plan
  schedmigrate plan api 0004
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
		steps, err := engine.Plan(context.Background(), target)
		if err != nil {
			return err
		}

		fmt.Println("📋 Planned operations:")
		for _, step := range steps {
			if step.Applied {
				color.Green("  [X] %s", step.Key)
			} else {
				color.Yellow("  [ ] %s", step.Key)
			}
			for _, op := range step.Operations {
				fmt.Printf("      %s\n", op)
			}
		}
		return nil
	},
}
