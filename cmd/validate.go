package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/schedmigrate/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate registered migrations without touching the database",
	Long: `Validate the registered migrations and any YAML descriptors.

This command checks:
- App and migration names (identifier rules, reserved keywords)
- Field types and default values (a default must parse as its field type)
- Dependencies (missing migrations, cycles)
- Conflicting leaves (two migrations of one app that nothing depends on)
- Replay of every operation into the project state

Examples:
  schedmigrate validate
  schedmigrate validate --format json
`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := validateMigrations(); err != nil {
			fmt.Printf("❌ Migration validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

var validateFormat string

func init() {
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Output format (text, json)")
}

func validateMigrations() error {
	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	result := validator.ValidateMigrations(migrations)
	if validateFormat == "json" {
		if err := outputJSON(result); err != nil {
			return err
		}
	} else {
		outputText(result, "Migration validation")
	}
	if !result.Valid {
		return fmt.Errorf("%d error(s) found", len(result.Errors))
	}
	return nil
}

func outputJSON(result *validator.ValidationResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func printFindings(items []validator.ValidationError) {
	for i, item := range items {
		fmt.Printf("  %d. ", i+1)
		if item.Migration != "" {
			fmt.Printf("{%s} ", item.Migration)
		}
		if item.Table != "" {
			fmt.Printf("[%s]", item.Table)
		}
		if item.Column != "" {
			fmt.Printf(".%s", item.Column)
		}
		fmt.Printf(": %s\n", item.Message)
	}
}

func outputText(result *validator.ValidationResult, title string) {
	if result.Valid {
		color.Green("✅ %s passed!", title)
	} else {
		color.Red("❌ %s failed!", title)
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\n🔴 Errors (%d):\n", len(result.Errors))
		printFindings(result.Errors)
	}
	if len(result.Warnings) > 0 {
		fmt.Printf("\n🟡 Warnings (%d):\n", len(result.Warnings))
		printFindings(result.Warnings)
	}
	if len(result.Info) > 0 {
		fmt.Printf("\n🔵 Info (%d):\n", len(result.Info))
		printFindings(result.Info)
	}

	fmt.Printf("\n📊 Summary:\n")
	fmt.Printf("  • Errors: %d\n", len(result.Errors))
	fmt.Printf("  • Warnings: %d\n", len(result.Warnings))
	fmt.Printf("  • Info: %d\n", len(result.Info))
}
