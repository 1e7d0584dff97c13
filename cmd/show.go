package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/schedmigrate/loader"
	"github.com/ridoystarlord/schedmigrate/migration"
)

var showYAML bool

var showCmd = &cobra.Command{
	Use:   "show [app] [name]",
	Short: "Describe registered migrations",
	Long: `Describe registered migrations: dependencies and operations. With an app
and a name only that migration is shown; --yaml prints its serialized form.

Examples:
  schedmigrate show
  schedmigrate show api 0004
  schedmigrate show api 0004 --yaml
`,
	Args: cobra.RangeArgs(0, 2),
	Run: func(cmd *cobra.Command, args []string) {
		migrations, err := loadMigrations()
		if err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}
		graph, err := migration.NewGraph(migrations)
		if err != nil {
			fmt.Println("❌", err)
			os.Exit(1)
		}

		var selected []migration.Migration
		switch len(args) {
		case 2:
			key, err := resolveKey(graph, args[0], args[1])
			if err != nil {
				fmt.Println("❌", err)
				os.Exit(1)
			}
			m, _ := graph.Node(key)
			selected = append(selected, m)
		default:
			for _, key := range graph.FullPlan() {
				if len(args) == 1 && key.App != args[0] {
					continue
				}
				m, _ := graph.Node(key)
				selected = append(selected, m)
			}
		}

		for _, m := range selected {
			if showYAML {
				data, err := loader.MarshalMigration(m)
				if err != nil {
					fmt.Println("❌", err)
					os.Exit(1)
				}
				fmt.Printf("---\n%s", data)
				continue
			}
			showMigration(m)
		}
	},
}

func showMigration(m migration.Migration) {
	blue := color.New(color.FgBlue, color.Bold)
	cyan := color.New(color.FgCyan)

	blue.Printf("\n%s\n", m.Key())
	for _, dep := range m.Dependencies() {
		cyan.Printf("  depends on %s\n", dep)
	}
	for i, op := range m.Operations() {
		fmt.Printf("  %d. %s\n", i+1, op.Describe())
	}
	if sum, err := migration.Checksum(m); err == nil {
		cyan.Printf("  checksum %s\n", sum[:12])
	}
}

func init() {
	showCmd.Flags().BoolVar(&showYAML, "yaml", false, "Print the serialized YAML form")
}
