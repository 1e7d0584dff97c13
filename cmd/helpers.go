package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/ridoystarlord/schedmigrate/database"
	"github.com/ridoystarlord/schedmigrate/generator"
	"github.com/ridoystarlord/schedmigrate/loader"
	"github.com/ridoystarlord/schedmigrate/migration"
	"github.com/ridoystarlord/schedmigrate/runner"
	"github.com/ridoystarlord/schedmigrate/utils"
)

// loadMigrations returns the compiled-in descriptors plus any YAML ones.
func loadMigrations() ([]migration.Migration, error) {
	migrations := migration.Registered()
	extra, err := loader.LoadMigrationsFromYAML(viper.GetString("migrations_dir"))
	if err != nil {
		return nil, fmt.Errorf("loading YAML migrations: %w", err)
	}
	return append(migrations, extra...), nil
}

func databaseURL() (string, error) {
	if url := viper.GetString("database_url"); url != "" {
		return url, nil
	}
	return utils.GetDatabaseURL()
}

func openEngine() (*runner.Engine, error) {
	url, err := databaseURL()
	if err != nil {
		return nil, err
	}
	db, err := database.Get(url)
	if err != nil {
		return nil, err
	}
	migrations, err := loadMigrations()
	if err != nil {
		return nil, err
	}
	return runner.New(db, migrations, slog.Default())
}

// offlineEngine renders SQL for a dialect without a database connection.
func offlineEngine(dialectName string) (*runner.Engine, error) {
	dialect, err := generator.ForName(dialectName)
	if err != nil {
		return nil, err
	}
	migrations, err := loadMigrations()
	if err != nil {
		return nil, err
	}
	return runner.New(&database.DB{Dialect: dialect}, migrations, slog.Default())
}

// resolveKey finds app's descriptor whose name equals or uniquely starts with prefix.
func resolveKey(g *migration.Graph, app, prefix string) (migration.Key, error) {
	exact := migration.Key{App: app, Name: prefix}
	if _, ok := g.Node(exact); ok {
		return exact, nil
	}
	var matches []migration.Key
	for _, m := range g.Nodes() {
		if m.App == app && strings.HasPrefix(m.Name, prefix) {
			matches = append(matches, m.Key())
		}
	}
	switch len(matches) {
	case 0:
		return migration.Key{}, fmt.Errorf("%w: no migration in app '%s' matches '%s'", migration.ErrUnknownMigration, app, prefix)
	case 1:
		return matches[0], nil
	}
	return migration.Key{}, fmt.Errorf("more than one migration in app '%s' matches '%s'", app, prefix)
}

// targetFromArgs reads optional [app] [name] arguments. An app alone targets
// that app's latest descriptor.
func targetFromArgs(g *migration.Graph, args []string) (*migration.Key, error) {
	switch len(args) {
	case 0:
		return nil, nil
	case 1:
		leaves := g.LeafNodesByApp()[args[0]]
		if len(leaves) == 0 {
			return nil, fmt.Errorf("app '%s' has no migrations", args[0])
		}
		if len(leaves) > 1 {
			return nil, fmt.Errorf("conflicting migrations detected in app '%s', run 'schedmigrate validate'", args[0])
		}
		return &leaves[0], nil
	}
	key, err := resolveKey(g, args[0], args[1])
	if err != nil {
		return nil, err
	}
	return &key, nil
}
