package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/schedmigrate/migration"
	"github.com/ridoystarlord/schedmigrate/schema"
)

func strPtr(s string) *string { return &s }

func history() []migration.Migration {
	initial := migration.Migration{
		App:  "api",
		Name: "0001_initial",
		Ops: []migration.Operation{
			migration.CreateModel{Name: "service", Columns: []schema.Column{
				{Name: "id", Type: schema.TypeSerial, Primary: true},
				{Name: "description", Type: schema.TypeText, NotNull: true},
			}},
		},
	}
	times := migration.Migration{
		App:  "api",
		Name: "0002_service_times",
		Deps: []migration.Key{initial.Key()},
		Ops: []migration.Operation{
			migration.AddField{Model: "service", Field: schema.Column{Name: "start_time", Type: schema.TypeTime, NotNull: true, Default: strPtr("00:00:00")}},
			migration.AlterField{Model: "service", Field: schema.Column{Name: "description", Type: schema.TypeText}},
		},
	}
	return []migration.Migration{initial, times}
}

func typesOf(items []ValidationError) []string {
	out := make([]string, 0, len(items))
	for _, i := range items {
		out = append(out, i.Type)
	}
	return out
}

func TestValidateMigrationsValid(t *testing.T) {
	result := ValidateMigrations(history())
	assert.True(t, result.Valid, "errors: %v", result.Errors)
	assert.Empty(t, result.Errors)
	assert.Contains(t, typesOf(result.Info), "app_summary")
}

func TestValidateMigrationsBadDefault(t *testing.T) {
	ms := history()
	ms[1].Ops[0] = migration.AddField{Model: "service", Field: schema.Column{Name: "start_time", Type: schema.TypeTime, NotNull: true, Default: strPtr("tomorrow")}}

	result := ValidateMigrations(ms)
	assert.False(t, result.Valid)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, typesOf(result.Errors), "default_value")
	assert.Equal(t, "api.0002_service_times", result.Errors[0].Migration)
}

func TestValidateMigrationsCycle(t *testing.T) {
	ms := history()
	ms[0].Deps = []migration.Key{ms[1].Key()}

	result := ValidateMigrations(ms)
	assert.False(t, result.Valid)
	assert.Contains(t, typesOf(result.Errors), "cycle")
}

func TestValidateMigrationsMissingDependency(t *testing.T) {
	result := ValidateMigrations(history()[1:])
	assert.False(t, result.Valid)
	assert.Contains(t, typesOf(result.Errors), "missing_dependency")
}

func TestValidateMigrationsConflictingLeaves(t *testing.T) {
	ms := history()
	ms = append(ms, migration.Migration{
		App:  "api",
		Name: "0002_service_price",
		Deps: []migration.Key{ms[0].Key()},
		Ops: []migration.Operation{
			migration.AddField{Model: "service", Field: schema.Column{Name: "price", Type: schema.TypeNumeric, NotNull: true, Default: strPtr("0")}},
		},
	})

	result := ValidateMigrations(ms)
	assert.False(t, result.Valid)
	assert.Contains(t, typesOf(result.Errors), "conflicting_leaves")
}

func TestValidateMigrationsStateReplay(t *testing.T) {
	ms := history()
	ms[1].Ops = append(ms[1].Ops, migration.AddField{Model: "service", Field: schema.Column{Name: "start_time", Type: schema.TypeTime}})

	result := ValidateMigrations(ms)
	assert.False(t, result.Valid)
	assert.Contains(t, typesOf(result.Errors), "state_replay")
}

func TestValidateMigrationsWarnings(t *testing.T) {
	ms := []migration.Migration{
		{App: "api", Name: "0001_initial", Ops: []migration.Operation{
			migration.CreateModel{Name: "order", Columns: []schema.Column{{Name: "total", Type: schema.TypeNumeric}}},
		}},
		{App: "api", Name: "0002_order_status", Deps: []migration.Key{{App: "api", Name: "0001_initial"}}, Ops: []migration.Operation{
			migration.AddField{Model: "order", Field: schema.Column{Name: "status", Type: schema.TypeText, NotNull: true}},
		}},
		{App: "api", Name: "0003_empty", Deps: []migration.Key{{App: "api", Name: "0002_order_status"}}},
	}

	result := ValidateMigrations(ms)
	assert.True(t, result.Valid, "errors: %v", result.Errors)
	warnings := typesOf(result.Warnings)
	assert.Contains(t, warnings, "reserved_keyword")
	assert.Contains(t, warnings, "no_primary_key")
	assert.Contains(t, warnings, "not_null_without_default")
	assert.Contains(t, warnings, "empty_migration")
}

func TestValidateMigrationsNames(t *testing.T) {
	ms := []migration.Migration{
		{App: "api", Name: "0001-initial", Deps: []migration.Key{{App: "api", Name: "0001-initial"}}},
	}
	result := ValidateMigrations(ms)
	assert.False(t, result.Valid)
	assert.Contains(t, typesOf(result.Errors), "migration_name")
	assert.Contains(t, typesOf(result.Errors), "self_dependency")
}
