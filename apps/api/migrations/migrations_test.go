package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/schedmigrate/migration"
	"github.com/ridoystarlord/schedmigrate/schema"
	"github.com/ridoystarlord/schedmigrate/validator"
)

func TestHistoryIsLinear(t *testing.T) {
	g, err := migration.NewGraph(migration.Registered())
	require.NoError(t, err)

	plan := g.FullPlan()
	names := make([]string, len(plan))
	for i, k := range plan {
		names[i] = k.Name
	}
	assert.Equal(t, []string{
		"0001_initial",
		"0002_schedule",
		"0003_service_is_active",
		"0004_schedule_end_time_schedule_start_time_and_more",
	}, names)
	assert.Len(t, g.LeafNodesByApp()[App], 1)

	result := validator.ValidateMigrations(migration.Registered())
	assert.True(t, result.Valid, "errors: %v", result.Errors)
}

func TestScheduleTimesDescriptor(t *testing.T) {
	g, err := migration.NewGraph(migration.Registered())
	require.NoError(t, err)

	m, ok := g.Node(migration.Key{App: App, Name: "0004_schedule_end_time_schedule_start_time_and_more"})
	require.True(t, ok)
	assert.Equal(t, dependsOn("0003_service_is_active"), m.Dependencies())

	ops := m.Operations()
	require.Len(t, ops, 3)

	end, ok := ops[0].(migration.AddField)
	require.True(t, ok)
	assert.Equal(t, "schedule", end.Model)
	assert.Equal(t, "end_time", end.Field.Name)
	assert.Equal(t, schema.TypeTime, end.Field.Type)
	assert.Equal(t, "00:00:00", *end.Field.Default)

	start, ok := ops[1].(migration.AddField)
	require.True(t, ok)
	assert.Equal(t, "start_time", start.Field.Name)
	assert.Equal(t, "00:00:00", *start.Field.Default)

	alter, ok := ops[2].(migration.AlterField)
	require.True(t, ok)
	assert.Equal(t, "service", alter.Model)
	assert.Equal(t, "description", alter.Field.Name)
	assert.Equal(t, schema.TypeText, alter.Field.Type)
	assert.False(t, alter.Field.NotNull)

	require.NoError(t, m.Validate())
}
