package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/schedmigrate/migration"
	"github.com/ridoystarlord/schedmigrate/schema"
)

const scheduleTimesYAML = `app: api
name: 0004_schedule_end_time_schedule_start_time_and_more
dependencies:
  - app: api
    name: 0003_service_is_active
operations:
  - type: add_field
    model: schedule
    field:
      name: end_time
      type: time
      not_null: true
      default: "00:00:00"
  - type: add_field
    model: schedule
    field:
      name: start_time
      type: time
      not_null: true
      default: "00:00:00"
  - type: alter_field
    model: service
    field:
      name: description
      type: text
`

func TestParseMigration(t *testing.T) {
	m, err := ParseMigration([]byte(scheduleTimesYAML))
	require.NoError(t, err)

	assert.Equal(t, "api.0004_schedule_end_time_schedule_start_time_and_more", m.Key().String())
	assert.Equal(t, []migration.Key{{App: "api", Name: "0003_service_is_active"}}, m.Dependencies())
	require.Len(t, m.Ops, 3)

	add, ok := m.Ops[0].(migration.AddField)
	require.True(t, ok)
	assert.Equal(t, "schedule", add.Model)
	assert.Equal(t, "end_time", add.Field.Name)
	assert.Equal(t, schema.TypeTime, add.Field.Type)
	require.NotNil(t, add.Field.Default)
	assert.Equal(t, "00:00:00", *add.Field.Default)

	alter, ok := m.Ops[2].(migration.AlterField)
	require.True(t, ok)
	assert.False(t, alter.Field.NotNull)
	assert.Nil(t, alter.Field.Default)
}

func TestMarshalMigrationRoundTrip(t *testing.T) {
	m, err := ParseMigration([]byte(scheduleTimesYAML))
	require.NoError(t, err)

	data, err := MarshalMigration(m)
	require.NoError(t, err)
	again, err := ParseMigration(data)
	require.NoError(t, err)

	want, err := migration.Checksum(m)
	require.NoError(t, err)
	got, err := migration.Checksum(again)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestParseMigrationErrors(t *testing.T) {
	_, err := ParseMigration([]byte("app: api\n"))
	assert.Error(t, err, "name is required")

	_, err = ParseMigration([]byte("app: api\nname: x\nunknown: 1\n"))
	assert.Error(t, err, "unknown keys are rejected")

	_, err = ParseMigration([]byte("app: api\nname: x\noperations:\n  - type: drop_table\n    model: y\n"))
	assert.Error(t, err)

	_, err = ParseMigration([]byte("app: api\nname: x\noperations:\n  - type: add_field\n    model: y\n"))
	assert.Error(t, err, "add_field without a field")
}

func TestLoadMigrationsFromYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "0004.yaml"), []byte(scheduleTimesYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0o644))

	ms, err := LoadMigrationsFromYAML(dir)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, "0004_schedule_end_time_schedule_start_time_and_more", ms[0].Name)

	ms, err = LoadMigrationsFromYAML(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, ms)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "0005.yml"), []byte("app: [\n"), 0o644))
	_, err = LoadMigrationsFromYAML(dir)
	assert.Error(t, err)
}
