package introspect

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/schedmigrate/database"
	"github.com/ridoystarlord/schedmigrate/generator"
)

func TestSQLiteInspector(t *testing.T) {
	ctx := context.Background()
	db, err := database.Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "inspect.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.ExecContext(ctx, `CREATE TABLE api_schedule (id integer NOT NULL PRIMARY KEY, start_time time NOT NULL, note text NULL DEFAULT 'x')`)
	require.NoError(t, err)

	insp := NewInspector(db, generator.SQLite)

	names, err := insp.TableNames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"api_schedule"}, names)

	table, err := insp.Table(ctx, "api_schedule")
	require.NoError(t, err)
	require.NotNil(t, table)
	require.Len(t, table.Columns, 3)

	id, _ := table.Column("id")
	assert.True(t, id.IsPrimaryKey)
	start, _ := table.Column("start_time")
	assert.Equal(t, "time", start.DataType)
	assert.False(t, start.IsNullable)
	note, ok := table.Column("note")
	require.True(t, ok)
	assert.True(t, note.IsNullable)
	require.NotNil(t, note.ColumnDefault)
	assert.Equal(t, "'x'", *note.ColumnDefault)

	missing, err := insp.Table(ctx, "api_service")
	require.NoError(t, err)
	assert.Nil(t, missing)

	ok, err = insp.ColumnExists(ctx, "api_schedule", "start_time")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = insp.ColumnExists(ctx, "api_schedule", "end_time")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = insp.TableExists(ctx, "api_service")
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := insp.Introspect(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUnsupportedDialect(t *testing.T) {
	_, err := NewInspector(nil, "oracle").TableNames(context.Background())
	assert.Error(t, err)
}
