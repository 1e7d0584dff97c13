package runner

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/schedmigrate/apps/api/migrations"
	"github.com/ridoystarlord/schedmigrate/database"
	"github.com/ridoystarlord/schedmigrate/introspect"
	"github.com/ridoystarlord/schedmigrate/migration"
	"github.com/ridoystarlord/schedmigrate/schema"
)

var (
	key0002 = migration.Key{App: migrations.App, Name: "0002_schedule"}
	key0003 = migration.Key{App: migrations.App, Name: "0003_service_is_active"}
	key0004 = migration.Key{App: migrations.App, Name: "0004_schedule_end_time_schedule_start_time_and_more"}
)

// openTestDB creates a file-backed SQLite database that is removed with the test.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "schedmigrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

// apiHistory returns the registered api descriptors in dependency order.
func apiHistory() []migration.Migration {
	var out []migration.Migration
	for _, m := range migration.Registered() {
		if m.App == migrations.App {
			out = append(out, m)
		}
	}
	return out
}

// withScheduleTimes swaps the last descriptor for one built from ops.
func withScheduleTimes(ops ...migration.Operation) []migration.Migration {
	ms := apiHistory()
	last := ms[len(ms)-1]
	ms[len(ms)-1] = migration.Migration{App: last.App, Name: last.Name, Deps: last.Dependencies(), Ops: ops}
	return ms
}

func newTestEngine(t *testing.T, db *database.DB, ms []migration.Migration) *Engine {
	t.Helper()
	engine, err := New(db, ms, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return engine
}

func columnsOf(t *testing.T, db *database.DB, table string) map[string]introspect.ExistingColumn {
	t.Helper()
	existing, err := introspect.NewInspector(db, db.Dialect.Name()).Table(context.Background(), table)
	require.NoError(t, err)
	out := map[string]introspect.ExistingColumn{}
	if existing == nil {
		return out
	}
	for _, c := range existing.Columns {
		out[c.ColumnName] = c
	}
	return out
}

func mustExec(t *testing.T, db *database.DB, query string, args ...any) {
	t.Helper()
	_, err := db.ExecContext(context.Background(), query, args...)
	require.NoError(t, err, query)
}

func timeDefault(s string) *string { return &s }

var (
	addEndTime = migration.AddField{Model: "schedule", Field: schema.Column{
		Name: "end_time", Type: schema.TypeTime, NotNull: true, Default: timeDefault("00:00:00"),
	}}
	addStartTime = migration.AddField{Model: "schedule", Field: schema.Column{
		Name: "start_time", Type: schema.TypeTime, NotNull: true, Default: timeDefault("00:00:00"),
	}}
	relaxDescription = migration.AlterField{Model: "service", Field: schema.Column{
		Name: "description", Type: schema.TypeText,
	}}
)
