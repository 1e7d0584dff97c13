package migration

import (
	"context"

	"github.com/ridoystarlord/schedmigrate/schema"
)

func strPtr(s string) *string { return &s }

// bookingHistory mirrors the shape of the api app's history: create two
// tables, add a flag, then add two time columns and relax a constraint.
func bookingHistory() []Migration {
	initial := Migration{
		App:  "api",
		Name: "0001_initial",
		Ops: []Operation{
			CreateModel{Name: "service", Columns: []schema.Column{
				{Name: "id", Type: schema.TypeSerial, Primary: true},
				{Name: "description", Type: schema.TypeText, NotNull: true},
			}},
		},
	}
	schedule := Migration{
		App:  "api",
		Name: "0002_schedule",
		Deps: []Key{initial.Key()},
		Ops: []Operation{
			CreateModel{Name: "schedule", Columns: []schema.Column{
				{Name: "id", Type: schema.TypeSerial, Primary: true},
				{Name: "service_id", Type: schema.TypeInteger, NotNull: true,
					ForeignKey: &schema.ForeignKey{ReferencesTable: "api_service", ReferencesColumn: "id", OnDelete: "CASCADE"}},
			}},
		},
	}
	active := Migration{
		App:  "api",
		Name: "0003_service_is_active",
		Deps: []Key{schedule.Key()},
		Ops: []Operation{
			AddField{Model: "service", Field: schema.Column{Name: "is_active", Type: schema.TypeBoolean, NotNull: true, Default: strPtr("true")}},
		},
	}
	times := Migration{
		App:  "api",
		Name: "0004_schedule_end_time_schedule_start_time_and_more",
		Deps: []Key{active.Key()},
		Ops: []Operation{
			AddField{Model: "schedule", Field: schema.Column{Name: "end_time", Type: schema.TypeTime, NotNull: true, Default: strPtr("00:00:00")}},
			AddField{Model: "schedule", Field: schema.Column{Name: "start_time", Type: schema.TypeTime, NotNull: true, Default: strPtr("00:00:00")}},
			AlterField{Model: "service", Field: schema.Column{Name: "description", Type: schema.TypeText}},
		},
	}
	return []Migration{initial, schedule, active, times}
}

// fakeInspector reports a fixed catalog of table -> columns.
type fakeInspector map[string][]string

func (f fakeInspector) TableExists(ctx context.Context, table string) (bool, error) {
	_, ok := f[table]
	return ok, nil
}

func (f fakeInspector) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	for _, c := range f[table] {
		if c == column {
			return true, nil
		}
	}
	return false, nil
}
