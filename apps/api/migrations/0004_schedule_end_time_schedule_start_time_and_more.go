package migrations

import (
	"github.com/ridoystarlord/schedmigrate/migration"
	"github.com/ridoystarlord/schedmigrate/schema"
)

func init() {
	migration.Register(migration.Migration{
		App:  App,
		Name: "0004_schedule_end_time_schedule_start_time_and_more",
		Deps: dependsOn("0003_service_is_active"),
		Ops: []migration.Operation{
			migration.AddField{
				Model: "schedule",
				Field: schema.Column{Name: "end_time", Type: schema.TypeTime, NotNull: true, Default: ptr("00:00:00")},
			},
			migration.AddField{
				Model: "schedule",
				Field: schema.Column{Name: "start_time", Type: schema.TypeTime, NotNull: true, Default: ptr("00:00:00")},
			},
			migration.AlterField{
				Model: "service",
				Field: schema.Column{Name: "description", Type: schema.TypeText},
			},
		},
	})
}
