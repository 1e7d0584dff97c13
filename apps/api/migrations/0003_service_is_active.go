package migrations

import (
	"github.com/ridoystarlord/schedmigrate/migration"
	"github.com/ridoystarlord/schedmigrate/schema"
)

func init() {
	migration.Register(migration.Migration{
		App:  App,
		Name: "0003_service_is_active",
		Deps: dependsOn("0002_schedule"),
		Ops: []migration.Operation{
			migration.AddField{
				Model: "service",
				Field: schema.Column{Name: "is_active", Type: schema.TypeBoolean, NotNull: true, Default: ptr("true")},
			},
		},
	})
}
