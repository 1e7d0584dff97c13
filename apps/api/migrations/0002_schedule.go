package migrations

import (
	"github.com/ridoystarlord/schedmigrate/migration"
	"github.com/ridoystarlord/schedmigrate/schema"
)

func init() {
	migration.Register(migration.Migration{
		App:  App,
		Name: "0002_schedule",
		Deps: dependsOn("0001_initial"),
		Ops: []migration.Operation{
			migration.CreateModel{
				Name: "schedule",
				Columns: []schema.Column{
					{Name: "id", Type: schema.TypeSerial, Primary: true, NotNull: true},
					{
						Name:    "service_id",
						Type:    schema.TypeInteger,
						NotNull: true,
						ForeignKey: &schema.ForeignKey{
							ReferencesTable:  "api_service",
							ReferencesColumn: "id",
							OnDelete:         "CASCADE",
						},
					},
					{Name: "weekday", Type: schema.TypeInteger, NotNull: true},
				},
			},
		},
	})
}
