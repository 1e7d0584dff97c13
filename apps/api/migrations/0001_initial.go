package migrations

import (
	"github.com/ridoystarlord/schedmigrate/migration"
	"github.com/ridoystarlord/schedmigrate/schema"
)

func init() {
	migration.Register(migration.Migration{
		App:  App,
		Name: "0001_initial",
		Ops: []migration.Operation{
			migration.CreateModel{
				Name: "service",
				Columns: []schema.Column{
					{Name: "id", Type: schema.TypeSerial, Primary: true, NotNull: true},
					{Name: "name", Type: schema.TypeVarchar, MaxLength: 255, NotNull: true},
					{Name: "description", Type: schema.TypeText, NotNull: true},
					{Name: "price", Type: schema.TypeNumeric, NotNull: true, Default: ptr("0")},
				},
			},
		},
	})
}
