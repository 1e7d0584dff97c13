package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridoystarlord/schedmigrate/migration"
	"github.com/ridoystarlord/schedmigrate/schema"
)

func migratedState(t *testing.T) *schema.State {
	t.Helper()
	g, err := migration.NewGraph(history())
	require.NoError(t, err)
	state, err := g.State(g.FullPlan())
	require.NoError(t, err)
	return state
}

type Service struct {
	ID          int     `db:"id,type:serial,primary"`
	Description *string `db:"description,type:text"`
	StartTime   string  `db:"start_time,type:time,not_null,default:00:00:00"`
}

func TestCheckModelsInSync(t *testing.T) {
	models, err := schema.LoadModels("api", Service{})
	require.NoError(t, err)

	result := CheckModels("api", models, migratedState(t))
	assert.True(t, result.Valid, "errors: %v", result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestCheckModelsReportsUnmigratedChanges(t *testing.T) {
	type service struct {
		ID          int    `db:"id,type:serial,primary"`
		Description string `db:"description,type:varchar,not_null"`
		EndTime     string `db:"end_time,type:time,not_null,default:00:00:00"`
	}
	type booking struct {
		ID int `db:"id,type:serial,primary"`
	}
	models, err := schema.LoadModels("api", service{}, booking{})
	require.NoError(t, err)

	result := CheckModels("api", models, migratedState(t))
	assert.False(t, result.Valid)
	errs := typesOf(result.Errors)
	assert.Contains(t, errs, "type_mismatch")
	assert.Contains(t, errs, "nullability_mismatch")
	assert.Contains(t, errs, "missing_column")
	assert.Contains(t, errs, "extra_column")
	assert.Contains(t, errs, "missing_model")
}

func TestCheckModelsWarnsOnUnmodelledTables(t *testing.T) {
	result := CheckModels("api", nil, migratedState(t))
	assert.True(t, result.Valid)
	assert.Equal(t, []string{"unmodelled_table"}, typesOf(result.Warnings))
}
