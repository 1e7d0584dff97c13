package validator

import (
	"fmt"

	"github.com/ridoystarlord/schedmigrate/schema"
)

// CheckModels compares application models with the state produced by the
// migrations of app. Every difference is an error: the models have changes
// that no migration describes yet.
func CheckModels(app string, models []schema.Model, state *schema.State) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
		Info:     []ValidationError{},
	}

	seen := map[string]bool{}
	for _, model := range models {
		seen[model.Name] = true
		migrated, ok := state.Model(app, model.Name)
		if !ok {
			result.addError(ValidationError{
				Type:    "missing_model",
				Table:   model.TableName,
				Message: fmt.Sprintf("Model '%s' has no migration creating it", model.Name),
			})
			continue
		}
		if migrated.TableName != model.TableName {
			result.addError(ValidationError{
				Type:    "table_name",
				Table:   model.TableName,
				Message: fmt.Sprintf("Model '%s' maps to table '%s' but migrations created '%s'", model.Name, model.TableName, migrated.TableName),
			})
		}
		compareColumns(model, migrated, result)
	}

	for _, migrated := range state.Models() {
		if !seen[migrated.Name] && migrated.TableName == schema.TableName(app, migrated.Name) {
			result.addWarning(ValidationError{
				Type:    "unmodelled_table",
				Table:   migrated.TableName,
				Message: fmt.Sprintf("Table '%s' exists in migrations but has no model", migrated.TableName),
			})
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func compareColumns(model, migrated schema.Model, result *ValidationResult) {
	for _, col := range model.Columns {
		got, ok := migrated.Column(col.Name)
		if !ok {
			result.addError(ValidationError{
				Type:    "missing_column",
				Table:   model.TableName,
				Column:  col.Name,
				Message: fmt.Sprintf("Field '%s' is not created by any migration", col.Name),
			})
			continue
		}
		if got.Type != col.Type {
			result.addError(ValidationError{
				Type:    "type_mismatch",
				Table:   model.TableName,
				Column:  col.Name,
				Message: fmt.Sprintf("Field '%s' is %s in the model but %s in migrations", col.Name, col.Type, got.Type),
			})
		}
		if got.NotNull != col.NotNull {
			result.addError(ValidationError{
				Type:    "nullability_mismatch",
				Table:   model.TableName,
				Column:  col.Name,
				Message: fmt.Sprintf("Field '%s' has not_null=%t in the model but %t in migrations", col.Name, col.NotNull, got.NotNull),
			})
		}
		if got.Primary != col.Primary {
			result.addError(ValidationError{
				Type:    "primary_key_mismatch",
				Table:   model.TableName,
				Column:  col.Name,
				Message: fmt.Sprintf("Field '%s' primary key differs between model and migrations", col.Name),
			})
		}
	}
	for _, col := range migrated.Columns {
		if _, ok := model.Column(col.Name); !ok {
			result.addError(ValidationError{
				Type:    "extra_column",
				Table:   model.TableName,
				Column:  col.Name,
				Message: fmt.Sprintf("Column '%s' exists in migrations but not in the model", col.Name),
			})
		}
	}
}
