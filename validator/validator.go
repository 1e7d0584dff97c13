package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ridoystarlord/schedmigrate/migration"
	"github.com/ridoystarlord/schedmigrate/schema"
)

// ValidationError represents a validation error with details
type ValidationError struct {
	Type      string `json:"type"`
	Migration string `json:"migration,omitempty"`
	Table     string `json:"table,omitempty"`
	Column    string `json:"column,omitempty"`
	Message   string `json:"message"`
	Severity  string `json:"severity"` // "error", "warning", "info"
}

// ValidationResult contains all validation results
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings"`
	Info     []ValidationError `json:"info"`
}

func (r *ValidationResult) addError(e ValidationError) {
	e.Severity = "error"
	r.Errors = append(r.Errors, e)
}

func (r *ValidationResult) addWarning(e ValidationError) {
	e.Severity = "warning"
	r.Warnings = append(r.Warnings, e)
}

func (r *ValidationResult) addInfo(e ValidationError) {
	e.Severity = "info"
	r.Info = append(r.Info, e)
}

var reservedKeywords = []string{"user", "order", "group", "table", "index", "view", "schema"}

// ValidateMigrations checks a set of descriptors without touching a database:
// identifiers, the dependency graph, per-app leaf conflicts, operation
// definitions and a full replay of the project state.
func ValidateMigrations(migrations []migration.Migration) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
		Info:     []ValidationError{},
	}

	perApp := map[string]int{}
	for _, m := range migrations {
		perApp[m.App]++
		validateIdentifiers(m, result)
		validateOperations(m, result)
	}

	graph, err := migration.NewGraph(migrations)
	if err != nil {
		typ := "graph"
		switch {
		case errors.Is(err, migration.ErrCycle):
			typ = "cycle"
		case errors.Is(err, migration.ErrNodeNotFound):
			typ = "missing_dependency"
		}
		result.addError(ValidationError{Type: typ, Message: err.Error()})
		result.Valid = false
		return result
	}

	for app, leaves := range graph.LeafNodesByApp() {
		if len(leaves) > 1 {
			names := make([]string, len(leaves))
			for i, l := range leaves {
				names[i] = l.Name
			}
			result.addError(ValidationError{
				Type:    "conflicting_leaves",
				Message: fmt.Sprintf("Conflicting migrations detected in app '%s': %s", app, strings.Join(names, ", ")),
			})
		}
	}

	if _, err := graph.State(graph.FullPlan()); err != nil {
		result.addError(ValidationError{Type: "state_replay", Message: err.Error()})
	}

	for app, n := range perApp {
		result.addInfo(ValidationError{
			Type:    "app_summary",
			Message: fmt.Sprintf("App '%s' has %d migration(s)", app, n),
		})
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func validateIdentifiers(m migration.Migration, result *ValidationResult) {
	key := m.Key().String()
	if err := validateName("app", m.App); err != nil {
		result.addError(ValidationError{Type: "app_name", Migration: key, Message: err.Error()})
	}
	if err := validateName("migration", m.Name); err != nil {
		result.addError(ValidationError{Type: "migration_name", Migration: key, Message: err.Error()})
	}
	for _, dep := range m.Deps {
		if dep == m.Key() {
			result.addError(ValidationError{Type: "self_dependency", Migration: key, Message: "migration depends on itself"})
		}
	}
}

func validateOperations(m migration.Migration, result *ValidationResult) {
	key := m.Key().String()
	if len(m.Ops) == 0 {
		result.addWarning(ValidationError{Type: "empty_migration", Migration: key, Message: "Migration has no operations"})
	}
	for _, op := range m.Ops {
		if err := op.Validate(); err != nil {
			typ := "operation"
			if errors.Is(err, migration.ErrDefaultTypeMismatch) {
				typ = "default_value"
			}
			result.addError(ValidationError{
				Type:      typ,
				Migration: key,
				Message:   fmt.Sprintf("%s: %v", op.Describe(), err),
			})
		}

		switch o := op.(type) {
		case migration.CreateModel:
			table := schema.TableName(m.App, o.Name)
			if isReserved(o.Name) {
				result.addWarning(ValidationError{
					Type:      "reserved_keyword",
					Migration: key,
					Table:     table,
					Message:   fmt.Sprintf("model name '%s' is a reserved keyword", o.Name),
				})
			}
			hasPrimaryKey := false
			for _, col := range o.Columns {
				if col.Primary {
					hasPrimaryKey = true
				}
			}
			if !hasPrimaryKey {
				result.addWarning(ValidationError{
					Type:      "no_primary_key",
					Migration: key,
					Table:     table,
					Message:   fmt.Sprintf("Table '%s' has no primary key defined", table),
				})
			}
		case migration.AddField:
			if o.Field.NotNull && o.Field.Default == nil {
				result.addWarning(ValidationError{
					Type:      "not_null_without_default",
					Migration: key,
					Table:     schema.TableName(m.App, o.Model),
					Column:    o.Field.Name,
					Message:   "NOT NULL field without a default fails on tables that already have rows",
				})
			}
		}
	}
}

func validateName(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s name cannot be empty", kind)
	}
	for _, char := range name {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '_') {
			return fmt.Errorf("%s name '%s' contains invalid character '%c'", kind, name, char)
		}
	}
	return nil
}

func isReserved(name string) bool {
	for _, keyword := range reservedKeywords {
		if strings.ToLower(name) == keyword {
			return true
		}
	}
	return false
}
