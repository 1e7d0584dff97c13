package migration

import (
	"context"
	"fmt"

	"github.com/ridoystarlord/schedmigrate/generator"
	"github.com/ridoystarlord/schedmigrate/schema"
)

// Inspector answers questions about the live catalog before DDL runs.
type Inspector interface {
	TableExists(ctx context.Context, table string) (bool, error)
	ColumnExists(ctx context.Context, table, column string) (bool, error)
}

// Operation is one indivisible schema edit.
type Operation interface {
	Describe() string
	// Validate performs checks that need neither state nor database.
	Validate() error
	// StateForwards applies the edit to the in-memory project state.
	StateForwards(app string, state *schema.State) error
	// DatabaseForwards renders the DDL moving the database from one state to the next.
	DatabaseForwards(app string, d generator.Dialect, from, to *schema.State) ([]string, error)
	// Preflight checks the live catalog against the pre-operation state.
	Preflight(ctx context.Context, app string, from *schema.State, insp Inspector) error
}

// CreateModel adds a new table.
type CreateModel struct {
	Name    string
	Columns []schema.Column
}

func (op CreateModel) Describe() string {
	return fmt.Sprintf("Create model %s", op.Name)
}

func (op CreateModel) Validate() error {
	if err := validIdentifier(op.Name); err != nil {
		return fmt.Errorf("model name: %v", err)
	}
	if len(op.Columns) == 0 {
		return fmt.Errorf("model %s must have at least one column", op.Name)
	}
	seen := map[string]bool{}
	for _, col := range op.Columns {
		if seen[col.Name] {
			return fmt.Errorf("duplicate column %s", col.Name)
		}
		seen[col.Name] = true
		if err := validateColumn(col); err != nil {
			return err
		}
	}
	return nil
}

func (op CreateModel) StateForwards(app string, state *schema.State) error {
	if _, exists := state.Model(app, op.Name); exists {
		return fmt.Errorf("%w: model %s.%s already exists", ErrOperationConflict, app, op.Name)
	}
	m := schema.Model{
		Name:      op.Name,
		TableName: schema.TableName(app, op.Name),
	}
	for _, col := range op.Columns {
		m.Columns = append(m.Columns, normalized(col))
	}
	state.PutModel(app, m)
	return nil
}

func (op CreateModel) DatabaseForwards(app string, d generator.Dialect, from, to *schema.State) ([]string, error) {
	m, ok := to.Model(app, op.Name)
	if !ok {
		return nil, fmt.Errorf("model %s.%s missing from target state", app, op.Name)
	}
	return d.CreateTable(m)
}

func (op CreateModel) Preflight(ctx context.Context, app string, from *schema.State, insp Inspector) error {
	table := schema.TableName(app, op.Name)
	exists, err := insp.TableExists(ctx, table)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: table %s already exists", ErrOperationConflict, table)
	}
	return nil
}

// AddField adds a column to an existing model. Every existing row receives the default.
type AddField struct {
	Model string
	Field schema.Column
}

func (op AddField) Describe() string {
	return fmt.Sprintf("Add field %s to %s", op.Field.Name, op.Model)
}

func (op AddField) Validate() error {
	if err := validIdentifier(op.Model); err != nil {
		return fmt.Errorf("model name: %v", err)
	}
	return validateColumn(op.Field)
}

func (op AddField) StateForwards(app string, state *schema.State) error {
	m, ok := state.Model(app, op.Model)
	if !ok {
		return fmt.Errorf("%w: model %s.%s does not exist", ErrOperationConflict, app, op.Model)
	}
	if _, exists := m.Column(op.Field.Name); exists {
		return fmt.Errorf("%w: field %s.%s already exists", ErrOperationConflict, op.Model, op.Field.Name)
	}
	m.Columns = append(m.Columns, normalized(op.Field))
	state.PutModel(app, m)
	return nil
}

func (op AddField) DatabaseForwards(app string, d generator.Dialect, from, to *schema.State) ([]string, error) {
	before, ok := from.Model(app, op.Model)
	if !ok {
		return nil, fmt.Errorf("model %s.%s missing from state", app, op.Model)
	}
	after, _ := to.Model(app, op.Model)
	col, ok := after.Column(op.Field.Name)
	if !ok {
		return nil, fmt.Errorf("field %s missing from target state", op.Field.Name)
	}
	return d.AddColumn(before, after, col)
}

func (op AddField) Preflight(ctx context.Context, app string, from *schema.State, insp Inspector) error {
	m, ok := from.Model(app, op.Model)
	if !ok {
		return fmt.Errorf("%w: model %s.%s does not exist", ErrOperationConflict, app, op.Model)
	}
	exists, err := insp.TableExists(ctx, m.TableName)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: table %s does not exist", ErrOperationConflict, m.TableName)
	}
	exists, err = insp.ColumnExists(ctx, m.TableName, op.Field.Name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: column %s.%s already exists", ErrOperationConflict, m.TableName, op.Field.Name)
	}
	return nil
}

// AlterField replaces the definition of an existing column. Data is kept.
type AlterField struct {
	Model string
	Field schema.Column
}

func (op AlterField) Describe() string {
	return fmt.Sprintf("Alter field %s on %s", op.Field.Name, op.Model)
}

func (op AlterField) Validate() error {
	if err := validIdentifier(op.Model); err != nil {
		return fmt.Errorf("model name: %v", err)
	}
	return validateColumn(op.Field)
}

func (op AlterField) StateForwards(app string, state *schema.State) error {
	m, ok := state.Model(app, op.Model)
	if !ok {
		return fmt.Errorf("%w: model %s.%s does not exist", ErrOperationConflict, app, op.Model)
	}
	replaced := false
	for i, col := range m.Columns {
		if col.Name == op.Field.Name {
			m.Columns[i] = normalized(op.Field)
			replaced = true
			break
		}
	}
	if !replaced {
		return fmt.Errorf("%w: field %s.%s does not exist", ErrOperationConflict, op.Model, op.Field.Name)
	}
	state.PutModel(app, m)
	return nil
}

func (op AlterField) DatabaseForwards(app string, d generator.Dialect, from, to *schema.State) ([]string, error) {
	before, ok := from.Model(app, op.Model)
	if !ok {
		return nil, fmt.Errorf("model %s.%s missing from state", app, op.Model)
	}
	after, _ := to.Model(app, op.Model)
	old, ok := before.Column(op.Field.Name)
	if !ok {
		return nil, fmt.Errorf("field %s missing from state", op.Field.Name)
	}
	updated, _ := after.Column(op.Field.Name)
	return d.AlterColumn(before, after, old, updated)
}

func (op AlterField) Preflight(ctx context.Context, app string, from *schema.State, insp Inspector) error {
	m, ok := from.Model(app, op.Model)
	if !ok {
		return fmt.Errorf("%w: model %s.%s does not exist", ErrOperationConflict, app, op.Model)
	}
	exists, err := insp.ColumnExists(ctx, m.TableName, op.Field.Name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: column %s.%s does not exist", ErrOperationConflict, m.TableName, op.Field.Name)
	}
	return nil
}

func validateColumn(col schema.Column) error {
	if err := validIdentifier(col.Name); err != nil {
		return fmt.Errorf("column name: %v", err)
	}
	if !schema.ValidFieldType(col.Type) {
		return fmt.Errorf("column %s: unsupported field type %q", col.Name, col.Type)
	}
	if _, err := schema.CoerceDefault(col); err != nil {
		return fmt.Errorf("%w: column %s: %v", ErrDefaultTypeMismatch, col.Name, err)
	}
	return nil
}

// normalized stores the coerced default so that equivalent spellings
// ("00:00", "00:00:00") produce the same state.
func normalized(col schema.Column) schema.Column {
	out := col.Clone()
	if out.Primary {
		out.NotNull = true
	}
	if v, err := schema.CoerceDefault(out); err == nil && out.Default != nil {
		out.Default = &v
	}
	return out
}

func validIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("identifier cannot be empty")
	}
	if len(name) > 63 {
		return fmt.Errorf("identifier '%s' is too long (max 63 characters)", name)
	}
	for _, char := range name {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '_') {
			return fmt.Errorf("identifier '%s' contains invalid character '%c'", name, char)
		}
	}
	return nil
}
