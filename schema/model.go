package schema

import (
	"sort"
)

// FieldType is the logical type of a column. Dialects map it to SQL.
type FieldType string

const (
	TypeSerial    FieldType = "serial"
	TypeInteger   FieldType = "integer"
	TypeBigInt    FieldType = "bigint"
	TypeBoolean   FieldType = "boolean"
	TypeText      FieldType = "text"
	TypeVarchar   FieldType = "varchar"
	TypeNumeric   FieldType = "numeric"
	TypeTime      FieldType = "time"
	TypeDate      FieldType = "date"
	TypeTimestamp FieldType = "timestamp"
)

// DefaultVarcharLength is used when a varchar column has no MaxLength.
const DefaultVarcharLength = 255

type Model struct {
	Name      string
	TableName string
	Columns   []Column
}

type Column struct {
	Name       string
	Type       FieldType
	MaxLength  int
	Primary    bool
	Unique     bool
	NotNull    bool
	Default    *string
	ForeignKey *ForeignKey
}

type ForeignKey struct {
	ReferencesTable  string
	ReferencesColumn string
	OnDelete         string // CASCADE, SET NULL, RESTRICT, etc.
}

// TableName returns the table backing model name in app.
func TableName(app, model string) string {
	return app + "_" + model
}

// Column looks up a column by name.
func (m Model) Column(name string) (Column, bool) {
	for _, c := range m.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Clone returns a deep copy of the model.
func (m Model) Clone() Model {
	out := Model{
		Name:      m.Name,
		TableName: m.TableName,
		Columns:   make([]Column, len(m.Columns)),
	}
	for i, c := range m.Columns {
		out.Columns[i] = c.Clone()
	}
	return out
}

func (c Column) Clone() Column {
	out := c
	if c.Default != nil {
		d := *c.Default
		out.Default = &d
	}
	if c.ForeignKey != nil {
		fk := *c.ForeignKey
		out.ForeignKey = &fk
	}
	return out
}

// State is the in-memory project schema obtained by replaying operations.
type State struct {
	models map[string]Model
}

func NewState() *State {
	return &State{models: map[string]Model{}}
}

func stateKey(app, name string) string {
	return app + "." + name
}

func (s *State) Model(app, name string) (Model, bool) {
	m, ok := s.models[stateKey(app, name)]
	if !ok {
		return Model{}, false
	}
	return m.Clone(), true
}

func (s *State) PutModel(app string, m Model) {
	s.models[stateKey(app, m.Name)] = m.Clone()
}

// Models returns every model ordered by table name.
func (s *State) Models() []Model {
	out := make([]Model, 0, len(s.models))
	for _, m := range s.models {
		out = append(out, m.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TableName < out[j].TableName
	})
	return out
}

func (s *State) Clone() *State {
	out := NewState()
	for k, m := range s.models {
		out.models[k] = m.Clone()
	}
	return out
}
