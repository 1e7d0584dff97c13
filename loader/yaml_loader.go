package loader

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ridoystarlord/schedmigrate/migration"
	"github.com/ridoystarlord/schedmigrate/schema"
)

const (
	opCreateModel = "create_model"
	opAddField    = "add_field"
	opAlterField  = "alter_field"
)

type yamlMigration struct {
	App          string          `yaml:"app"`
	Name         string          `yaml:"name"`
	Dependencies []migration.Key `yaml:"dependencies"`
	Operations   []yamlOperation `yaml:"operations"`
}

type yamlOperation struct {
	Type    string       `yaml:"type"`
	Model   string       `yaml:"model"`
	Field   *yamlColumn  `yaml:"field,omitempty"`
	Columns []yamlColumn `yaml:"columns,omitempty"`
}

type yamlColumn struct {
	Name       string          `yaml:"name"`
	Type       string          `yaml:"type"`
	MaxLength  int             `yaml:"max_length,omitempty"`
	Primary    bool            `yaml:"primary,omitempty"`
	Unique     bool            `yaml:"unique,omitempty"`
	NotNull    bool            `yaml:"not_null,omitempty"`
	Default    *string         `yaml:"default,omitempty"`
	ForeignKey *yamlForeignKey `yaml:"foreign_key,omitempty"`
}

type yamlForeignKey struct {
	ReferencesTable  string `yaml:"references_table"`
	ReferencesColumn string `yaml:"references_column"`
	OnDelete         string `yaml:"on_delete,omitempty"`
}

// LoadMigrationsFromYAML reads every *.yaml / *.yml descriptor in dir, in
// file name order. A missing directory yields no migrations.
func LoadMigrationsFromYAML(dir string) ([]migration.Migration, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var filenames []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".yaml") || strings.HasSuffix(e.Name(), ".yml") {
			filenames = append(filenames, e.Name())
		}
	}
	sort.Strings(filenames)

	var migrations []migration.Migration
	for _, name := range filenames {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		m, err := ParseMigration(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		migrations = append(migrations, m)
	}
	return migrations, nil
}

// ParseMigration decodes one YAML descriptor.
func ParseMigration(data []byte) (migration.Migration, error) {
	var ym yamlMigration
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ym); err != nil {
		return migration.Migration{}, fmt.Errorf("unmarshalling YAML: %w", err)
	}
	if ym.App == "" || ym.Name == "" {
		return migration.Migration{}, fmt.Errorf("descriptor must declare app and name")
	}

	m := migration.Migration{
		App:  ym.App,
		Name: ym.Name,
		Deps: ym.Dependencies,
	}
	for i, yo := range ym.Operations {
		op, err := decodeOperation(yo)
		if err != nil {
			return migration.Migration{}, fmt.Errorf("operation %d: %w", i+1, err)
		}
		m.Ops = append(m.Ops, op)
	}
	return m, nil
}

func decodeOperation(yo yamlOperation) (migration.Operation, error) {
	switch yo.Type {
	case opCreateModel:
		op := migration.CreateModel{Name: yo.Model}
		for _, c := range yo.Columns {
			op.Columns = append(op.Columns, toColumn(c))
		}
		return op, nil
	case opAddField, opAlterField:
		if yo.Field == nil {
			return nil, fmt.Errorf("%s requires a field", yo.Type)
		}
		if yo.Type == opAddField {
			return migration.AddField{Model: yo.Model, Field: toColumn(*yo.Field)}, nil
		}
		return migration.AlterField{Model: yo.Model, Field: toColumn(*yo.Field)}, nil
	}
	return nil, fmt.Errorf("unsupported operation type %q", yo.Type)
}

func toColumn(c yamlColumn) schema.Column {
	col := schema.Column{
		Name:      c.Name,
		Type:      schema.FieldType(c.Type),
		MaxLength: c.MaxLength,
		Primary:   c.Primary,
		Unique:    c.Unique,
		NotNull:   c.NotNull,
		Default:   c.Default,
	}
	if c.ForeignKey != nil {
		col.ForeignKey = &schema.ForeignKey{
			ReferencesTable:  c.ForeignKey.ReferencesTable,
			ReferencesColumn: c.ForeignKey.ReferencesColumn,
			OnDelete:         c.ForeignKey.OnDelete,
		}
	}
	return col
}

func fromColumn(c schema.Column) yamlColumn {
	col := yamlColumn{
		Name:      c.Name,
		Type:      string(c.Type),
		MaxLength: c.MaxLength,
		Primary:   c.Primary,
		Unique:    c.Unique,
		NotNull:   c.NotNull,
		Default:   c.Default,
	}
	if c.ForeignKey != nil {
		col.ForeignKey = &yamlForeignKey{
			ReferencesTable:  c.ForeignKey.ReferencesTable,
			ReferencesColumn: c.ForeignKey.ReferencesColumn,
			OnDelete:         c.ForeignKey.OnDelete,
		}
	}
	return col
}

// MarshalMigration encodes a descriptor in its YAML serialized form.
func MarshalMigration(m migration.Migration) ([]byte, error) {
	ym := yamlMigration{
		App:          m.App,
		Name:         m.Name,
		Dependencies: m.Deps,
	}
	for _, op := range m.Ops {
		switch o := op.(type) {
		case migration.CreateModel:
			yo := yamlOperation{Type: opCreateModel, Model: o.Name}
			for _, c := range o.Columns {
				yo.Columns = append(yo.Columns, fromColumn(c))
			}
			ym.Operations = append(ym.Operations, yo)
		case migration.AddField:
			f := fromColumn(o.Field)
			ym.Operations = append(ym.Operations, yamlOperation{Type: opAddField, Model: o.Model, Field: &f})
		case migration.AlterField:
			f := fromColumn(o.Field)
			ym.Operations = append(ym.Operations, yamlOperation{Type: opAlterField, Model: o.Model, Field: &f})
		default:
			return nil, fmt.Errorf("unsupported operation %T", op)
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(ym); err != nil {
		return nil, fmt.Errorf("marshalling YAML: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
