package schema

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

type tableNamer interface {
	TableName() string
}

// LoadModels reflects the `db` struct tags of the given application models.
// A model may implement TableName() to override the default <app>_<name> table.
func LoadModels(app string, models ...interface{}) ([]Model, error) {
	var result []Model

	for _, m := range models {
		t := reflect.TypeOf(m)
		if t.Kind() == reflect.Ptr {
			t = t.Elem()
		}
		if t.Kind() != reflect.Struct {
			return nil, fmt.Errorf("model %v is not a struct", t)
		}

		name := snakeCase(t.Name())
		model := Model{
			Name:      name,
			TableName: TableName(app, name),
			Columns:   []Column{},
		}
		if tn, ok := m.(tableNamer); ok {
			model.TableName = tn.TableName()
		}

		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			tag := field.Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}
			col, err := parseDBTag(field.Name, tag)
			if err != nil {
				return nil, fmt.Errorf("error parsing tag on %s.%s: %v", t.Name(), field.Name, err)
			}
			model.Columns = append(model.Columns, col)
		}

		result = append(result, model)
	}

	return result, nil
}

func parseDBTag(fieldName, tag string) (Column, error) {
	parts := strings.Split(tag, ",")
	col := Column{
		Name: snakeCase(fieldName),
		Type: TypeText,
	}
	for i, part := range parts {
		part = strings.TrimSpace(part)
		switch {
		case part == "primary":
			col.Primary = true
			col.NotNull = true
		case part == "unique":
			col.Unique = true
		case part == "not_null":
			col.NotNull = true
		case strings.HasPrefix(part, "type:"):
			col.Type = FieldType(strings.TrimPrefix(part, "type:"))
			if !ValidFieldType(col.Type) {
				return Column{}, fmt.Errorf("unsupported type %q", col.Type)
			}
		case strings.HasPrefix(part, "max_length:"):
			n, err := strconv.Atoi(strings.TrimPrefix(part, "max_length:"))
			if err != nil {
				return Column{}, fmt.Errorf("invalid max_length in %q", part)
			}
			col.MaxLength = n
		case strings.HasPrefix(part, "default:"):
			val := strings.TrimPrefix(part, "default:")
			col.Default = &val
		case strings.HasPrefix(part, "fk:"):
			ref := strings.SplitN(strings.TrimPrefix(part, "fk:"), ".", 2)
			if len(ref) != 2 {
				return Column{}, fmt.Errorf("foreign key %q must be table.column", part)
			}
			if col.ForeignKey == nil {
				col.ForeignKey = &ForeignKey{}
			}
			col.ForeignKey.ReferencesTable = ref[0]
			col.ForeignKey.ReferencesColumn = ref[1]
		case strings.HasPrefix(part, "on_delete:"):
			if col.ForeignKey == nil {
				col.ForeignKey = &ForeignKey{}
			}
			col.ForeignKey.OnDelete = strings.TrimPrefix(part, "on_delete:")
		case i == 0 && part != "":
			col.Name = part
		default:
			return Column{}, fmt.Errorf("unknown tag option %q", part)
		}
	}
	return col, nil
}

func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
