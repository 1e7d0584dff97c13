package schema

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var validTypes = map[FieldType]bool{
	TypeSerial:    true,
	TypeInteger:   true,
	TypeBigInt:    true,
	TypeBoolean:   true,
	TypeText:      true,
	TypeVarchar:   true,
	TypeNumeric:   true,
	TypeTime:      true,
	TypeDate:      true,
	TypeTimestamp: true,
}

// ValidFieldType reports whether t is a supported logical type.
func ValidFieldType(t FieldType) bool {
	return validTypes[t]
}

var timeLayouts = []string{"15:04:05", "15:04:05.999999", "15:04"}

var timestampLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05"}

// CoerceDefault checks that the column's default can be stored in its type
// and returns the normalized literal. Columns without a default return "".
func CoerceDefault(col Column) (string, error) {
	if col.Default == nil {
		return "", nil
	}
	raw := *col.Default

	switch col.Type {
	case TypeSerial:
		return "", fmt.Errorf("serial column %q cannot declare a default", col.Name)

	case TypeInteger, TypeBigInt:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return "", fmt.Errorf("default %q is not an integer", raw)
		}
		return strconv.FormatInt(n, 10), nil

	case TypeNumeric:
		if _, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err != nil {
			return "", fmt.Errorf("default %q is not numeric", raw)
		}
		return strings.TrimSpace(raw), nil

	case TypeBoolean:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return "", fmt.Errorf("default %q is not a boolean", raw)
		}
		return strconv.FormatBool(b), nil

	case TypeTime:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.Format("15:04:05.999999"), nil
			}
		}
		return "", fmt.Errorf("default %q is not a time of day (HH:MM[:SS[.ffffff]])", raw)

	case TypeDate:
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return "", fmt.Errorf("default %q is not a date (YYYY-MM-DD)", raw)
		}
		return t.Format("2006-01-02"), nil

	case TypeTimestamp:
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t.UTC().Format(time.RFC3339Nano), nil
			}
		}
		return "", fmt.Errorf("default %q is not a timestamp", raw)

	case TypeVarchar:
		limit := col.MaxLength
		if limit == 0 {
			limit = DefaultVarcharLength
		}
		if len([]rune(raw)) > limit {
			return "", fmt.Errorf("default %q exceeds max length %d", raw, limit)
		}
		return raw, nil

	case TypeText:
		return raw, nil
	}

	return "", fmt.Errorf("unsupported field type %q", col.Type)
}
