// Package generator renders schema operations into dialect-specific DDL.
package generator

import (
	"fmt"
	"strings"

	"github.com/ridoystarlord/schedmigrate/schema"
)

// Dialect converts state transitions into SQL statements for one database engine.
type Dialect interface {
	Name() string
	Quote(ident string) string
	// Rebind rewrites ? placeholders into the dialect's bind syntax.
	Rebind(query string) string
	ColumnType(col schema.Column) (string, error)
	CreateTable(m schema.Model) ([]string, error)
	// AddColumn adds col, present in to but not in from.
	AddColumn(from, to schema.Model, col schema.Column) ([]string, error)
	// AlterColumn changes old (from) into updated (to) in place.
	AlterColumn(from, to schema.Model, old, updated schema.Column) ([]string, error)
}

const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// ForName returns the dialect registered under name.
func ForName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case Postgres, "postgresql", "pgx":
		return PostgresDialect{}, nil
	case SQLite, "sqlite3":
		return SQLiteDialect{}, nil
	}
	return nil, fmt.Errorf("unsupported dialect: %s", name)
}

func quoteIdent(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// literal renders a coerced default as a SQL literal for the column's type.
func literal(col schema.Column) (string, error) {
	val, err := schema.CoerceDefault(col)
	if err != nil {
		return "", err
	}
	switch col.Type {
	case schema.TypeInteger, schema.TypeBigInt, schema.TypeNumeric:
		return val, nil
	case schema.TypeBoolean:
		return strings.ToUpper(val), nil
	}
	return "'" + strings.ReplaceAll(val, "'", "''") + "'", nil
}

func foreignKeyClause(fk *schema.ForeignKey) string {
	stmt := fmt.Sprintf(" REFERENCES %s (%s)", quoteIdent(fk.ReferencesTable), quoteIdent(fk.ReferencesColumn))
	if fk.OnDelete != "" {
		stmt += " ON DELETE " + strings.ToUpper(fk.OnDelete)
	}
	return stmt
}

func columnNames(cols []schema.Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quoteIdent(c.Name)
	}
	return names
}
