package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ridoystarlord/schedmigrate/schema"
)

// PostgresDialect never leaves database-level defaults behind: defaults are
// applied to existing rows when a column is added and then dropped.
type PostgresDialect struct{}

func (PostgresDialect) Name() string { return Postgres }

func (PostgresDialect) Quote(ident string) string { return quoteIdent(ident) }

func (PostgresDialect) Rebind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (PostgresDialect) ColumnType(col schema.Column) (string, error) {
	switch col.Type {
	case schema.TypeSerial:
		return "serial", nil
	case schema.TypeInteger:
		return "integer", nil
	case schema.TypeBigInt:
		return "bigint", nil
	case schema.TypeBoolean:
		return "boolean", nil
	case schema.TypeText:
		return "text", nil
	case schema.TypeVarchar:
		n := col.MaxLength
		if n == 0 {
			n = schema.DefaultVarcharLength
		}
		return fmt.Sprintf("varchar(%d)", n), nil
	case schema.TypeNumeric:
		return "numeric", nil
	case schema.TypeTime:
		return "time", nil
	case schema.TypeDate:
		return "date", nil
	case schema.TypeTimestamp:
		return "timestamp with time zone", nil
	}
	return "", fmt.Errorf("unsupported field type %q", col.Type)
}

func (d PostgresDialect) columnDefinition(col schema.Column, withDefault bool) (string, error) {
	typ, err := d.ColumnType(col)
	if err != nil {
		return "", err
	}
	stmt := fmt.Sprintf(`%s %s`, quoteIdent(col.Name), typ)
	if withDefault && col.Default != nil {
		lit, err := literal(col)
		if err != nil {
			return "", err
		}
		stmt += " DEFAULT " + lit
	}
	if col.NotNull || col.Primary {
		stmt += " NOT NULL"
	} else {
		stmt += " NULL"
	}
	if col.Primary {
		stmt += " PRIMARY KEY"
	} else if col.Unique {
		stmt += " UNIQUE"
	}
	if col.ForeignKey != nil {
		stmt += foreignKeyClause(col.ForeignKey)
	}
	return stmt, nil
}

func (d PostgresDialect) CreateTable(m schema.Model) ([]string, error) {
	defs := make([]string, 0, len(m.Columns))
	for _, col := range m.Columns {
		def, err := d.columnDefinition(col, false)
		if err != nil {
			return nil, fmt.Errorf("column %s: %v", col.Name, err)
		}
		defs = append(defs, def)
	}
	return []string{fmt.Sprintf("CREATE TABLE %s (%s);", quoteIdent(m.TableName), strings.Join(defs, ", "))}, nil
}

func (d PostgresDialect) AddColumn(from, to schema.Model, col schema.Column) ([]string, error) {
	def, err := d.columnDefinition(col, true)
	if err != nil {
		return nil, fmt.Errorf("column %s: %v", col.Name, err)
	}
	stmts := []string{fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", quoteIdent(to.TableName), def)}
	if col.Default != nil {
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP DEFAULT;",
			quoteIdent(to.TableName), quoteIdent(col.Name)))
	}
	return stmts, nil
}

func (d PostgresDialect) AlterColumn(from, to schema.Model, old, updated schema.Column) ([]string, error) {
	if old.Name != updated.Name {
		return nil, fmt.Errorf("renaming %s to %s is not supported by alter", old.Name, updated.Name)
	}
	table := quoteIdent(to.TableName)
	name := quoteIdent(updated.Name)

	var stmts []string

	if old.Type != updated.Type || old.MaxLength != updated.MaxLength {
		typ, err := d.ColumnType(updated)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s TYPE %s USING %s::%s;",
			table, name, typ, name, typ))
	}

	oldNotNull := old.NotNull || old.Primary
	newNotNull := updated.NotNull || updated.Primary
	if oldNotNull != newNotNull {
		if newNotNull {
			// Existing NULLs get the effective default before the constraint is set.
			if updated.Default != nil {
				lit, err := literal(updated)
				if err != nil {
					return nil, err
				}
				stmts = append(stmts, fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s IS NULL;",
					table, name, lit, name))
			}
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s SET NOT NULL;", table, name))
		} else {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ALTER COLUMN %s DROP NOT NULL;", table, name))
		}
	}

	if old.Unique != updated.Unique && !updated.Primary {
		constraint := quoteIdent(fmt.Sprintf("%s_%s_key", to.TableName, updated.Name))
		if updated.Unique {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s UNIQUE (%s);", table, constraint, name))
		} else {
			stmts = append(stmts, fmt.Sprintf("ALTER TABLE %s DROP CONSTRAINT %s;", table, constraint))
		}
	}

	return stmts, nil
}
