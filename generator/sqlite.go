package generator

import (
	"fmt"
	"strings"

	"github.com/ridoystarlord/schedmigrate/schema"
)

// SQLiteDialect cannot alter columns in place, so most changes rebuild the
// table from the target state and copy rows across.
type SQLiteDialect struct{}

func (SQLiteDialect) Name() string { return SQLite }

func (SQLiteDialect) Quote(ident string) string { return quoteIdent(ident) }

func (SQLiteDialect) Rebind(query string) string { return query }

func (SQLiteDialect) ColumnType(col schema.Column) (string, error) {
	switch col.Type {
	case schema.TypeSerial, schema.TypeInteger:
		return "integer", nil
	case schema.TypeBigInt:
		return "bigint", nil
	case schema.TypeBoolean:
		return "bool", nil
	case schema.TypeText:
		return "text", nil
	case schema.TypeVarchar:
		n := col.MaxLength
		if n == 0 {
			n = schema.DefaultVarcharLength
		}
		return fmt.Sprintf("varchar(%d)", n), nil
	case schema.TypeNumeric:
		return "decimal", nil
	case schema.TypeTime:
		return "time", nil
	case schema.TypeDate:
		return "date", nil
	case schema.TypeTimestamp:
		return "datetime", nil
	}
	return "", fmt.Errorf("unsupported field type %q", col.Type)
}

func (d SQLiteDialect) columnDefinition(col schema.Column) (string, error) {
	typ, err := d.ColumnType(col)
	if err != nil {
		return "", err
	}
	stmt := fmt.Sprintf(`%s %s`, quoteIdent(col.Name), typ)
	if col.NotNull || col.Primary {
		stmt += " NOT NULL"
	} else {
		stmt += " NULL"
	}
	if col.Primary {
		stmt += " PRIMARY KEY"
		if col.Type == schema.TypeSerial {
			stmt += " AUTOINCREMENT"
		}
	} else if col.Unique {
		stmt += " UNIQUE"
	}
	if col.ForeignKey != nil {
		stmt += foreignKeyClause(col.ForeignKey)
	}
	return stmt, nil
}

func (d SQLiteDialect) createTable(table string, cols []schema.Column) (string, error) {
	defs := make([]string, 0, len(cols))
	for _, col := range cols {
		def, err := d.columnDefinition(col)
		if err != nil {
			return "", fmt.Errorf("column %s: %v", col.Name, err)
		}
		defs = append(defs, def)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s);", quoteIdent(table), strings.Join(defs, ", ")), nil
}

func (d SQLiteDialect) CreateTable(m schema.Model) ([]string, error) {
	stmt, err := d.createTable(m.TableName, m.Columns)
	if err != nil {
		return nil, err
	}
	return []string{stmt}, nil
}

func (d SQLiteDialect) AddColumn(from, to schema.Model, col schema.Column) ([]string, error) {
	// Nullable columns without a default can be appended directly.
	if !col.NotNull && !col.Primary && !col.Unique && col.Default == nil {
		def, err := d.columnDefinition(col)
		if err != nil {
			return nil, err
		}
		return []string{fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s;", quoteIdent(to.TableName), def)}, nil
	}
	if col.NotNull && col.Default == nil {
		return nil, fmt.Errorf("column %s is NOT NULL and has no default for existing rows", col.Name)
	}
	return d.remakeTable(from, to)
}

func (d SQLiteDialect) AlterColumn(from, to schema.Model, old, updated schema.Column) ([]string, error) {
	if old.Name != updated.Name {
		return nil, fmt.Errorf("renaming %s to %s is not supported by alter", old.Name, updated.Name)
	}
	return d.remakeTable(from, to)
}

// remakeTable creates new__<table> from the target model, copies rows from the
// current table, drops it and renames the copy into place. Columns that only
// exist in the target are filled with their default; columns that become
// NOT NULL have NULLs replaced by their default.
func (d SQLiteDialect) remakeTable(from, to schema.Model) ([]string, error) {
	tmp := "new__" + to.TableName
	create, err := d.createTable(tmp, to.Columns)
	if err != nil {
		return nil, err
	}

	var selects []string
	for _, col := range to.Columns {
		old, existed := from.Column(col.Name)
		switch {
		case !existed && col.Default != nil:
			lit, err := literal(col)
			if err != nil {
				return nil, err
			}
			selects = append(selects, lit)
		case !existed:
			selects = append(selects, "NULL")
		case col.NotNull && !old.NotNull && col.Default != nil:
			lit, err := literal(col)
			if err != nil {
				return nil, err
			}
			selects = append(selects, fmt.Sprintf("coalesce(%s, %s)", quoteIdent(col.Name), lit))
		default:
			selects = append(selects, quoteIdent(col.Name))
		}
	}

	return []string{
		create,
		fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s;",
			quoteIdent(tmp), strings.Join(columnNames(to.Columns), ", "),
			strings.Join(selects, ", "), quoteIdent(from.TableName)),
		fmt.Sprintf("DROP TABLE %s;", quoteIdent(from.TableName)),
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s;", quoteIdent(tmp), quoteIdent(to.TableName)),
	}, nil
}
