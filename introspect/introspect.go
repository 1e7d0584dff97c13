package introspect

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ridoystarlord/schedmigrate/generator"
)

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type ExistingTable struct {
	TableName string
	Columns   []ExistingColumn
}

type ExistingColumn struct {
	ColumnName    string
	DataType      string
	IsNullable    bool
	ColumnDefault *string
	IsPrimaryKey  bool
}

// Column looks up a column by name.
func (t ExistingTable) Column(name string) (ExistingColumn, bool) {
	for _, c := range t.Columns {
		if c.ColumnName == name {
			return c, true
		}
	}
	return ExistingColumn{}, false
}

// Inspector reads the live catalog of one database.
type Inspector struct {
	q       Querier
	dialect string
}

func NewInspector(q Querier, dialect string) *Inspector {
	return &Inspector{q: q, dialect: dialect}
}

// TableNames lists user tables in the current schema.
func (i *Inspector) TableNames(ctx context.Context) ([]string, error) {
	var query string
	switch i.dialect {
	case generator.Postgres:
		query = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'
		ORDER BY table_name;`
	case generator.SQLite:
		query = `
		SELECT name
		FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name;`
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", i.dialect)
	}

	rows, err := i.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating table rows: %w", err)
	}
	return names, nil
}

// Table returns the table definition, or nil when it does not exist.
func (i *Inspector) Table(ctx context.Context, name string) (*ExistingTable, error) {
	columns, err := i.columns(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("getting columns for table %s: %w", name, err)
	}
	if len(columns) == 0 {
		return nil, nil
	}
	return &ExistingTable{TableName: name, Columns: columns}, nil
}

// Introspect returns every user table with its columns.
func (i *Inspector) Introspect(ctx context.Context) ([]ExistingTable, error) {
	names, err := i.TableNames(ctx)
	if err != nil {
		return nil, err
	}
	var tables []ExistingTable
	for _, name := range names {
		columns, err := i.columns(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("getting columns for table %s: %w", name, err)
		}
		tables = append(tables, ExistingTable{TableName: name, Columns: columns})
	}
	return tables, nil
}

func (i *Inspector) TableExists(ctx context.Context, table string) (bool, error) {
	t, err := i.Table(ctx, table)
	if err != nil {
		return false, err
	}
	return t != nil, nil
}

func (i *Inspector) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	t, err := i.Table(ctx, table)
	if err != nil || t == nil {
		return false, err
	}
	_, ok := t.Column(column)
	return ok, nil
}

func (i *Inspector) columns(ctx context.Context, table string) ([]ExistingColumn, error) {
	switch i.dialect {
	case generator.Postgres:
		return i.postgresColumns(ctx, table)
	case generator.SQLite:
		return i.sqliteColumns(ctx, table)
	}
	return nil, fmt.Errorf("unsupported dialect: %s", i.dialect)
}

func (i *Inspector) postgresColumns(ctx context.Context, table string) ([]ExistingColumn, error) {
	columnsQuery := `
	SELECT
		c.column_name,
		c.data_type,
		(c.is_nullable = 'YES') AS is_nullable,
		c.column_default,
		EXISTS (
			SELECT 1
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
				ON kcu.constraint_name = tc.constraint_name
				AND kcu.table_schema = tc.table_schema
			WHERE tc.constraint_type = 'PRIMARY KEY'
				AND tc.table_schema = c.table_schema
				AND tc.table_name = c.table_name
				AND kcu.column_name = c.column_name
		) AS is_primary
	FROM information_schema.columns c
	WHERE c.table_schema = current_schema() AND c.table_name = $1
	ORDER BY c.ordinal_position;
	`

	rows, err := i.q.QueryContext(ctx, columnsQuery, table)
	if err != nil {
		return nil, fmt.Errorf("querying columns: %w", err)
	}
	defer rows.Close()

	var columns []ExistingColumn
	for rows.Next() {
		var col ExistingColumn
		var def sql.NullString
		if err := rows.Scan(&col.ColumnName, &col.DataType, &col.IsNullable, &def, &col.IsPrimaryKey); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		if def.Valid {
			col.ColumnDefault = &def.String
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating column rows: %w", err)
	}
	return columns, nil
}

func (i *Inspector) sqliteColumns(ctx context.Context, table string) ([]ExistingColumn, error) {
	rows, err := i.q.QueryContext(ctx, `SELECT name, type, "notnull", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid;`, table)
	if err != nil {
		return nil, fmt.Errorf("querying columns: %w", err)
	}
	defer rows.Close()

	var columns []ExistingColumn
	for rows.Next() {
		var (
			col     ExistingColumn
			notNull int
			def     sql.NullString
			pk      int
		)
		if err := rows.Scan(&col.ColumnName, &col.DataType, &notNull, &def, &pk); err != nil {
			return nil, fmt.Errorf("scanning column: %w", err)
		}
		col.IsNullable = notNull == 0
		col.IsPrimaryKey = pk > 0
		if def.Valid {
			col.ColumnDefault = &def.String
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating column rows: %w", err)
	}
	return columns, nil
}
