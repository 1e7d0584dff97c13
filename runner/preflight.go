package runner

import (
	"context"

	"github.com/ridoystarlord/schedmigrate/migration"
	"github.com/ridoystarlord/schedmigrate/schema"
)

// stagedCatalog answers catalog questions as they will stand once the earlier
// operations of the same descriptor have run. Every operation is checked
// before any DDL executes, so a rebuilt table cannot hide a stray column from
// a later check.
type stagedCatalog struct {
	live    migration.Inspector
	tables  map[string]bool
	columns map[string]bool
}

func newStagedCatalog(live migration.Inspector) *stagedCatalog {
	return &stagedCatalog{
		live:    live,
		tables:  map[string]bool{},
		columns: map[string]bool{},
	}
}

func (c *stagedCatalog) TableExists(ctx context.Context, table string) (bool, error) {
	if c.tables[table] {
		return true, nil
	}
	return c.live.TableExists(ctx, table)
}

func (c *stagedCatalog) ColumnExists(ctx context.Context, table, column string) (bool, error) {
	if c.columns[table+"."+column] {
		return true, nil
	}
	return c.live.ColumnExists(ctx, table, column)
}

// stage records the tables and columns present in after but not in before.
func (c *stagedCatalog) stage(before, after *schema.State) {
	existing := map[string]schema.Model{}
	for _, m := range before.Models() {
		existing[m.TableName] = m
	}
	for _, m := range after.Models() {
		prev, ok := existing[m.TableName]
		if !ok {
			c.tables[m.TableName] = true
		}
		for _, col := range m.Columns {
			if _, had := prev.Column(col.Name); !had {
				c.columns[m.TableName+"."+col.Name] = true
			}
		}
	}
}
