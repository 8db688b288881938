package catalog

import "fmt"

// Catalog is the process-wide table store: the map from table name to
// live table state, plus the insertion order names were first created
// in (list_table_names is defined to return that order, not map
// iteration order, which Go does not guarantee is stable).
type Catalog struct {
	tables map[string]*Table
	order  []string
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{tables: make(map[string]*Table)}
}

// Create registers a new table under schema.Name. It fails if a table
// by that name already exists (invariant I1).
func (c *Catalog) Create(schema Schema) error {
	if _, exists := c.tables[schema.Name]; exists {
		return fmt.Errorf("table %q already exists", schema.Name)
	}
	c.tables[schema.Name] = NewTable(schema)
	c.order = append(c.order, schema.Name)
	return nil
}

// Table returns the live state for name, and whether it exists.
func (c *Catalog) Table(name string) (*Table, bool) {
	t, ok := c.tables[name]
	return t, ok
}

// Schema returns the schema for name, and whether it exists.
func (c *Catalog) Schema(name string) (Schema, bool) {
	t, ok := c.tables[name]
	if !ok {
		return Schema{}, false
	}
	return t.Schema, true
}

// Drop removes a table and its data. It reports whether the table
// existed.
func (c *Catalog) Drop(name string) bool {
	if _, ok := c.tables[name]; !ok {
		return false
	}
	delete(c.tables, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// ListTableNames returns every table name in the order the tables were
// created.
func (c *Catalog) ListTableNames() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// RowCount returns the number of rows in table name, and whether the
// table exists.
func (c *Catalog) RowCount(name string) (int, bool) {
	t, ok := c.tables[name]
	if !ok {
		return 0, false
	}
	return len(t.Rows), true
}
