package catalog

import (
	"fmt"

	"flint/internal/index"
	"flint/value"
)

// Row is a single stored row: a mapping from column name to its cell
// value. Every column declared by the owning schema has an entry,
// even when its value is null.
type Row map[string]value.Value

// Table is the live state of one table: its schema, its row vector in
// insertion order, an index for every unique-constrained column, and
// the next value the auto-increment column (the primary key, when it
// is an integer column) will receive.
type Table struct {
	Schema        Schema
	Rows          []Row
	Indexes       map[string]*index.Index // column name -> index
	AutoIncrement int64
}

// NewTable builds an empty table for schema, with a unique index
// pre-created for every column schema.UniqueColumns names.
func NewTable(schema Schema) *Table {
	t := &Table{
		Schema:        schema,
		Indexes:       make(map[string]*index.Index, len(schema.UniqueColumns)),
		AutoIncrement: 1,
	}
	for name := range schema.UniqueColumns {
		t.Indexes[name] = index.New(true)
	}
	return t
}

// ValidateRow checks row against the not-null and varchar-length
// constraints declared on the schema (invariants I2 and I4). It does
// not check uniqueness; that is enforced by the per-column indexes at
// insert/update time, since it requires seeing the rest of the table.
func (t *Table) ValidateRow(row Row) error {
	for _, col := range t.Schema.Columns {
		v, ok := row[col.Name]
		if !ok {
			return fmt.Errorf("row is missing column %q", col.Name)
		}
		if err := validateNotNull(col, v); err != nil {
			return err
		}
		if err := validateVarcharLength(col, v); err != nil {
			return err
		}
		if err := validateKind(col, v); err != nil {
			return err
		}
	}
	return nil
}

func validateNotNull(col Column, v value.Value) error {
	if col.NotNull && v.IsNull() {
		return fmt.Errorf("column %q is NOT NULL", col.Name)
	}
	return nil
}

func validateVarcharLength(col Column, v value.Value) error {
	if col.Type != TypeVarchar || col.MaxLength <= 0 || v.IsNull() {
		return nil
	}
	if len(v.Str()) > col.MaxLength {
		return fmt.Errorf("value for column %q exceeds VARCHAR(%d)", col.Name, col.MaxLength)
	}
	return nil
}

func validateKind(col Column, v value.Value) error {
	if v.IsNull() {
		return nil
	}
	var ok bool
	switch col.Type {
	case TypeInteger:
		ok = v.Kind() == value.Int
	case TypeVarchar:
		ok = v.Kind() == value.String
	case TypeBoolean:
		ok = v.Kind() == value.Bool
	case TypeTimestamp:
		// A timestamp column accepts either a true timestamp value or a
		// string; the engine does not attempt to parse the string
		// further (spec §4.5, INSERT step 2).
		ok = v.Kind() == value.Timestamp || v.Kind() == value.String
	}
	if !ok {
		return fmt.Errorf("value for column %q does not match declared type %s", col.Name, col.Type)
	}
	return nil
}

// CheckUnique verifies that row does not collide with an existing row
// on any unique-constrained column. skipRow, when >= 0, is a row
// position to ignore during the check (used by UPDATE, which must not
// reject a row for colliding with its own prior value).
func (t *Table) CheckUnique(row Row, skipRow int) error {
	for name, idx := range t.Indexes {
		if !idx.Unique() {
			continue
		}
		v := row[name]
		if v.IsNull() {
			continue
		}
		for _, pos := range idx.Search(v) {
			if pos != skipRow {
				return fmt.Errorf("duplicate value for unique column %q", name)
			}
		}
	}
	return nil
}

// AppendRow appends row to the table's row vector, indexes it under
// every unique column, and returns the new row's position. A null
// value is never posted to an index, matching ReindexFrom.
func (t *Table) AppendRow(row Row) int {
	pos := len(t.Rows)
	t.Rows = append(t.Rows, row)
	for name, idx := range t.Indexes {
		if v := row[name]; !v.IsNull() {
			_ = idx.Insert(v, pos) // uniqueness already verified by CheckUnique
		}
	}
	return pos
}

// NextAutoIncrement returns the next auto-increment value and advances
// the counter.
func (t *Table) NextAutoIncrement() int64 {
	v := t.AutoIncrement
	t.AutoIncrement++
	return v
}

// ReindexFrom rebuilds every index from the current row vector,
// starting at position 0. Used after a DELETE compacts the row vector
// and shifts every following row's position.
func (t *Table) ReindexFrom() {
	for name, idx := range t.Indexes {
		pairs := make([]index.Pair, 0, len(t.Rows))
		for pos, row := range t.Rows {
			v := row[name]
			if v.IsNull() {
				continue
			}
			pairs = append(pairs, index.Pair{Value: v, Position: pos})
		}
		idx.Rebuild(pairs)
	}
}
