// Package catalog holds the process-wide mapping from table name to
// table state: schema, row vector, per-column indexes, and the
// auto-increment counter. It is the single source of truth for what
// tables exist and what shape their rows take — generalized from the
// teacher repo's schema model (Database/Table/Column/Constraint) to
// also hold live row data, not just a DDL-only description of it.
package catalog

import (
	"fmt"
	"strings"
)

// ColumnType is the closed set of declared column types.
type ColumnType int

const (
	// TypeInteger is a 64-bit signed integer column.
	TypeInteger ColumnType = iota
	// TypeVarchar is a bounded-length text column.
	TypeVarchar
	// TypeBoolean is a boolean column.
	TypeBoolean
	// TypeTimestamp is a timestamp column.
	TypeTimestamp
)

// String renders a ColumnType the way it appears in CREATE TABLE.
func (t ColumnType) String() string {
	switch t {
	case TypeInteger:
		return "INT"
	case TypeVarchar:
		return "VARCHAR"
	case TypeBoolean:
		return "BOOLEAN"
	case TypeTimestamp:
		return "TIMESTAMP"
	default:
		return "UNKNOWN"
	}
}

// ParseColumnType maps a CREATE TABLE type keyword to a ColumnType.
// Matching is case-insensitive. ok is false for an unrecognized type.
func ParseColumnType(raw string) (t ColumnType, ok bool) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "INT", "INTEGER":
		return TypeInteger, true
	case "VARCHAR":
		return TypeVarchar, true
	case "BOOLEAN", "BOOL":
		return TypeBoolean, true
	case "TIMESTAMP":
		return TypeTimestamp, true
	default:
		return 0, false
	}
}

// Column is a single column definition: name, declared type, optional
// varchar maximum length, and the constraint flags that apply to it.
type Column struct {
	Name       string
	Type       ColumnType
	MaxLength  int // > 0 only meaningful when Type == TypeVarchar
	PrimaryKey bool
	Unique     bool
	NotNull    bool
}

// Normalize applies the "primary key implies not-null and unique" rule
// from spec §3. NewSchema applies it to every column it receives.
func (c *Column) Normalize() {
	if c.PrimaryKey {
		c.NotNull = true
		c.Unique = true
	}
}

// Schema is a table's name plus its ordered column definitions, the
// name of its (at most one) primary-key column, and the set of
// unique-constrained column names, which always includes the primary
// key when one is declared.
type Schema struct {
	Name          string
	Columns       []Column
	PrimaryKey    string // "" when the table has no primary key
	UniqueColumns map[string]bool
}

// NewSchema builds a Schema from a name and column list, deriving
// PrimaryKey and UniqueColumns from each column's flags. It returns an
// error if more than one column claims the primary key.
func NewSchema(name string, columns []Column) (Schema, error) {
	s := Schema{Name: name, UniqueColumns: map[string]bool{}}
	for i := range columns {
		columns[i].Normalize()
	}
	s.Columns = columns
	for _, c := range columns {
		if c.PrimaryKey {
			if s.PrimaryKey != "" {
				return Schema{}, fmt.Errorf("table %q declares more than one primary key column (%q and %q)", name, s.PrimaryKey, c.Name)
			}
			s.PrimaryKey = c.Name
		}
		if c.Unique {
			s.UniqueColumns[c.Name] = true
		}
	}
	return s, nil
}

// Column looks up a column definition by name.
func (s Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// HasColumn reports whether name is a declared column of this schema.
func (s Schema) HasColumn(name string) bool {
	_, ok := s.Column(name)
	return ok
}
