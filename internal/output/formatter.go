// Package output renders an executor.Result for a human or a script.
// Grounded on the teacher repo's output package: a Format enum, a
// Formatter interface, and a NewFormatter(name) dispatch constructor,
// adapted from formatting a schema diff/migration to formatting a
// query result.
package output

import (
	"fmt"
	"strings"

	"flint/internal/executor"
)

// Format is an enum of the available result renderings.
type Format string

const (
	FormatTable   Format = "table"
	FormatJSON    Format = "json"
	FormatSummary Format = "summary"
)

// Formatter renders an executor.Result as text.
type Formatter interface {
	Format(executor.Result) (string, error)
}

// NewFormatter creates a Formatter for the named format. An empty name
// defaults to table.
func NewFormatter(name string) (Formatter, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	switch format {
	case "", FormatTable:
		return tableFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	case FormatSummary:
		return summaryFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s; use 'table', 'json', or 'summary'", name)
	}
}
