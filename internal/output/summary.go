package output

import (
	"fmt"

	"flint/internal/executor"
)

type summaryFormatter struct{}

// Format renders a single-line summary: a row count for SELECT, or
// the statement's message and affected-row count otherwise.
func (summaryFormatter) Format(r executor.Result) (string, error) {
	if !r.Success {
		return "", fmt.Errorf("%s", r.Error)
	}
	if r.Columns != nil || r.Rows != nil {
		return fmt.Sprintf("%d row(s) returned\n", len(r.Rows)), nil
	}
	return fmt.Sprintf("%s (%d row(s) affected)\n", r.Message, r.AffectedRows), nil
}
