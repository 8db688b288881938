// Package flint is an embeddable in-memory relational engine: a small
// SQL-like dialect over a B-tree-indexed catalog. Grounded on the
// teacher repo's layered design (core model, parser, applier) but
// exposed as a single entry type so a caller never touches the
// internal packages directly.
package flint

import (
	"context"

	"flint/internal/catalog"
	"flint/internal/config"
	"flint/internal/executor"
	"flint/internal/queryparser"
)

// Result is the outcome of executing one statement.
type Result = executor.Result

// Config is the session policy an Engine runs under: the VARCHAR
// default length, and the collation/strict-coercion fixed-policy
// values config.Load validates against.
type Config = config.Config

// Engine is one in-memory database instance: a catalog of tables plus
// the executor bound to it. An Engine is not safe for concurrent use
// from multiple goroutines without external synchronization, matching
// the catalog and table types it wraps.
type Engine struct {
	catalog  *catalog.Catalog
	executor *executor.Executor
}

// New returns an empty Engine with no tables, running under the
// default session policy (see config.Default).
func New() *Engine {
	return NewWithConfig(config.Default())
}

// NewWithConfig returns an empty Engine with no tables, running under
// the given session policy.
func NewWithConfig(cfg Config) *Engine {
	c := catalog.New()
	return &Engine{
		catalog:  c,
		executor: executor.New(c, cfg),
	}
}

// Execute parses and runs a single statement. A parse error is
// surfaced the same way an execution-time error is: a Result with
// Success false and Error set, never a Go error return, so callers
// have one failure shape to check regardless of where the statement
// was rejected.
func (e *Engine) Execute(ctx context.Context, sql string) Result {
	if err := ctx.Err(); err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	stmt, err := queryparser.Parse(sql)
	if err != nil {
		return Result{Success: false, Error: err.Error()}
	}
	return e.executor.Execute(ctx, stmt)
}

// ListTableNames returns every table name in the order it was
// created.
func (e *Engine) ListTableNames() []string {
	return e.catalog.ListTableNames()
}

// GetSchema returns the schema for name, and whether it exists.
func (e *Engine) GetSchema(name string) (catalog.Schema, bool) {
	return e.catalog.Schema(name)
}

// GetRowCount returns the row count for name, or 0 when the table
// does not exist.
func (e *Engine) GetRowCount(name string) int {
	n, ok := e.catalog.RowCount(name)
	if !ok {
		return 0
	}
	return n
}
