// Package executor dispatches a parsed statement against the catalog
// and produces a Result. Grounded on the teacher repo's apply package
// (internal/apply/apply.go): a single entry point that validates every
// candidate mutation before touching shared state, so a rejected
// mutation never leaves partial changes behind, generalized from an
// Options/PreflightResult-shaped migration applier into direct
// row/index mutation against an in-memory table.
package executor

import (
	"context"
	"fmt"

	"flint/internal/catalog"
	"flint/internal/config"
	"flint/internal/queryparser"
	"flint/value"
)

// Result is the outcome of executing one statement. Exactly one of
// the two shapes is populated: on success, Columns/Rows/AffectedRows
// (for SELECT, AffectedRows being the row count) or
// Message/AffectedRows (for everything else); on failure, Error.
type Result struct {
	Success      bool
	Columns      []string
	Rows         []map[string]value.Value
	Message      string
	AffectedRows int
	Error        string
}

func errResult(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

// Executor runs statements against a single catalog, under the policy
// cfg validated (the VARCHAR default length a bare VARCHAR column
// falls back to; collation and strict-coercion are fixed engine
// policy, not branched on, but cfg.validate already rejected any
// session that asked for something else).
type Executor struct {
	catalog *catalog.Catalog
	cfg     config.Config
}

// New returns an Executor bound to c, applying cfg's session policy.
func New(c *catalog.Catalog, cfg config.Config) *Executor {
	return &Executor{catalog: c, cfg: cfg}
}

// Execute runs one parsed statement to completion. There is no
// internal suspension: the call either returns a Result or the ctx
// was already done when execution started.
func (e *Executor) Execute(ctx context.Context, stmt *queryparser.Statement) Result {
	if err := ctx.Err(); err != nil {
		return errResult(err)
	}
	switch stmt.Kind {
	case queryparser.CreateTable:
		return e.createTable(stmt.Create)
	case queryparser.Insert:
		return e.insert(stmt.Insert)
	case queryparser.Select:
		return e.selectRows(stmt.Select)
	case queryparser.Update:
		return e.update(stmt.Update)
	case queryparser.Delete:
		return e.delete(stmt.Delete)
	case queryparser.DropTable:
		return e.dropTable(stmt.Drop)
	default:
		return errResult(fmt.Errorf("executor: unrecognized statement kind"))
	}
}

func (e *Executor) createTable(stmt *queryparser.CreateTableStmt) Result {
	cols := make([]catalog.Column, 0, len(stmt.Columns))
	for _, c := range stmt.Columns {
		t, ok := catalog.ParseColumnType(c.Type)
		if !ok {
			return errResult(fmt.Errorf("column %q has unrecognized type %q", c.Name, c.Type))
		}
		maxLength := c.MaxLength
		if t == catalog.TypeVarchar && maxLength <= 0 {
			maxLength = e.cfg.DefaultVarcharMax
		}
		cols = append(cols, catalog.Column{
			Name:       c.Name,
			Type:       t,
			MaxLength:  maxLength,
			PrimaryKey: c.PrimaryKey,
			Unique:     c.Unique,
			NotNull:    c.NotNull,
		})
	}
	schema, err := catalog.NewSchema(stmt.Table, cols)
	if err != nil {
		return errResult(err)
	}
	if err := e.catalog.Create(schema); err != nil {
		return errResult(err)
	}
	return Result{Success: true, Message: fmt.Sprintf("table %q created", stmt.Table)}
}

func (e *Executor) insert(stmt *queryparser.InsertStmt) Result {
	tbl, ok := e.catalog.Table(stmt.Table)
	if !ok {
		return errResult(fmt.Errorf("unknown table %q", stmt.Table))
	}
	if len(stmt.Columns) != len(stmt.Values) {
		return errResult(fmt.Errorf("column count (%d) does not match value count (%d)", len(stmt.Columns), len(stmt.Values)))
	}

	row := make(catalog.Row, len(tbl.Schema.Columns))
	for _, col := range tbl.Schema.Columns {
		row[col.Name] = value.NewNull()
	}
	for i, name := range stmt.Columns {
		if !tbl.Schema.HasColumn(name) {
			return errResult(fmt.Errorf("unknown column %q in table %q", name, stmt.Table))
		}
		row[name] = stmt.Values[i]
	}

	if tbl.Schema.PrimaryKey != "" {
		pkCol, _ := tbl.Schema.Column(tbl.Schema.PrimaryKey)
		if pkCol.Type == catalog.TypeInteger {
			switch pk := row[pkCol.Name]; {
			case pk.IsNull():
				row[pkCol.Name] = value.NewInt(tbl.NextAutoIncrement())
			case pk.Int() >= tbl.AutoIncrement:
				// An explicit primary key at or past the counter still
				// advances it, so a later auto-assigned row can never
				// collide with one a caller supplied by hand (I6).
				tbl.AutoIncrement = pk.Int() + 1
			}
		}
	}

	if err := tbl.ValidateRow(row); err != nil {
		return errResult(err)
	}
	if err := tbl.CheckUnique(row, -1); err != nil {
		return errResult(err)
	}
	tbl.AppendRow(row)
	return Result{Success: true, Message: fmt.Sprintf("1 row inserted into %q", stmt.Table), AffectedRows: 1}
}

func (e *Executor) update(stmt *queryparser.UpdateStmt) Result {
	tbl, ok := e.catalog.Table(stmt.Table)
	if !ok {
		return errResult(fmt.Errorf("unknown table %q", stmt.Table))
	}
	for _, a := range stmt.Assignments {
		if !tbl.Schema.HasColumn(a.Column) {
			return errResult(fmt.Errorf("unknown column %q in table %q", a.Column, stmt.Table))
		}
	}

	positions, err := matchingPositions(tbl, stmt.Table, stmt.Where)
	if err != nil {
		return errResult(err)
	}

	// Pre-validate every candidate row before mutating anything: an
	// index collision discovered on row k must not leave rows before
	// it already updated (P3). CheckUnique alone is not enough here:
	// it is checked against the not-yet-mutated index, so two matched
	// rows assigned the same literal would each individually pass (the
	// value isn't in the index yet under either position) even though
	// applying both would leave a duplicate live in a UNIQUE column.
	// checkBatchCollisions below catches that intra-batch case.
	candidates := make(map[int]catalog.Row, len(positions))
	for _, pos := range positions {
		candidate := make(catalog.Row, len(tbl.Rows[pos]))
		for k, v := range tbl.Rows[pos] {
			candidate[k] = v
		}
		for _, a := range stmt.Assignments {
			candidate[a.Column] = a.Value
		}
		if err := tbl.ValidateRow(candidate); err != nil {
			return errResult(err)
		}
		if err := tbl.CheckUnique(candidate, pos); err != nil {
			return errResult(err)
		}
		candidates[pos] = candidate
	}
	if err := checkBatchCollisions(tbl, positions, candidates); err != nil {
		return errResult(err)
	}

	for _, pos := range positions {
		row := tbl.Rows[pos]
		for _, a := range stmt.Assignments {
			if idx, ok := tbl.Indexes[a.Column]; ok {
				old := row[a.Column]
				if !value.Equal(old, a.Value) {
					// Nulls are never posted to an index (matching
					// AppendRow/ReindexFrom), so only remove/insert the
					// sides of the change that are non-null.
					if !old.IsNull() {
						idx.Remove(old, pos)
					}
					if !a.Value.IsNull() {
						_ = idx.Insert(a.Value, pos) // uniqueness already verified above
					}
				}
			}
			row[a.Column] = a.Value
		}
	}

	return Result{Success: true, Message: fmt.Sprintf("%d row(s) updated in %q", len(positions), stmt.Table), AffectedRows: len(positions)}
}

// checkBatchCollisions rejects an UPDATE whose candidate rows would
// leave two distinct matched positions holding an equal value in the
// same UNIQUE column — a collision CheckUnique cannot see on its own,
// since every candidate is checked against the index before any of
// them have been mutated into it.
func checkBatchCollisions(tbl *catalog.Table, positions []int, candidates map[int]catalog.Row) error {
	for name := range tbl.Schema.UniqueColumns {
		for i, pi := range positions {
			vi := candidates[pi][name]
			if vi.IsNull() {
				continue
			}
			for _, pj := range positions[i+1:] {
				if vj := candidates[pj][name]; !vj.IsNull() && value.Equal(vi, vj) {
					return fmt.Errorf("update would assign duplicate value for unique column %q to rows %d and %d", name, pi, pj)
				}
			}
		}
	}
	return nil
}

func (e *Executor) delete(stmt *queryparser.DeleteStmt) Result {
	tbl, ok := e.catalog.Table(stmt.Table)
	if !ok {
		return errResult(fmt.Errorf("unknown table %q", stmt.Table))
	}
	positions, err := matchingPositions(tbl, stmt.Table, stmt.Where)
	if err != nil {
		return errResult(err)
	}
	if len(positions) == 0 {
		return Result{Success: true, Message: fmt.Sprintf("0 row(s) deleted from %q", stmt.Table)}
	}

	descending := append([]int(nil), positions...)
	for i, j := 0, len(descending)-1; i < j; i, j = i+1, j-1 {
		descending[i], descending[j] = descending[j], descending[i]
	}
	for _, p := range descending {
		tbl.Rows = append(tbl.Rows[:p], tbl.Rows[p+1:]...)
	}
	// Row positions shifted under every surviving row; rebuilding is
	// simpler and no less correct than patching each index in place.
	tbl.ReindexFrom()

	return Result{Success: true, Message: fmt.Sprintf("%d row(s) deleted from %q", len(positions), stmt.Table), AffectedRows: len(positions)}
}

func (e *Executor) dropTable(stmt *queryparser.DropTableStmt) Result {
	if !e.catalog.Drop(stmt.Table) {
		return errResult(fmt.Errorf("unknown table %q", stmt.Table))
	}
	return Result{Success: true, Message: fmt.Sprintf("table %q dropped", stmt.Table)}
}
