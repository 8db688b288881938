package executor

import (
	"fmt"
	"sort"

	"flint/internal/catalog"
	"flint/internal/queryparser"
	"flint/value"
)

// execRow is one row flowing through a SELECT pipeline: every column
// is reachable both by its bare name and by "table.column", in the
// order those keys were first populated. basePos is the row's
// position in the FROM table's row vector, or -1 once the row has
// been produced or touched by a join (joined rows are not
// index-eligible).
type execRow struct {
	order   []string
	cells   map[string]value.Value
	basePos int
}

func newExecRow(basePos int) execRow {
	return execRow{cells: make(map[string]value.Value), basePos: basePos}
}

func (r *execRow) set(key string, v value.Value) {
	if _, exists := r.cells[key]; !exists {
		r.order = append(r.order, key)
	}
	r.cells[key] = v
}

// baseRows builds the initial row sequence for a table: each row
// exposed under both its bare column names and its tableName-qualified
// names, per §4.4.1.
func baseRows(tableName string, tbl *catalog.Table) []execRow {
	out := make([]execRow, len(tbl.Rows))
	for i, row := range tbl.Rows {
		r := newExecRow(i)
		for _, col := range tbl.Schema.Columns {
			v := row[col.Name]
			r.set(col.Name, v)
			r.set(tableName+"."+col.Name, v)
		}
		out[i] = r
	}
	return out
}

func (e *Executor) selectRows(stmt *queryparser.SelectStmt) Result {
	tbl, ok := e.catalog.Table(stmt.Table)
	if !ok {
		return errResult(fmt.Errorf("unknown table %q", stmt.Table))
	}

	rows := baseRows(stmt.Table, tbl)
	if stmt.Where != nil {
		rows = applyIndexAssist(tbl, stmt.Table, rows, stmt.Where)
	}

	for _, j := range stmt.Joins {
		rightTbl, ok := e.catalog.Table(j.Table)
		if !ok {
			return errResult(fmt.Errorf("unknown table %q in JOIN", j.Table))
		}
		rows = applyJoin(rows, j, rightTbl)
	}

	if stmt.Where != nil {
		filtered := make([]execRow, 0, len(rows))
		for _, r := range rows {
			ok, err := evalWhere(r.cells, stmt.Where)
			if err != nil {
				return errResult(err)
			}
			if ok {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	if stmt.OrderBy != "" {
		sortRows(rows, stmt.OrderBy, stmt.OrderDesc)
	}
	if stmt.Limit >= 0 && stmt.Limit < len(rows) {
		rows = rows[:stmt.Limit]
	}

	isStar := len(stmt.Columns) == 1 && stmt.Columns[0] == "*"
	cols := stmt.Columns
	if isStar {
		cols = nil
		if len(rows) > 0 {
			cols = append([]string{}, rows[0].order...)
		}
	}

	data := make([]map[string]value.Value, len(rows))
	for i, r := range rows {
		projected := make(map[string]value.Value, len(cols))
		for _, name := range cols {
			if v, ok := r.cells[name]; ok {
				projected[name] = v
			}
		}
		data[i] = projected
	}

	return Result{Success: true, Columns: cols, Rows: data, AffectedRows: len(data)}
}

// applyIndexAssist narrows rows to the posting list of the first
// equality condition on an indexed base-table column, per §4.4.2. The
// general filter loop re-checks every condition afterward, so this is
// purely an optimization: it never changes the final answer. A clause
// with any OR connective is left unnarrowed, since a row can satisfy it
// without satisfying that equality.
func applyIndexAssist(tbl *catalog.Table, tableName string, rows []execRow, where *queryparser.WhereClause) []execRow {
	for _, conn := range where.Connectives {
		if conn == "OR" {
			return rows
		}
	}
	for _, c := range where.Conditions {
		if c.Op != "=" || c.Left.Table != "" && c.Left.Table != tableName {
			continue
		}
		idx, ok := tbl.Indexes[c.Left.Column]
		if !ok {
			continue
		}
		positions := idx.Search(c.Right.Literal)
		byPos := make(map[int]execRow, len(positions))
		for _, r := range rows {
			byPos[r.basePos] = r
		}
		reduced := make([]execRow, 0, len(positions))
		for _, p := range positions {
			if r, ok := byPos[p]; ok {
				reduced = append(reduced, r)
			}
		}
		return reduced
	}
	return rows
}

// joinSides resolves which half of a JOIN's ON clause refers to the
// already-accumulated row sequence and which refers to the table
// being newly joined in, regardless of the order they were written.
func joinSides(j queryparser.JoinClause) (leftKey, rightColumn string) {
	if j.LeftTable == j.Table {
		return j.RightTable + "." + j.RightColumn, j.LeftColumn
	}
	return j.LeftTable + "." + j.LeftColumn, j.RightColumn
}

func applyJoin(leftRows []execRow, j queryparser.JoinClause, rightTbl *catalog.Table) []execRow {
	leftKey, rightColumn := joinSides(j)

	var leftTemplate []string
	if len(leftRows) > 0 {
		leftTemplate = leftRows[0].order
	}

	var out []execRow
	matchedRight := make([]bool, len(rightTbl.Rows))

	for _, lr := range leftRows {
		lv, hasLeft := lr.cells[leftKey]
		matched := false
		if hasLeft && !lv.IsNull() {
			for pos, rr := range rightTbl.Rows {
				rv := rr[rightColumn]
				if rv.IsNull() || !value.Equal(lv, rv) {
					continue
				}
				matched = true
				matchedRight[pos] = true
				out = append(out, combineRows(lr, j.Table, rightTbl, rr))
			}
		}
		if !matched {
			switch j.Kind {
			case queryparser.LeftJoin:
				out = append(out, leftOnlyRow(lr, j.Table, rightTbl.Schema))
			case queryparser.InnerJoin, queryparser.RightJoin:
				// INNER drops the unmatched left row outright. RIGHT
				// is implemented as the true symmetric of LEFT (see
				// the open-question resolution), so its unmatched
				// left rows are dropped here and its unmatched right
				// rows are added back in below.
			}
		}
	}

	if j.Kind == queryparser.RightJoin {
		for pos, rr := range rightTbl.Rows {
			if matchedRight[pos] {
				continue
			}
			out = append(out, rightOnlyRow(leftTemplate, j.Table, rightTbl, rr))
		}
	}

	return out
}

func combineRows(lr execRow, rightTableName string, rightTbl *catalog.Table, rr catalog.Row) execRow {
	out := newExecRow(-1)
	out.order = append(out.order, lr.order...)
	out.cells = make(map[string]value.Value, len(lr.cells)+len(rr)*2)
	for k, v := range lr.cells {
		out.cells[k] = v
	}
	for _, col := range rightTbl.Schema.Columns {
		v := rr[col.Name]
		out.set(rightTableName+"."+col.Name, v)
		if _, exists := out.cells[col.Name]; !exists {
			out.set(col.Name, v)
		}
	}
	return out
}

func leftOnlyRow(lr execRow, rightTableName string, rightSchema catalog.Schema) execRow {
	out := newExecRow(-1)
	out.order = append(out.order, lr.order...)
	out.cells = make(map[string]value.Value, len(lr.cells)+len(rightSchema.Columns)*2)
	for k, v := range lr.cells {
		out.cells[k] = v
	}
	for _, col := range rightSchema.Columns {
		out.set(rightTableName+"."+col.Name, value.NewNull())
		if _, exists := out.cells[col.Name]; !exists {
			out.set(col.Name, value.NewNull())
		}
	}
	return out
}

func rightOnlyRow(leftTemplate []string, rightTableName string, rightTbl *catalog.Table, rr catalog.Row) execRow {
	out := newExecRow(-1)
	for _, k := range leftTemplate {
		out.set(k, value.NewNull())
	}
	for _, col := range rightTbl.Schema.Columns {
		v := rr[col.Name]
		out.set(rightTableName+"."+col.Name, v)
		out.set(col.Name, v)
	}
	return out
}

func sortRows(rows []execRow, col string, desc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		c := value.Compare(rows[i].cells[col], rows[j].cells[col])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// rowCells builds the bare-and-qualified cell map for a single
// non-joined table row, used by UPDATE/DELETE's WHERE evaluation.
func rowCells(tableName string, row catalog.Row) map[string]value.Value {
	cells := make(map[string]value.Value, len(row)*2)
	for k, v := range row {
		cells[k] = v
		cells[tableName+"."+k] = v
	}
	return cells
}

func matchingPositions(tbl *catalog.Table, tableName string, where *queryparser.WhereClause) ([]int, error) {
	var out []int
	for pos, row := range tbl.Rows {
		if where == nil {
			out = append(out, pos)
			continue
		}
		ok, err := evalWhere(rowCells(tableName, row), where)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, pos)
		}
	}
	return out, nil
}

// evalWhere folds a flat condition sequence strictly left to right
// with no operator precedence, per §4.4.2.
func evalWhere(cells map[string]value.Value, where *queryparser.WhereClause) (bool, error) {
	result := evalCondition(cells, where.Conditions[0])
	for i, conn := range where.Connectives {
		next := evalCondition(cells, where.Conditions[i+1])
		switch conn {
		case "AND":
			result = result && next
		case "OR":
			result = result || next
		default:
			return false, fmt.Errorf("executor: unknown connective %q", conn)
		}
	}
	return result, nil
}

func evalCondition(cells map[string]value.Value, c queryparser.Condition) bool {
	key := c.Left.Column
	if c.Left.Table != "" {
		key = c.Left.Table + "." + c.Left.Column
	}
	left, ok := cells[key]
	if !ok {
		left = value.NewNull()
	}
	right := c.Right.Literal

	switch c.Op {
	case "=":
		return value.Equal(left, right)
	case "!=":
		return !value.Equal(left, right)
	case "LIKE":
		return value.Like(left, right)
	case "<", ">", "<=", ">=":
		if left.IsNull() || right.IsNull() || left.Kind() != right.Kind() {
			return false
		}
		cmp := value.Compare(left, right)
		switch c.Op {
		case "<":
			return cmp < 0
		case ">":
			return cmp > 0
		case "<=":
			return cmp <= 0
		default:
			return cmp >= 0
		}
	default:
		return false
	}
}
