package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flint/internal/catalog"
	"flint/internal/config"
	"flint/internal/queryparser"
	"flint/value"
)

func newEngine() *Executor {
	return New(catalog.New(), config.Default())
}

func run(t *testing.T, e *Executor, sql string) Result {
	t.Helper()
	stmt, err := queryparser.Parse(sql)
	require.NoError(t, err, sql)
	return e.Execute(context.Background(), stmt)
}

func requireSuccess(t *testing.T, r Result) Result {
	t.Helper()
	require.True(t, r.Success, r.Error)
	return r
}

// Scenario 1: auto-increment and projection.
func TestScenarioAutoIncrementAndProjection(t *testing.T) {
	e := newEngine()
	requireSuccess(t, run(t, e, `CREATE TABLE u (id INT PRIMARY KEY, name VARCHAR(10) NOT NULL)`))
	r := requireSuccess(t, run(t, e, `INSERT INTO u (name) VALUES ('a')`))
	assert.Equal(t, 1, r.AffectedRows)
	r = requireSuccess(t, run(t, e, `INSERT INTO u (name) VALUES ('b')`))
	assert.Equal(t, 1, r.AffectedRows)

	r = requireSuccess(t, run(t, e, `SELECT id, name FROM u ORDER BY id ASC`))
	require.Len(t, r.Rows, 2)
	assert.True(t, value.Equal(value.NewInt(1), r.Rows[0]["id"]))
	assert.True(t, value.Equal(value.NewString("a"), r.Rows[0]["name"]))
	assert.True(t, value.Equal(value.NewInt(2), r.Rows[1]["id"]))
	assert.True(t, value.Equal(value.NewString("b"), r.Rows[1]["name"]))
}

// Scenario 2: uniqueness rejection.
func TestScenarioUniquenessRejection(t *testing.T) {
	e := newEngine()
	requireSuccess(t, run(t, e, `CREATE TABLE u (id INT PRIMARY KEY, e VARCHAR(50) UNIQUE)`))
	requireSuccess(t, run(t, e, `INSERT INTO u (e) VALUES ('x')`))

	r := run(t, e, `INSERT INTO u (e) VALUES ('x')`)
	require.False(t, r.Success)
	assert.Contains(t, r.Error, "unique")

	r = requireSuccess(t, run(t, e, `SELECT * FROM u`))
	assert.Len(t, r.Rows, 1)
}

// Scenario 3: indexed equality over a large table.
func TestScenarioIndexedEquality(t *testing.T) {
	e := newEngine()
	requireSuccess(t, run(t, e, `CREATE TABLE t (id INT PRIMARY KEY, v VARCHAR(10))`))
	for i := 0; i < 1000; i++ {
		requireSuccess(t, run(t, e, `INSERT INTO t (v) VALUES ('x')`))
	}
	r := requireSuccess(t, run(t, e, `SELECT * FROM t WHERE id = 777`))
	require.Len(t, r.Rows, 1)
	assert.True(t, value.Equal(value.NewInt(777), r.Rows[0]["id"]))
}

// Scenario 4: LEFT join with null fill.
func TestScenarioLeftJoinNullFill(t *testing.T) {
	e := newEngine()
	requireSuccess(t, run(t, e, `CREATE TABLE a (id INT PRIMARY KEY, name VARCHAR(10))`))
	requireSuccess(t, run(t, e, `CREATE TABLE b (aid INT, tag VARCHAR(10))`))
	requireSuccess(t, run(t, e, `INSERT INTO a (id, name) VALUES (1, 'x')`))
	requireSuccess(t, run(t, e, `INSERT INTO a (id, name) VALUES (2, 'y')`))
	requireSuccess(t, run(t, e, `INSERT INTO b (aid, tag) VALUES (1, 'X')`))

	r := requireSuccess(t, run(t, e, `SELECT * FROM a LEFT JOIN b ON a.id = b.aid`))
	require.Len(t, r.Rows, 2)

	var unmatched map[string]value.Value
	for _, row := range r.Rows {
		if value.Equal(row["a.name"], value.NewString("y")) {
			unmatched = row
		}
	}
	require.NotNil(t, unmatched)
	assert.True(t, unmatched["b.aid"].IsNull())
	assert.True(t, unmatched["b.tag"].IsNull())
}

// Scenario 5: logical connective left-associativity, no precedence.
func TestScenarioLeftAssociativeConnectives(t *testing.T) {
	e := newEngine()
	requireSuccess(t, run(t, e, `CREATE TABLE t (k INT PRIMARY KEY, f VARCHAR(10))`))
	requireSuccess(t, run(t, e, `INSERT INTO t (k, f) VALUES (1, 'A')`))
	requireSuccess(t, run(t, e, `INSERT INTO t (k, f) VALUES (2, 'A')`))
	requireSuccess(t, run(t, e, `INSERT INTO t (k, f) VALUES (3, 'B')`))

	r := requireSuccess(t, run(t, e, `SELECT * FROM t WHERE k = 1 OR k = 2 AND f = 'B'`))
	assert.Empty(t, r.Rows, "(k=1 OR k=2) AND f='B' should match nothing")
}

// Scenario 6: delete repacks positions and indexes stay coherent.
func TestScenarioDeleteRepacksPositions(t *testing.T) {
	e := newEngine()
	requireSuccess(t, run(t, e, `CREATE TABLE t (id INT PRIMARY KEY, v VARCHAR(10))`))
	requireSuccess(t, run(t, e, `INSERT INTO t (id, v) VALUES (1, 'a')`))
	requireSuccess(t, run(t, e, `INSERT INTO t (id, v) VALUES (2, 'b')`))
	requireSuccess(t, run(t, e, `INSERT INTO t (id, v) VALUES (3, 'c')`))

	r := requireSuccess(t, run(t, e, `DELETE FROM t WHERE id = 2`))
	assert.Equal(t, 1, r.AffectedRows)

	r = requireSuccess(t, run(t, e, `SELECT * FROM t ORDER BY id ASC`))
	require.Len(t, r.Rows, 2)

	r = requireSuccess(t, run(t, e, `SELECT * FROM t WHERE id = 3`))
	require.Len(t, r.Rows, 1)
	assert.True(t, value.Equal(value.NewString("c"), r.Rows[0]["v"]))

	requireSuccess(t, run(t, e, `INSERT INTO t (id, v) VALUES (4, 'd')`))
	r = requireSuccess(t, run(t, e, `SELECT * FROM t WHERE id = 4`))
	require.Len(t, r.Rows, 1)
}

func TestUpdateRejectsUniqueCollisionWithNoChange(t *testing.T) {
	e := newEngine()
	requireSuccess(t, run(t, e, `CREATE TABLE u (id INT PRIMARY KEY, e VARCHAR(50) UNIQUE)`))
	requireSuccess(t, run(t, e, `INSERT INTO u (e) VALUES ('a')`))
	requireSuccess(t, run(t, e, `INSERT INTO u (e) VALUES ('b')`))

	r := run(t, e, `UPDATE u SET e = 'a' WHERE id = 2`)
	require.False(t, r.Success)

	r = requireSuccess(t, run(t, e, `SELECT * FROM u WHERE id = 2`))
	assert.True(t, value.Equal(value.NewString("b"), r.Rows[0]["e"]))
}

func TestUpdateAllowsSelfCollision(t *testing.T) {
	e := newEngine()
	requireSuccess(t, run(t, e, `CREATE TABLE u (id INT PRIMARY KEY, e VARCHAR(50) UNIQUE)`))
	requireSuccess(t, run(t, e, `INSERT INTO u (e) VALUES ('a')`))

	r := requireSuccess(t, run(t, e, `UPDATE u SET e = 'a' WHERE id = 1`))
	assert.Equal(t, 1, r.AffectedRows)
}

func TestUpdateRejectsIntraBatchUniqueCollision(t *testing.T) {
	e := newEngine()
	requireSuccess(t, run(t, e, `CREATE TABLE u (id INT PRIMARY KEY, e VARCHAR(50) UNIQUE)`))
	requireSuccess(t, run(t, e, `INSERT INTO u (e) VALUES ('a')`))
	requireSuccess(t, run(t, e, `INSERT INTO u (e) VALUES ('b')`))

	// Both matched rows would be set to the same literal: neither
	// collides with the other's *current* value, but applying both
	// would leave two rows sharing one UNIQUE value. The whole UPDATE
	// must be rejected, leaving both rows unchanged.
	r := run(t, e, `UPDATE u SET e = 'c'`)
	require.False(t, r.Success)

	r = requireSuccess(t, run(t, e, `SELECT * FROM u WHERE e = 'c'`))
	assert.Empty(t, r.Rows)

	r = requireSuccess(t, run(t, e, `SELECT * FROM u`))
	assert.Len(t, r.Rows, 2)
}

func TestSelectStarColumnsReflectRowShape(t *testing.T) {
	e := newEngine()
	requireSuccess(t, run(t, e, `CREATE TABLE t (id INT PRIMARY KEY, v VARCHAR(10))`))
	requireSuccess(t, run(t, e, `INSERT INTO t (id, v) VALUES (1, 'a')`))

	r := requireSuccess(t, run(t, e, `SELECT * FROM t`))
	assert.Contains(t, r.Columns, "id")
	assert.Contains(t, r.Columns, "v")
	assert.Contains(t, r.Columns, "t.id")
}

func TestProjectionOmitsAbsentColumnsEntirely(t *testing.T) {
	e := newEngine()
	requireSuccess(t, run(t, e, `CREATE TABLE t (id INT PRIMARY KEY, v VARCHAR(10))`))
	requireSuccess(t, run(t, e, `INSERT INTO t (id, v) VALUES (1, 'a')`))

	r := requireSuccess(t, run(t, e, `SELECT id, missing FROM t`))
	require.Len(t, r.Rows, 1)
	_, hasID := r.Rows[0]["id"]
	_, hasMissing := r.Rows[0]["missing"]
	assert.True(t, hasID)
	assert.False(t, hasMissing, "absent columns produce no key, not a null")
}

func TestLimitZeroReturnsEmptyAndLimitAboveCountReturnsAll(t *testing.T) {
	e := newEngine()
	requireSuccess(t, run(t, e, `CREATE TABLE t (id INT PRIMARY KEY)`))
	requireSuccess(t, run(t, e, `INSERT INTO t (id) VALUES (1)`))
	requireSuccess(t, run(t, e, `INSERT INTO t (id) VALUES (2)`))

	r := requireSuccess(t, run(t, e, `SELECT * FROM t LIMIT 0`))
	assert.Empty(t, r.Rows)

	r = requireSuccess(t, run(t, e, `SELECT * FROM t LIMIT 100`))
	assert.Len(t, r.Rows, 2)
}

func TestOrderByNullsFirstAscLastDesc(t *testing.T) {
	e := newEngine()
	requireSuccess(t, run(t, e, `CREATE TABLE t (id INT PRIMARY KEY, v VARCHAR(10))`))
	requireSuccess(t, run(t, e, `INSERT INTO t (id, v) VALUES (1, 'b')`))
	requireSuccess(t, run(t, e, `INSERT INTO t (id) VALUES (2)`))

	r := requireSuccess(t, run(t, e, `SELECT * FROM t ORDER BY v ASC`))
	assert.True(t, r.Rows[0]["v"].IsNull())

	r = requireSuccess(t, run(t, e, `SELECT * FROM t ORDER BY v DESC`))
	assert.True(t, r.Rows[len(r.Rows)-1]["v"].IsNull())
}

func TestCrossKindComparisonsReturnFalse(t *testing.T) {
	e := newEngine()
	requireSuccess(t, run(t, e, `CREATE TABLE t (id INT PRIMARY KEY, v VARCHAR(10))`))
	requireSuccess(t, run(t, e, `INSERT INTO t (id, v) VALUES (1, '1')`))

	r := requireSuccess(t, run(t, e, `SELECT * FROM t WHERE v = 1`))
	assert.Empty(t, r.Rows, "comparing a string column to an integer literal is cross-kind and always false")
}

func TestDropRemovesTable(t *testing.T) {
	e := newEngine()
	requireSuccess(t, run(t, e, `CREATE TABLE t (id INT PRIMARY KEY)`))
	requireSuccess(t, run(t, e, `DROP TABLE t`))
	r := run(t, e, `SELECT * FROM t`)
	assert.False(t, r.Success)
}
