package flint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineCreateInsertSelect(t *testing.T) {
	e := New()
	ctx := context.Background()

	r := e.Execute(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name VARCHAR(50) NOT NULL)")
	require.True(t, r.Success, r.Error)

	r = e.Execute(ctx, "INSERT INTO users (name) VALUES ('Ada')")
	require.True(t, r.Success, r.Error)
	assert.Equal(t, 1, r.AffectedRows)

	r = e.Execute(ctx, "SELECT * FROM users")
	require.True(t, r.Success, r.Error)
	require.Len(t, r.Rows, 1)
	assert.Equal(t, int64(1), r.Rows[0]["id"].Int())
}

func TestEngineSurfacesParseErrorsAsResult(t *testing.T) {
	e := New()
	r := e.Execute(context.Background(), "SELECT WHERE")
	assert.False(t, r.Success)
	assert.NotEmpty(t, r.Error)
}

func TestEngineListTableNamesAndSchema(t *testing.T) {
	e := New()
	ctx := context.Background()
	require.True(t, e.Execute(ctx, "CREATE TABLE a (id INTEGER PRIMARY KEY)").Success)
	require.True(t, e.Execute(ctx, "CREATE TABLE b (id INTEGER PRIMARY KEY)").Success)

	assert.Equal(t, []string{"a", "b"}, e.ListTableNames())

	schema, ok := e.GetSchema("a")
	require.True(t, ok)
	assert.Equal(t, "id", schema.PrimaryKey)

	_, ok = e.GetSchema("missing")
	assert.False(t, ok)
}

func TestNewWithConfigAppliesDefaultVarcharMax(t *testing.T) {
	cfg := Config{Collation: "en_US", DefaultVarcharMax: 5, StrictTypeCoercion: true}
	e := NewWithConfig(cfg)
	ctx := context.Background()

	require.True(t, e.Execute(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY, name VARCHAR)").Success)

	schema, ok := e.GetSchema("t")
	require.True(t, ok)
	nameCol, ok := schema.Column("name")
	require.True(t, ok)
	assert.Equal(t, 5, nameCol.MaxLength)

	r := e.Execute(ctx, "INSERT INTO t (id, name) VALUES (1, 'toolong')")
	assert.False(t, r.Success)
}

func TestEngineGetRowCountDefaultsToZero(t *testing.T) {
	e := New()
	assert.Equal(t, 0, e.GetRowCount("missing"))

	ctx := context.Background()
	require.True(t, e.Execute(ctx, "CREATE TABLE t (id INTEGER PRIMARY KEY)").Success)
	assert.Equal(t, 0, e.GetRowCount("t"))
	require.True(t, e.Execute(ctx, "INSERT INTO t (id) VALUES (1)").Success)
	assert.Equal(t, 1, e.GetRowCount("t"))
}
