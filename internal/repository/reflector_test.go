package repository

import (
	"testing"

	"github.com/armahof/supportdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vehicleSchema() *domain.TableSchema {
	return &domain.TableSchema{
		Name: "vehicles",
		Columns: []domain.Column{
			{Name: "id", DataType: "integer", PrimaryKey: true},
			{Name: "classname", DataType: "character varying"},
			{Name: "color", DataType: "integer"},
			{Name: "trunk", DataType: "text"},
		},
	}
}

func kvSchema() *domain.TableSchema {
	return &domain.TableSchema{
		Name: "kvstore",
		Columns: []domain.Column{
			{Name: "pid", DataType: "character varying", PrimaryKey: true},
			{Name: "k", DataType: "character varying", PrimaryKey: true},
			{Name: "side", DataType: "integer", PrimaryKey: true},
			{Name: "v", DataType: "text"},
		},
	}
}

func noPKSchema() *domain.TableSchema {
	return &domain.TableSchema{
		Name: "plog",
		Columns: []domain.Column{
			{Name: "msg", DataType: "text"},
			{Name: "ts", DataType: "timestamp without time zone"},
		},
	}
}

func TestBuildSelect(t *testing.T) {
	sql := BuildSelect(vehicleSchema(), 200, 0)
	assert.Equal(t, `SELECT "id", "classname", "color", "trunk" FROM "vehicles" LIMIT 200 OFFSET 0`, sql)
}

func TestBuildInsert(t *testing.T) {
	t.Run("known columns only", func(t *testing.T) {
		sql, args, err := BuildInsert(vehicleSchema(), map[string]string{
			"classname": "ghawk",
			"color":     "3",
			"bogus":     "dropped",
		})
		require.NoError(t, err)
		assert.Equal(t, `INSERT INTO "vehicles" ("classname", "color") VALUES (CAST($1 AS character varying), CAST($2 AS integer))`, sql)
		assert.Equal(t, []interface{}{"ghawk", "3"}, args)
	})

	t.Run("unknown columns silently dropped", func(t *testing.T) {
		sql, args, err := BuildInsert(vehicleSchema(), map[string]string{
			"trunk":     "[]",
			"evil_col":  "x",
			"other_col": "y",
		})
		require.NoError(t, err)
		assert.Equal(t, `INSERT INTO "vehicles" ("trunk") VALUES (CAST($1 AS text))`, sql)
		assert.Len(t, args, 1)
	})

	t.Run("no known columns rejected", func(t *testing.T) {
		_, _, err := BuildInsert(vehicleSchema(), map[string]string{"nope": "1"})
		require.Error(t, err)
		appErr, ok := err.(*domain.AppError)
		require.True(t, ok)
		assert.Equal(t, 400, appErr.Status)
	})
}

func TestBuildUpdate(t *testing.T) {
	t.Run("pk columns excluded from set", func(t *testing.T) {
		sql, args, err := BuildUpdate(vehicleSchema(),
			map[string]string{"id": "7"},
			map[string]string{"id": "999", "color": "5", "trunk": "[]"})
		require.NoError(t, err)
		assert.Equal(t, `UPDATE "vehicles" SET "color" = CAST($1 AS integer), "trunk" = CAST($2 AS text) WHERE "id" = CAST($3 AS integer)`, sql)
		assert.Equal(t, []interface{}{"5", "[]", "7"}, args)
	})

	t.Run("composite key equality conjunction", func(t *testing.T) {
		sql, args, err := BuildUpdate(kvSchema(),
			map[string]string{"pid": "p1", "k": "cash", "side": "0"},
			map[string]string{"v": "5000"})
		require.NoError(t, err)
		assert.Equal(t, `UPDATE "kvstore" SET "v" = CAST($1 AS text) WHERE "pid" = CAST($2 AS character varying) AND "k" = CAST($3 AS character varying) AND "side" = CAST($4 AS integer)`, sql)
		assert.Equal(t, []interface{}{"5000", "p1", "cash", "0"}, args)
	})

	t.Run("table without primary key refused", func(t *testing.T) {
		_, _, err := BuildUpdate(noPKSchema(), map[string]string{}, map[string]string{"msg": "edited"})
		require.Error(t, err)
		appErr, ok := err.(*domain.AppError)
		require.True(t, ok)
		assert.Equal(t, "UNSAFE_EDIT", appErr.Code)
	})

	t.Run("missing pk column fails fast", func(t *testing.T) {
		_, _, err := BuildUpdate(kvSchema(),
			map[string]string{"pid": "p1", "k": "cash"},
			map[string]string{"v": "5000"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "side")
	})

	t.Run("nothing to set rejected", func(t *testing.T) {
		_, _, err := BuildUpdate(vehicleSchema(), map[string]string{"id": "7"}, map[string]string{"id": "7"})
		assert.Error(t, err)
	})
}

func TestBuildDelete(t *testing.T) {
	t.Run("single key", func(t *testing.T) {
		sql, args, err := BuildDelete(vehicleSchema(), map[string]string{"id": "42"})
		require.NoError(t, err)
		assert.Equal(t, `DELETE FROM "vehicles" WHERE "id" = CAST($1 AS integer)`, sql)
		assert.Equal(t, []interface{}{"42"}, args)
	})

	t.Run("table without primary key refused", func(t *testing.T) {
		_, _, err := BuildDelete(noPKSchema(), map[string]string{"msg": "x"})
		require.Error(t, err)
		appErr, ok := err.(*domain.AppError)
		require.True(t, ok)
		assert.Equal(t, "UNSAFE_EDIT", appErr.Code)
	})

	t.Run("missing pk column fails fast", func(t *testing.T) {
		_, _, err := BuildDelete(kvSchema(), map[string]string{"pid": "p1", "side": "1"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "k")
	})
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"plain"`, quoteIdent("plain"))
	assert.Equal(t, `"we""ird"`, quoteIdent(`we"ird`))
}
