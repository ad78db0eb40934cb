package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/armahof/supportdesk/internal/domain"
)

// Reflector exposes arbitrary application tables through runtime schema
// introspection. Schemas are loaded fresh per request and never cached;
// mutations on tables without a primary key are refused.
type Reflector struct{}

// NewReflector creates a new Reflector.
func NewReflector() *Reflector {
	return &Reflector{}
}

// DefaultListLimit bounds generic table listings.
const DefaultListLimit = 200

// ListTables returns the names of all exposed base tables in the public
// schema. The console's own admin_ tables and the migration bookkeeping
// table stay hidden.
func (rf *Reflector) ListTables(ctx context.Context, db DBTX) ([]string, error) {
	rows, err := db.Query(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_type = 'BASE TABLE'
		  AND table_name NOT LIKE 'admin\_%'
		  AND table_name <> 'schema_migrations'
		ORDER BY table_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// LoadSchema introspects a table's columns and primary key from the system
// catalog. Returns a not-found error when the table does not exist or is not
// exposed.
func (rf *Reflector) LoadSchema(ctx context.Context, db DBTX, table string) (*domain.TableSchema, error) {
	if strings.HasPrefix(table, "admin_") || table == "schema_migrations" {
		return nil, domain.ErrNotFound("table", table)
	}

	rows, err := db.Query(ctx, `
		SELECT c.column_name,
		       c.data_type,
		       c.is_nullable = 'YES',
		       EXISTS (
		         SELECT 1
		         FROM information_schema.table_constraints tc
		         JOIN information_schema.key_column_usage kcu
		           ON kcu.constraint_name = tc.constraint_name
		          AND kcu.table_schema = tc.table_schema
		          AND kcu.table_name = tc.table_name
		         WHERE tc.table_schema = 'public'
		           AND tc.table_name = c.table_name
		           AND tc.constraint_type = 'PRIMARY KEY'
		           AND kcu.column_name = c.column_name
		       )
		FROM information_schema.columns c
		WHERE c.table_schema = 'public' AND c.table_name = $1
		ORDER BY c.ordinal_position`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	schema := &domain.TableSchema{Name: table}
	for rows.Next() {
		var col domain.Column
		if err := rows.Scan(&col.Name, &col.DataType, &col.Nullable, &col.PrimaryKey); err != nil {
			return nil, err
		}
		schema.Columns = append(schema.Columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(schema.Columns) == 0 {
		return nil, domain.ErrNotFound("table", table)
	}
	return schema, nil
}

// ListRows returns up to limit rows of the table as column-name keyed string
// maps, in column order from the schema.
func (rf *Reflector) ListRows(ctx context.Context, db DBTX, schema *domain.TableSchema, limit, offset int) ([]map[string]string, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	sql := BuildSelect(schema, limit, offset)
	rows, err := db.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []map[string]string
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		rec := make(map[string]string, len(schema.Columns))
		for i, col := range schema.Columns {
			if i >= len(values) || values[i] == nil {
				rec[col.Name] = ""
				continue
			}
			rec[col.Name] = fmt.Sprint(values[i])
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// InsertRow inserts one row built from form data. Unknown columns are
// silently dropped.
func (rf *Reflector) InsertRow(ctx context.Context, db DBTX, schema *domain.TableSchema, data map[string]string) error {
	sql, args, err := BuildInsert(schema, data)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, sql, args...)
	return err
}

// UpdateRow updates the row identified by pkValues. Requires the table to
// have a primary key and every key column to be present.
func (rf *Reflector) UpdateRow(ctx context.Context, db DBTX, schema *domain.TableSchema, pkValues, data map[string]string) error {
	sql, args, err := BuildUpdate(schema, pkValues, data)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, sql, args...)
	return err
}

// DeleteRow deletes the row identified by pkValues, under the same primary
// key rules as UpdateRow.
func (rf *Reflector) DeleteRow(ctx context.Context, db DBTX, schema *domain.TableSchema, pkValues map[string]string) error {
	sql, args, err := BuildDelete(schema, pkValues)
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, sql, args...)
	return err
}

// BuildSelect produces the bounded listing statement for a table.
func BuildSelect(schema *domain.TableSchema, limit, offset int) string {
	cols := make([]string, len(schema.Columns))
	for i, c := range schema.Columns {
		cols[i] = quoteIdent(c.Name)
	}
	return fmt.Sprintf("SELECT %s FROM %s LIMIT %d OFFSET %d",
		strings.Join(cols, ", "), quoteIdent(schema.Name), limit, offset)
}

// BuildInsert produces a parameterized insert from form data. Input keys
// that are not columns of the table are dropped without error; an input with
// no known columns at all is rejected.
func BuildInsert(schema *domain.TableSchema, data map[string]string) (string, []interface{}, error) {
	var cols []string
	var casts []string
	var args []interface{}

	for _, c := range schema.Columns {
		v, ok := data[c.Name]
		if !ok {
			continue
		}
		cols = append(cols, quoteIdent(c.Name))
		casts = append(casts, castPlaceholder(len(args)+1, c.DataType))
		args = append(args, v)
	}
	if len(cols) == 0 {
		return "", nil, domain.ErrValidation("no known columns in submitted row")
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(schema.Name), strings.Join(cols, ", "), strings.Join(casts, ", "))
	return sql, args, nil
}

// BuildUpdate produces a parameterized update identified by an equality
// conjunction over every primary-key column. Primary-key columns are
// excluded from the SET payload.
func BuildUpdate(schema *domain.TableSchema, pkValues, data map[string]string) (string, []interface{}, error) {
	var sets []string
	var args []interface{}

	for _, c := range schema.Columns {
		if c.PrimaryKey {
			continue
		}
		v, ok := data[c.Name]
		if !ok {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = %s", quoteIdent(c.Name), castPlaceholder(len(args)+1, c.DataType)))
		args = append(args, v)
	}
	if len(sets) == 0 {
		return "", nil, domain.ErrValidation("no updatable columns in submitted row")
	}

	where, args, err := buildIdentityFilter(schema, pkValues, args)
	if err != nil {
		return "", nil, err
	}

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		quoteIdent(schema.Name), strings.Join(sets, ", "), where)
	return sql, args, nil
}

// BuildDelete produces a parameterized delete identified by an equality
// conjunction over every primary-key column.
func BuildDelete(schema *domain.TableSchema, pkValues map[string]string) (string, []interface{}, error) {
	where, args, err := buildIdentityFilter(schema, pkValues, nil)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("DELETE FROM %s WHERE %s", quoteIdent(schema.Name), where), args, nil
}

// buildIdentityFilter builds the equality conjunction over every primary-key
// column. A table without a primary key refuses the mutation entirely, and a
// missing key value fails fast.
func buildIdentityFilter(schema *domain.TableSchema, pkValues map[string]string, args []interface{}) (string, []interface{}, error) {
	var conds []string

	for _, c := range schema.Columns {
		if !c.PrimaryKey {
			continue
		}
		v, ok := pkValues[c.Name]
		if !ok {
			return "", nil, domain.ErrValidation(fmt.Sprintf("missing primary key column %s", c.Name))
		}
		conds = append(conds, fmt.Sprintf("%s = %s", quoteIdent(c.Name), castPlaceholder(len(args)+1, c.DataType)))
		args = append(args, v)
	}
	if len(conds) == 0 {
		return "", nil, domain.ErrUnsafeEdit(schema.Name)
	}
	return strings.Join(conds, " AND "), args, nil
}

// castPlaceholder renders $n cast to the column's catalog type, so form
// strings reach columns of any type through one code path.
func castPlaceholder(n int, dataType string) string {
	return fmt.Sprintf("CAST($%d AS %s)", n, dataType)
}

// quoteIdent double-quotes an SQL identifier, doubling embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
