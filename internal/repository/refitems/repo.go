// Package refitems implements refdata.Store against a SQL database using
// the goquent query builder.
package refitems

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	ormdriver "github.com/faciam-dev/goquent/orm/driver"
	"github.com/faciam-dev/goquent/orm/query"

	"github.com/refdata-dev/reftab/internal/refdata"
)

// Repo executes reference table reads and writes. One instance serves every
// configured table; the physical table name is always an argument.
type Repo struct {
	DB      *sql.DB
	Dialect ormdriver.Dialect
}

// List runs the read described by q and returns raw rows.
func (r *Repo) List(ctx context.Context, table string, q refdata.ListQuery) ([]map[string]any, error) {
	if r == nil || r.DB == nil {
		return nil, fmt.Errorf("repo not initialized")
	}
	qb := query.New(r.DB, table, r.Dialect)
	if len(q.Columns) > 0 {
		qb.Select(q.Columns...)
	}
	if q.TenantID != "" {
		qb.Where(refdata.TenantColumn, q.TenantID)
	}
	for _, k := range sortedKeys(q.Static) {
		qb.Where(k, q.Static[k])
	}
	if q.BusinessID != "" {
		// Rows scoped to the selected business OR shared tenant-wide.
		bid := q.BusinessID
		qb.WhereGroup(func(g *query.Query) {
			g.Where(refdata.BusinessColumn, bid).
				OrWhereRaw(refdata.BusinessColumn+" IS NULL", nil)
		})
	}
	if q.OrderBy != "" {
		dir := "asc"
		if q.Desc {
			dir = "desc"
		}
		qb.OrderBy(q.OrderBy, dir)
	}
	sqlStr, args, err := qb.WithContext(ctx).Build()
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows)
}

// Insert stores payload and returns the row as stored, including generated
// columns. Postgres uses RETURNING; MySQL re-reads the row by its key.
func (r *Repo) Insert(ctx context.Context, table, keyHint string, payload map[string]any) (map[string]any, error) {
	if r == nil || r.DB == nil {
		return nil, fmt.Errorf("repo not initialized")
	}
	cols := sortedKeys(payload)
	args := make([]any, 0, len(cols))
	for _, c := range cols {
		args = append(args, payload[c])
	}
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdentifier(r.Dialect, c)
	}
	qtbl := quoteIdentifier(r.Dialect, table)

	switch r.Dialect.(type) {
	case ormdriver.PostgresDialect, *ormdriver.PostgresDialect:
		ph := make([]string, len(cols))
		for i := range cols {
			ph[i] = "$" + strconv.Itoa(i+1)
		}
		stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
			qtbl, strings.Join(quoted, ", "), strings.Join(ph, ","))
		rows, err := r.DB.QueryContext(ctx, stmt, args...)
		if err != nil {
			return nil, err
		}
		defer rows.Close()
		got, err := scanRows(rows)
		if err != nil {
			return nil, err
		}
		if len(got) == 0 {
			return nil, fmt.Errorf("insert into %s returned no row", table)
		}
		return got[0], nil
	default:
		ph := strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",")
		stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			qtbl, strings.Join(quoted, ", "), ph)
		res, err := r.DB.ExecContext(ctx, stmt, args...)
		if err != nil {
			return nil, err
		}
		key := payload[keyHint]
		if key == nil {
			id, err := res.LastInsertId()
			if err != nil {
				return nil, err
			}
			key = id
		}
		return r.readBack(ctx, table, keyHint, key)
	}
}

func (r *Repo) readBack(ctx context.Context, table, keyColumn string, key any) (map[string]any, error) {
	sqlStr, args, err := query.New(r.DB, table, r.Dialect).
		Where(keyColumn, key).
		WithContext(ctx).
		Build()
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	got, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	if len(got) == 0 {
		return nil, refdata.ErrNotFound
	}
	return got[0], nil
}

// Update patches changes on the row addressed by keyColumn=id, additionally
// scoped by tenant when tenantID is non-empty.
func (r *Repo) Update(ctx context.Context, table, keyColumn, id, tenantID string, changes map[string]any) error {
	if r == nil || r.DB == nil {
		return fmt.Errorf("repo not initialized")
	}
	qb := query.New(r.DB, table, r.Dialect).Where(keyColumn, keyValue(id))
	if tenantID != "" {
		qb.Where(refdata.TenantColumn, tenantID)
	}
	_, err := qb.WithContext(ctx).Update(changes)
	return err
}

// Delete removes the row addressed by keyColumn=id, additionally scoped by
// tenant when tenantID is non-empty.
func (r *Repo) Delete(ctx context.Context, table, keyColumn, id, tenantID string) error {
	if r == nil || r.DB == nil {
		return fmt.Errorf("repo not initialized")
	}
	qb := query.New(r.DB, table, r.Dialect).Where(keyColumn, keyValue(id))
	if tenantID != "" {
		qb.Where(refdata.TenantColumn, tenantID)
	}
	_, err := qb.WithContext(ctx).Delete()
	return err
}

// ListOptions returns the full parent option list ordered by label.
func (r *Repo) ListOptions(ctx context.Context, table, keyColumn, labelColumn string) ([]refdata.Option, error) {
	if r == nil || r.DB == nil {
		return nil, fmt.Errorf("repo not initialized")
	}
	sqlStr, args, err := query.New(r.DB, table, r.Dialect).
		Select(keyColumn, labelColumn).
		OrderBy(labelColumn, "asc").
		WithContext(ctx).
		Build()
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	raw, err := scanRows(rows)
	if err != nil {
		return nil, err
	}
	out := make([]refdata.Option, 0, len(raw))
	for _, row := range raw {
		out = append(out, refdata.Option{
			ID:    asString(row[keyColumn]),
			Label: asString(row[labelColumn]),
		})
	}
	return out, nil
}

// scanRows reads all rows into maps keyed by column name. Byte slices are
// converted to strings since drivers commonly return text columns as []byte.
func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = vals[i]
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// keyValue converts a string ID back to the likely column type so numeric
// keys compare correctly on strict dialects.
func keyValue(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return fmt.Sprint(x)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func quoteIdentifier(d ormdriver.Dialect, ident string) string {
	switch d.(type) {
	case ormdriver.PostgresDialect, *ormdriver.PostgresDialect:
		return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
	default:
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
}
