// Package business manages the tenant sub-units reference rows may be
// scoped to.
package business

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	ormdriver "github.com/faciam-dev/goquent/orm/driver"
	"github.com/faciam-dev/goquent/orm/query"
	"github.com/google/uuid"

	"github.com/refdata-dev/reftab/internal/refdata"
)

// Business is a stored tenant sub-unit.
type Business struct {
	ID        string    `db:"id"`
	TenantID  string    `db:"tenant_id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

// Repo reads and writes businesses.
type Repo struct {
	DB          *sql.DB
	Dialect     ormdriver.Dialect
	TablePrefix string
}

func (r *Repo) table() string {
	prefix := r.TablePrefix
	if prefix == "" {
		prefix = "reftab_"
	}
	return prefix + "businesses"
}

// List returns the tenant's businesses ordered by creation time.
func (r *Repo) List(ctx context.Context, tenantID string) ([]Business, error) {
	if r == nil || r.DB == nil {
		return nil, fmt.Errorf("repo not initialized")
	}
	var res []Business
	q := query.New(r.DB, r.table(), r.Dialect).
		Select("id", "tenant_id", "name", "created_at").
		Where("tenant_id", tenantID).
		OrderBy("created_at", "asc").
		WithContext(ctx)
	if err := q.Get(&res); err != nil {
		return nil, err
	}
	return res, nil
}

// ListBusinesses implements refdata.BusinessLister.
func (r *Repo) ListBusinesses(ctx context.Context, tenantID string) ([]refdata.Business, error) {
	list, err := r.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]refdata.Business, 0, len(list))
	for _, b := range list {
		out = append(out, refdata.Business{ID: b.ID, Name: b.Name})
	}
	return out, nil
}

// Create inserts a business and returns it.
func (r *Repo) Create(ctx context.Context, tenantID, name string) (Business, error) {
	if r == nil || r.DB == nil {
		return Business{}, fmt.Errorf("repo not initialized")
	}
	b := Business{ID: uuid.NewString(), TenantID: tenantID, Name: name, CreatedAt: time.Now().UTC()}
	var stmt string
	switch r.Dialect.(type) {
	case ormdriver.PostgresDialect, *ormdriver.PostgresDialect:
		stmt = fmt.Sprintf("INSERT INTO %s (id, tenant_id, name, created_at) VALUES ($1,$2,$3,$4)", r.table())
	default:
		stmt = fmt.Sprintf("INSERT INTO %s (id, tenant_id, name, created_at) VALUES (?,?,?,?)", r.table())
	}
	if _, err := r.DB.ExecContext(ctx, stmt, b.ID, b.TenantID, b.Name, b.CreatedAt); err != nil {
		return Business{}, err
	}
	return b, nil
}

// Get fetches one business by tenant and ID.
func (r *Repo) Get(ctx context.Context, tenantID, id string) (Business, error) {
	if r == nil || r.DB == nil {
		return Business{}, fmt.Errorf("repo not initialized")
	}
	var b Business
	q := query.New(r.DB, r.table(), r.Dialect).
		Select("id", "tenant_id", "name", "created_at").
		Where("tenant_id", tenantID).
		Where("id", id).
		WithContext(ctx)
	if err := q.First(&b); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Business{}, refdata.ErrNotFound
		}
		return Business{}, err
	}
	return b, nil
}
