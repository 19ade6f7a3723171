package refdata

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a row addressed by its key column is missing.
var ErrNotFound = errors.New("reference item not found")

// ErrStaleScope marks a load whose originating scope (tenant, table,
// business, relation) no longer matches the editor's current state. The
// result is discarded instead of overwriting fresher data.
var ErrStaleScope = errors.New("stale load discarded: scope changed")

// ValidationError is a field-level input error. It never reaches the store.
// Duplicate marks the case-insensitive uniqueness violation so transports can
// map it to a conflict status.
type ValidationError struct {
	Field     string
	Message   string
	Duplicate bool
}

func (e *ValidationError) Error() string { return e.Message }

// StoreError wraps a remote store failure with the operation that caused it.
// It is surfaced banner-level; local state is never mutated on one.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

// Option is a parent entity selectable for relation-dependent tables.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Business is a tenant sub-unit; non-global tables optionally scope rows by
// business in addition to tenant.
type Business struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListQuery describes one read against a reference table.
type ListQuery struct {
	// Columns limits the projection; empty selects all columns.
	Columns []string
	// TenantID filters by tenant when non-empty.
	TenantID string
	// BusinessID, when non-empty, matches rows whose business_id equals it
	// OR is NULL (tenant-wide rows).
	BusinessID string
	// Static equality filters from the table configuration.
	Static map[string]any
	// OrderBy column with direction.
	OrderBy string
	Desc    bool
}

// Store is the remote table API the editor runs against. Implementations
// must return ErrNotFound (possibly wrapped) when a keyed row is absent.
type Store interface {
	List(ctx context.Context, table string, q ListQuery) ([]map[string]any, error)
	// Insert writes payload and returns the stored row including generated
	// columns. keyHint names the expected key column for stores that must
	// re-read the row after insert.
	Insert(ctx context.Context, table, keyHint string, payload map[string]any) (map[string]any, error)
	// Update patches changes on the row addressed by keyColumn=id, further
	// scoped by tenant when tenantID is non-empty.
	Update(ctx context.Context, table, keyColumn, id, tenantID string, changes map[string]any) error
	Delete(ctx context.Context, table, keyColumn, id, tenantID string) error
	// ListOptions returns parent options for relation-dependent tables,
	// ordered by label.
	ListOptions(ctx context.Context, table, keyColumn, labelColumn string) ([]Option, error)
}

// BusinessLister provides the tenant's businesses for scoped tables.
type BusinessLister interface {
	ListBusinesses(ctx context.Context, tenantID string) ([]Business, error)
}
