package refdata

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/refdata-dev/reftab/internal/validate"
)

// Value length bounds for reference item values, applied after trimming.
const (
	minValueLen = 2
	maxValueLen = 100
)

// ErrNoToggle is returned when an active toggle is requested on a table
// whose configuration defines no toggle column.
var ErrNoToggle = errors.New("table has no active toggle column")

// ErrEditInProgress is returned when a second row is put into edit mode
// while another edit is still open.
var ErrEditInProgress = errors.New("another row is already being edited")

// ConfirmFunc is asked before a destructive operation. Returning false
// leaves both local state and the remote store untouched.
type ConfirmFunc func(Item) bool

// loadScope identifies the context a load was issued under. Results whose
// scope no longer matches current state are discarded.
type loadScope struct {
	tenant   string
	business string
	relation string
}

// Editor presents and mutates one reference table chosen by its logical key.
// Whether the table is tenant/business scoped, needs a parent relation, or
// carries an active toggle is driven entirely by the resolved TableConfig.
// Uncatalogued keys fall back to an in-memory mock store seeded from a
// fixture. Local state only advances after a confirmed successful store
// response.
type Editor struct {
	key        string
	cfg        TableConfig
	catalogued bool
	store      Store
	businesses BusinessLister
	tenantID   string
	confirm    ConfirmFunc
	mocks      *MockStores

	mu               sync.Mutex
	items            []Item
	businessList     []Business
	selectedBusiness string
	relationOptions  []Option
	selectedRelation string
	editingID        string
}

// EditorOption customizes an Editor.
type EditorOption func(*Editor)

// WithConfirm installs the confirmation hook used by Delete.
func WithConfirm(f ConfirmFunc) EditorOption {
	return func(e *Editor) { e.confirm = f }
}

// WithMockStores makes uncatalogued tables resolve to shared per-key mock
// stores instead of a fresh fixture-seeded store per editor, so mock
// mutations survive across editors.
func WithMockStores(m *MockStores) EditorOption {
	return func(e *Editor) { e.mocks = m }
}

// NewEditor resolves key against the registry and returns an editor bound to
// the given store and tenant. Keys absent from the registry get a mock
// in-memory table so callers never have to branch.
func NewEditor(key string, reg *Registry, store Store, businesses BusinessLister, tenantID string, opts ...EditorOption) *Editor {
	e := &Editor{
		key:        key,
		store:      store,
		businesses: businesses,
		tenantID:   tenantID,
	}
	for _, o := range opts {
		o(e)
	}
	if cfg, ok := reg.Lookup(key); ok {
		e.cfg = cfg
		e.catalogued = true
	} else {
		e.cfg = mockConfig(key)
		if e.mocks != nil {
			e.store = e.mocks.For(key)
		} else {
			e.store = NewMockStore(key)
		}
	}
	return e
}

// Key returns the logical table key the editor was opened with.
func (e *Editor) Key() string { return e.key }

// Config returns the resolved table configuration.
func (e *Editor) Config() TableConfig { return e.cfg }

// Catalogued reports whether the table is remote-backed.
func (e *Editor) Catalogued() bool { return e.catalogued }

func (e *Editor) scope() loadScope {
	return loadScope{tenant: e.tenantID, business: e.selectedBusiness, relation: e.selectedRelation}
}

// LoadBusinesses fetches the tenant's businesses for scoped tables and
// selects the first one when none is selected yet. Global tables are a
// no-op. A missing tenant yields an empty list without error; scoped reads
// simply stay blocked until a tenant is present.
func (e *Editor) LoadBusinesses(ctx context.Context) ([]Business, error) {
	if !e.cfg.Scoped || e.businesses == nil {
		return nil, nil
	}
	e.mu.Lock()
	tid := e.tenantID
	e.mu.Unlock()
	if tid == "" {
		return nil, nil
	}
	list, err := e.businesses.ListBusinesses(ctx, tid)
	if err != nil {
		return nil, &StoreError{Op: "load businesses", Err: err}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.businessList = list
	if e.selectedBusiness == "" && len(list) > 0 {
		e.selectedBusiness = list[0].ID
	}
	return append([]Business(nil), list...), nil
}

// SelectBusiness switches the business scope. Loaded items become stale and
// must be reloaded by the caller.
func (e *Editor) SelectBusiness(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selectedBusiness = id
}

// SelectedBusiness returns the current business selection.
func (e *Editor) SelectedBusiness() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedBusiness
}

// LoadRelationOptions fetches the full parent option list for
// relation-dependent tables, ordered by label, and selects the first entry
// when none is selected. Tables without a relation are a no-op.
func (e *Editor) LoadRelationOptions(ctx context.Context) ([]Option, error) {
	rel := e.cfg.Relation
	if rel == nil {
		return nil, nil
	}
	opts, err := e.store.ListOptions(ctx, rel.OptionTable, rel.OptionKey, rel.OptionLabel)
	if err != nil {
		return nil, &StoreError{Op: "load " + rel.Name + " options", Err: err}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.relationOptions = opts
	if e.selectedRelation == "" && len(opts) > 0 {
		e.selectedRelation = opts[0].ID
	}
	return append([]Option(nil), opts...), nil
}

// SelectRelation switches the selected parent entity.
func (e *Editor) SelectRelation(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selectedRelation = id
}

// SelectedRelation returns the current parent selection.
func (e *Editor) SelectedRelation() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedRelation
}

// LoadItems reads the table and replaces local state with the normalized
// rows. Scoped tables never issue a read without both a tenant and a
// selected business; absent either the item list is empty and no error is
// reported. On store failure the list is cleared so no stale data is shown.
// A result arriving after the scope changed is discarded with ErrStaleScope.
func (e *Editor) LoadItems(ctx context.Context) ([]Item, error) {
	e.mu.Lock()
	issued := e.scope()
	if e.cfg.Scoped && (e.tenantID == "" || e.selectedBusiness == "") {
		e.items = nil
		e.mu.Unlock()
		return nil, nil
	}
	q := ListQuery{
		Columns: e.cfg.SelectColumns,
		Static:  e.cfg.StaticFilters,
		OrderBy: e.cfg.SortColumn,
		Desc:    e.cfg.SortDesc,
	}
	if e.cfg.Scoped {
		q.TenantID = e.tenantID
		q.BusinessID = e.selectedBusiness
	}
	e.mu.Unlock()

	rows, err := e.store.List(ctx, e.cfg.Table, q)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scope() != issued {
		return nil, ErrStaleScope
	}
	if err != nil {
		e.items = nil
		return nil, &StoreError{Op: "load items", Err: err}
	}
	items := make([]Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, Normalize(e.cfg, r))
	}
	e.items = items
	return append([]Item(nil), items...), nil
}

// Items returns the currently loaded items.
func (e *Editor) Items() []Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Item(nil), e.items...)
}

// validateValue applies the shared text rules plus the case-insensitive
// duplicate check, excluding excludeID when editing.
func (e *Editor) validateValue(trimmed, excludeID string) error {
	if ok, msg := validate.TextField(trimmed, validate.Rules{
		Required:  true,
		MinLength: minValueLen,
		MaxLength: maxValueLen,
		FieldName: "value",
	}); !ok {
		return &ValidationError{Field: "value", Message: msg}
	}
	for _, it := range e.items {
		if it.ID != excludeID && strings.EqualFold(it.Value, trimmed) {
			return &ValidationError{Field: "value", Message: "value already exists", Duplicate: true}
		}
	}
	return nil
}

// Add validates value and inserts a new row, appending the normalized result
// to local state on success. Scoped tables require tenant context and a
// business selection; relation-dependent tables require a parent selection.
func (e *Editor) Add(ctx context.Context, value string) (Item, error) {
	trimmed := strings.TrimSpace(value)

	e.mu.Lock()
	if err := e.validateValue(trimmed, ""); err != nil {
		e.mu.Unlock()
		return Item{}, err
	}
	if e.cfg.Scoped {
		if e.tenantID == "" {
			e.mu.Unlock()
			return Item{}, &ValidationError{Field: "tenant", Message: "tenant context required"}
		}
		if e.selectedBusiness == "" {
			e.mu.Unlock()
			return Item{}, &ValidationError{Field: "business", Message: "select a business first"}
		}
	}
	if e.cfg.Relation != nil && e.selectedRelation == "" {
		e.mu.Unlock()
		return Item{}, &ValidationError{Field: e.cfg.Relation.Name, Message: "select a " + e.cfg.Relation.Name + " first"}
	}
	payload := map[string]any{e.cfg.ValueColumn: trimmed}
	for k, v := range e.cfg.InsertDefaults {
		if _, exists := payload[k]; !exists {
			payload[k] = v
		}
	}
	if e.cfg.Scoped {
		payload[TenantColumn] = e.tenantID
		payload[BusinessColumn] = e.selectedBusiness
	}
	if e.cfg.Relation != nil {
		payload[e.cfg.Relation.FKColumn] = e.selectedRelation
	}
	keyHint := e.cfg.PrimaryKey
	if keyHint == "" {
		keyHint = "id"
	}
	issued := e.scope()
	e.mu.Unlock()

	row, err := e.store.Insert(ctx, e.cfg.Table, keyHint, payload)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		return Item{}, &StoreError{Op: "add item", Err: err}
	}
	it := Normalize(e.cfg, row)
	if e.scope() != issued {
		// The row was stored, but this editor has moved on; do not graft it
		// onto a list that belongs to a different scope.
		return it, ErrStaleScope
	}
	e.items = append(e.items, it)
	return it, nil
}

// StartEdit puts a row into edit mode. Only one row may be edited at a time.
func (e *Editor) StartEdit(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.editingID != "" && e.editingID != id {
		return ErrEditInProgress
	}
	if _, ok := e.find(id); !ok {
		return ErrNotFound
	}
	e.editingID = id
	return nil
}

// CancelEdit leaves edit mode without saving.
func (e *Editor) CancelEdit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.editingID = ""
}

// EditingID returns the row currently in edit mode, if any.
func (e *Editor) EditingID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editingID
}

// SaveEdit re-validates value (excluding the row itself from the duplicate
// check), updates the row addressed by its retained key column, and patches
// local state in place on success.
func (e *Editor) SaveEdit(ctx context.Context, id, value string) (Item, error) {
	trimmed := strings.TrimSpace(value)

	e.mu.Lock()
	if e.editingID != "" && e.editingID != id {
		e.mu.Unlock()
		return Item{}, ErrEditInProgress
	}
	it, ok := e.find(id)
	if !ok {
		e.mu.Unlock()
		return Item{}, ErrNotFound
	}
	if err := e.validateValue(trimmed, id); err != nil {
		e.mu.Unlock()
		return Item{}, err
	}
	tid := ""
	if e.cfg.Scoped {
		tid = e.tenantID
	}
	keyCol := it.KeyColumn
	e.mu.Unlock()

	err := e.store.Update(ctx, e.cfg.Table, keyCol, id, tid, map[string]any{e.cfg.ValueColumn: trimmed})

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		return Item{}, &StoreError{Op: "save item", Err: err}
	}
	for i := range e.items {
		if e.items[i].ID == id {
			e.items[i].Value = trimmed
			if e.items[i].Raw != nil {
				e.items[i].Raw[e.cfg.ValueColumn] = trimmed
			}
			e.editingID = ""
			return e.items[i], nil
		}
	}
	e.editingID = ""
	return Item{}, ErrNotFound
}

// ToggleActive flips the row's active flag and persists it. The update
// touches only the configured toggle column.
func (e *Editor) ToggleActive(ctx context.Context, id string) (Item, error) {
	if e.cfg.ToggleColumn == "" {
		return Item{}, ErrNoToggle
	}
	e.mu.Lock()
	it, ok := e.find(id)
	if !ok {
		e.mu.Unlock()
		return Item{}, ErrNotFound
	}
	next := !it.IsActive
	tid := ""
	if e.cfg.Scoped {
		tid = e.tenantID
	}
	keyCol := it.KeyColumn
	e.mu.Unlock()

	err := e.store.Update(ctx, e.cfg.Table, keyCol, id, tid, map[string]any{e.cfg.ToggleColumn: next})

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		return Item{}, &StoreError{Op: "toggle item", Err: err}
	}
	for i := range e.items {
		if e.items[i].ID == id {
			e.items[i].IsActive = next
			if e.items[i].Raw != nil {
				e.items[i].Raw[e.cfg.ToggleColumn] = next
			}
			return e.items[i], nil
		}
	}
	return Item{}, ErrNotFound
}

// Delete removes a row after confirmation. Declining confirmation leaves the
// item list and the store unchanged and reports deleted=false.
func (e *Editor) Delete(ctx context.Context, id string) (bool, error) {
	e.mu.Lock()
	it, ok := e.find(id)
	if !ok {
		e.mu.Unlock()
		return false, ErrNotFound
	}
	confirm := e.confirm
	tid := ""
	if e.cfg.Scoped {
		tid = e.tenantID
	}
	keyCol := it.KeyColumn
	e.mu.Unlock()

	if confirm != nil && !confirm(it) {
		return false, nil
	}

	err := e.store.Delete(ctx, e.cfg.Table, keyCol, id, tid)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		return false, &StoreError{Op: "delete item", Err: err}
	}
	for i := range e.items {
		if e.items[i].ID == id {
			e.items = append(e.items[:i], e.items[i+1:]...)
			break
		}
	}
	if e.editingID == id {
		e.editingID = ""
	}
	return true, nil
}

// find looks a loaded item up by ID. Caller holds e.mu.
func (e *Editor) find(id string) (Item, bool) {
	for _, it := range e.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}
