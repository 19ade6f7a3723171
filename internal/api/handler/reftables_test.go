package handler

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/danielgtaylor/huma/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"

	"github.com/refdata-dev/reftab/internal/api/schema"
	"github.com/refdata-dev/reftab/internal/cache"
	"github.com/refdata-dev/reftab/internal/refdata"
	"github.com/refdata-dev/reftab/internal/tenant"
)

type fakeStore struct {
	rows      []map[string]any
	options   []refdata.Option
	nextRow   map[string]any
	lists     int
	inserts   int
	deletes   int
	lastQuery refdata.ListQuery
}

func (f *fakeStore) List(ctx context.Context, table string, q refdata.ListQuery) ([]map[string]any, error) {
	f.lists++
	f.lastQuery = q
	return f.rows, nil
}

func (f *fakeStore) Insert(ctx context.Context, table, keyHint string, payload map[string]any) (map[string]any, error) {
	f.inserts++
	if f.nextRow != nil {
		return f.nextRow, nil
	}
	row := map[string]any{keyHint: "new"}
	for k, v := range payload {
		row[k] = v
	}
	return row, nil
}

func (f *fakeStore) Update(ctx context.Context, table, keyColumn, id, tenantID string, changes map[string]any) error {
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, table, keyColumn, id, tenantID string) error {
	f.deletes++
	return nil
}

func (f *fakeStore) ListOptions(ctx context.Context, table, keyColumn, labelColumn string) ([]refdata.Option, error) {
	return f.options, nil
}

type fakeBusinesses struct {
	list []refdata.Business
}

func (f *fakeBusinesses) ListBusinesses(ctx context.Context, tenantID string) ([]refdata.Business, error) {
	return f.list, nil
}

func newHandler(st *fakeStore) *ReferenceTables {
	return &ReferenceTables{
		Registry:   refdata.Default(),
		Store:      st,
		Businesses: &fakeBusinesses{list: []refdata.Business{{ID: "b1", Name: "Main"}}},
		Mocks:      refdata.NewMockStores(),
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected status error, got %v", err)
	}
	return se.GetStatus()
}

func TestListTablesCatalogue(t *testing.T) {
	h := newHandler(&fakeStore{})
	out, err := h.listTables(context.Background(), &struct{}{})
	if err != nil {
		t.Fatalf("listTables: %v", err)
	}
	byKey := map[string]int{}
	for i, tbl := range out.Body {
		byKey[tbl.Key] = i
	}
	countries := out.Body[byKey["countries"]]
	if countries.Scoped || countries.HasToggle || !countries.HideIDColumn {
		t.Fatalf("unexpected countries flags: %+v", countries)
	}
	if diff := cmp.Diff([]string{"Code"}, countries.Display); diff != "" {
		t.Fatalf("countries display mismatch (-want +got):\n%s", diff)
	}
	states := out.Body[byKey["states"]]
	if states.Relation != "country" {
		t.Fatalf("states relation = %q", states.Relation)
	}
	if visa := out.Body[byKey["visa_statuses"]]; !visa.Scoped || !visa.HasToggle {
		t.Fatalf("unexpected visa_statuses flags: %+v", visa)
	}
}

func TestMockTableMutationsPersistAcrossRequests(t *testing.T) {
	h := newHandler(&fakeStore{})
	ctx := tenant.WithTenant(context.Background(), "t1")

	created, err := h.createItem(ctx, &createItemInput{
		Table: "leave_types",
		Body:  schema.NewItem{Value: "Sabbatical"},
	})
	if err != nil {
		t.Fatalf("createItem: %v", err)
	}

	// The next request builds a fresh editor; the mutation must still be there.
	out, err := h.listItems(ctx, &itemsInput{Table: "leave_types"})
	if err != nil {
		t.Fatalf("listItems: %v", err)
	}
	if len(out.Body) != 4 {
		t.Fatalf("items after create = %d, want 4", len(out.Body))
	}
	found := false
	for _, it := range out.Body {
		if it.ID == created.Body.ID && it.Value == "Sabbatical" {
			found = true
		}
	}
	if !found {
		t.Fatalf("created item missing from subsequent list: %+v", out.Body)
	}
}

func TestListItemsScopedQuery(t *testing.T) {
	st := &fakeStore{rows: []map[string]any{
		{"id": 1, "name": "H-1B", "is_active": true, "business_id": "b1"},
	}}
	h := newHandler(st)
	ctx := tenant.WithTenant(context.Background(), "t1")

	out, err := h.listItems(ctx, &itemsInput{Table: "visa_statuses"})
	if err != nil {
		t.Fatalf("listItems: %v", err)
	}
	if st.lastQuery.TenantID != "t1" || st.lastQuery.BusinessID != "b1" {
		t.Fatalf("unexpected query scope: %+v", st.lastQuery)
	}
	want := []struct{ id, value string }{{"1", "H-1B"}}
	if len(out.Body) != len(want) || out.Body[0].ID != want[0].id || out.Body[0].Value != want[0].value {
		t.Fatalf("unexpected body: %+v", out.Body)
	}
	if !out.Body[0].IsActive {
		t.Fatal("item should be active")
	}
}

func TestListItemsRendersDisplayColumns(t *testing.T) {
	st := &fakeStore{rows: []map[string]any{
		{"country_id": 1, "name": "United States", "code": "US"},
	}}
	h := newHandler(st)

	out, err := h.listItems(context.Background(), &itemsInput{Table: "countries"})
	if err != nil {
		t.Fatalf("listItems: %v", err)
	}
	if got := out.Body[0].Display["Code"]; got != "US" {
		t.Fatalf("Code display = %q, want US", got)
	}
}

func TestListItemsServedFromCache(t *testing.T) {
	mr := miniredis.RunT(t)
	c := cache.New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	st := &fakeStore{rows: []map[string]any{
		{"id": 1, "name": "H-1B", "is_active": true},
	}}
	h := newHandler(st)
	h.Cache = c
	ctx := tenant.WithTenant(context.Background(), "t1")

	for i := 0; i < 2; i++ {
		out, err := h.listItems(ctx, &itemsInput{Table: "visa_statuses"})
		if err != nil {
			t.Fatalf("listItems #%d: %v", i+1, err)
		}
		if len(out.Body) != 1 || out.Body[0].Value != "H-1B" {
			t.Fatalf("listItems #%d body: %+v", i+1, out.Body)
		}
	}
	if st.lists != 1 {
		t.Fatalf("store lists = %d, want 1 (second read cached)", st.lists)
	}
}

func TestCreateItemDuplicateConflicts(t *testing.T) {
	st := &fakeStore{rows: []map[string]any{
		{"id": 1, "name": "Engineering", "is_active": true},
	}}
	h := newHandler(st)
	ctx := tenant.WithTenant(context.Background(), "t1")

	_, err := h.createItem(ctx, &createItemInput{Table: "departments", Body: schema.NewItem{Value: "engineering"}})
	if got := statusOf(t, err); got != 409 {
		t.Fatalf("status = %d, want 409", got)
	}
	if st.inserts != 0 {
		t.Fatalf("inserts = %d, duplicate must not reach the store", st.inserts)
	}
}

func TestCreateItemRejectsShortValue(t *testing.T) {
	h := newHandler(&fakeStore{})
	ctx := tenant.WithTenant(context.Background(), "t1")

	_, err := h.createItem(ctx, &createItemInput{Table: "departments", Body: schema.NewItem{Value: "A"}})
	if got := statusOf(t, err); got != 422 {
		t.Fatalf("status = %d, want 422", got)
	}
}

func TestCreateItemWithRelation(t *testing.T) {
	st := &fakeStore{nextRow: map[string]any{"city_id": 42, "name": "Paris", "state_id": 7}}
	h := newHandler(st)

	out, err := h.createItem(context.Background(), &createItemInput{
		Table: "cities",
		Body:  schema.NewItem{Value: "Paris", RelationID: "7"},
	})
	if err != nil {
		t.Fatalf("createItem: %v", err)
	}
	if out.Body.ID != "42" || out.Body.Value != "Paris" {
		t.Fatalf("unexpected body: %+v", out.Body)
	}
	if st.inserts != 1 {
		t.Fatalf("inserts = %d, want 1", st.inserts)
	}
}

func TestCreateItemMissingRelation(t *testing.T) {
	h := newHandler(&fakeStore{})

	_, err := h.createItem(context.Background(), &createItemInput{
		Table: "cities",
		Body:  schema.NewItem{Value: "Paris"},
	})
	if got := statusOf(t, err); got != 422 {
		t.Fatalf("status = %d, want 422", got)
	}
}

func TestToggleWithoutToggleColumn(t *testing.T) {
	st := &fakeStore{rows: []map[string]any{
		{"country_id": 1, "name": "France", "code": "FR"},
	}}
	h := newHandler(st)

	_, err := h.toggleItem(context.Background(), &itemIDInput{Table: "countries", ID: "1"})
	if got := statusOf(t, err); got != 422 {
		t.Fatalf("status = %d, want 422", got)
	}
}

func TestDeleteItem(t *testing.T) {
	st := &fakeStore{rows: []map[string]any{
		{"id": 1, "name": "Engineering", "is_active": true},
	}}
	h := newHandler(st)
	ctx := tenant.WithTenant(context.Background(), "t1")

	if _, err := h.deleteItem(ctx, &itemIDInput{Table: "departments", ID: "1"}); err != nil {
		t.Fatalf("deleteItem: %v", err)
	}
	if st.deletes != 1 {
		t.Fatalf("deletes = %d, want 1", st.deletes)
	}
}

func TestDeleteMissingItem(t *testing.T) {
	h := newHandler(&fakeStore{})
	ctx := tenant.WithTenant(context.Background(), "t1")

	_, err := h.deleteItem(ctx, &itemIDInput{Table: "departments", ID: "99"})
	if got := statusOf(t, err); got != 404 {
		t.Fatalf("status = %d, want 404", got)
	}
}

func TestListOptionsForRelationTable(t *testing.T) {
	st := &fakeStore{options: []refdata.Option{{ID: "1", Label: "California"}, {ID: "2", Label: "Texas"}}}
	h := newHandler(st)

	out, err := h.listOptions(context.Background(), &optionsInput{Table: "cities"})
	if err != nil {
		t.Fatalf("listOptions: %v", err)
	}
	if len(out.Body) != 2 || out.Body[0].Label != "California" {
		t.Fatalf("unexpected options: %+v", out.Body)
	}
}

func TestListOptionsWithoutRelation(t *testing.T) {
	h := newHandler(&fakeStore{})

	_, err := h.listOptions(context.Background(), &optionsInput{Table: "departments"})
	if got := statusOf(t, err); got != 404 {
		t.Fatalf("status = %d, want 404", got)
	}
}
