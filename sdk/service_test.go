package sdk

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/refdata-dev/reftab/internal/refdata"
)

type fakeStore struct {
	rows    []map[string]any
	options []refdata.Option
}

func (f *fakeStore) List(ctx context.Context, table string, q refdata.ListQuery) ([]map[string]any, error) {
	return f.rows, nil
}

func (f *fakeStore) Insert(ctx context.Context, table, keyHint string, payload map[string]any) (map[string]any, error) {
	row := map[string]any{keyHint: "9"}
	for k, v := range payload {
		row[k] = v
	}
	return row, nil
}

func (f *fakeStore) Update(ctx context.Context, table, keyColumn, id, tenantID string, changes map[string]any) error {
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, table, keyColumn, id, tenantID string) error {
	return nil
}

func (f *fakeStore) ListOptions(ctx context.Context, table, keyColumn, labelColumn string) ([]refdata.Option, error) {
	return f.options, nil
}

type fakeBusinesses struct{}

func (fakeBusinesses) ListBusinesses(ctx context.Context, tenantID string) ([]refdata.Business, error) {
	return []refdata.Business{{ID: "b1", Name: "Main"}}, nil
}

func newTestService(st refdata.Store) *service {
	return &service{
		logger:     zap.NewNop().Sugar(),
		registry:   refdata.Default(),
		store:      st,
		businesses: fakeBusinesses{},
		mocks:      refdata.NewMockStores(),
	}
}

func TestTablesCatalogue(t *testing.T) {
	s := newTestService(&fakeStore{})
	tables := s.Tables()
	if len(tables) == 0 {
		t.Fatal("no tables")
	}
	found := false
	for _, tbl := range tables {
		if tbl.Key == "states" {
			found = true
			if tbl.Relation != "country" {
				t.Fatalf("states relation = %q", tbl.Relation)
			}
		}
	}
	if !found {
		t.Fatal("states missing from catalogue")
	}
}

func TestListItemsResolvesBusinessScope(t *testing.T) {
	st := &fakeStore{rows: []map[string]any{
		{"id": 1, "name": "H-1B", "is_active": true},
	}}
	s := newTestService(st)

	items, err := s.ListItems(context.Background(), "t1", "visa_statuses", "")
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 1 || items[0].Value != "H-1B" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestMockTableMutationsSurviveAcrossCalls(t *testing.T) {
	ctx := context.Background()
	s := newTestService(&fakeStore{})

	added, err := s.AddItem(ctx, "t1", "leave_types", "Sabbatical", "", "")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	items, err := s.ListItems(ctx, "t1", "leave_types", "")
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 4 {
		t.Fatalf("items after add = %d, want 4", len(items))
	}
	found := false
	for _, it := range items {
		if it.ID == added.ID && it.Value == "Sabbatical" {
			found = true
		}
	}
	if !found {
		t.Fatalf("added item missing from subsequent list: %+v", items)
	}
}

func TestAddItemValidates(t *testing.T) {
	s := newTestService(&fakeStore{})
	if _, err := s.AddItem(context.Background(), "t1", "departments", "A", "", ""); err == nil {
		t.Fatal("short value accepted")
	}
}

func TestAddItemWithRelation(t *testing.T) {
	s := newTestService(&fakeStore{})
	it, err := s.AddItem(context.Background(), "", "cities", "Lyon", "", "7")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if it.Value != "Lyon" {
		t.Fatalf("unexpected item: %+v", it)
	}
}
