package refdata

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// fixtures seed the mock store for table keys that have no remote-backed
// configuration yet. This lets callers demo such tables without branching.
var fixtures = map[string][]string{
	"expense_categories": {"Travel", "Relocation", "Training"},
	"leave_types":        {"Annual", "Sick", "Parental"},
}

var defaultFixture = []string{"Sample Item 1", "Sample Item 2", "Sample Item 3"}

// fixtureFor returns the seed values for an uncatalogued table key.
func fixtureFor(key string) []string {
	if vals, ok := fixtures[key]; ok {
		return vals
	}
	return defaultFixture
}

// mockConfig is the synthetic configuration used for uncatalogued tables.
func mockConfig(key string) TableConfig {
	return TableConfig{
		Table:          key,
		ValueColumn:    "name",
		PrimaryKey:     "id",
		ToggleColumn:   "is_active",
		SortColumn:     "name",
		InsertDefaults: map[string]any{"is_active": true},
	}
}

// MockStores hands out one MockStore per table key so mutations made through
// one editor remain visible to editors built later in the same process. Hold
// one instance per service and pass it to NewEditor via WithMockStores.
type MockStores struct {
	mu     sync.Mutex
	stores map[string]*MockStore
}

// NewMockStores returns an empty shared mock store registry.
func NewMockStores() *MockStores {
	return &MockStores{stores: make(map[string]*MockStore)}
}

// For returns the shared store for key, seeding it from the fixture on first
// use.
func (m *MockStores) For(key string) *MockStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stores[key]
	if !ok {
		s = NewMockStore(key)
		m.stores[key] = s
	}
	return s
}

// MockStore keeps rows purely in memory. It backs uncatalogued tables and is
// also handy in tests.
type MockStore struct {
	mu   sync.Mutex
	rows map[string][]map[string]any
}

// NewMockStore returns a MockStore seeded from the fixture for key.
func NewMockStore(key string) *MockStore {
	s := &MockStore{rows: make(map[string][]map[string]any)}
	for _, v := range fixtureFor(key) {
		s.rows[key] = append(s.rows[key], map[string]any{
			"id":        uuid.NewString(),
			"name":      v,
			"is_active": true,
		})
	}
	return s
}

func (s *MockStore) List(_ context.Context, table string, q ListQuery) ([]map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, 0, len(s.rows[table]))
	for _, r := range s.rows[table] {
		out = append(out, cloneRow(r))
	}
	if q.OrderBy != "" {
		sort.SliceStable(out, func(i, j int) bool {
			a := strings.ToLower(stringify(out[i][q.OrderBy]))
			b := strings.ToLower(stringify(out[j][q.OrderBy]))
			if q.Desc {
				return a > b
			}
			return a < b
		})
	}
	return out, nil
}

func (s *MockStore) Insert(_ context.Context, table, _ string, payload map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := cloneRow(payload)
	if _, ok := row["id"]; !ok {
		row["id"] = uuid.NewString()
	}
	s.rows[table] = append(s.rows[table], row)
	return cloneRow(row), nil
}

func (s *MockStore) Update(_ context.Context, table, keyColumn, id, _ string, changes map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rows[table] {
		if stringify(r[keyColumn]) == id {
			for k, v := range changes {
				r[k] = v
			}
			return nil
		}
	}
	return ErrNotFound
}

func (s *MockStore) Delete(_ context.Context, table, keyColumn, id, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.rows[table]
	for i, r := range rows {
		if stringify(r[keyColumn]) == id {
			s.rows[table] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MockStore) ListOptions(_ context.Context, table, keyColumn, labelColumn string) ([]Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Option, 0, len(s.rows[table]))
	for _, r := range s.rows[table] {
		out = append(out, Option{ID: stringify(r[keyColumn]), Label: stringify(r[labelColumn])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func cloneRow(r map[string]any) map[string]any {
	out := make(map[string]any, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
