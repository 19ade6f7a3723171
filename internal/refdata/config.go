// Package refdata implements configuration driven CRUD over reference
// (lookup) tables: one declarative TableConfig per logical table instead of
// one bespoke code path per table.
package refdata

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Column names shared by all tenant scoped reference tables.
const (
	TenantColumn   = "tenant_id"
	BusinessColumn = "business_id"
)

// RelationSpec marks a table whose rows must reference a parent entity
// selected before creation, e.g. a state requires a country.
type RelationSpec struct {
	Name        string `yaml:"name"`
	FKColumn    string `yaml:"fk_column"`
	OptionTable string `yaml:"option_table"`
	OptionKey   string `yaml:"option_key"`
	OptionLabel string `yaml:"option_label"`
}

// DisplayColumn is an additional derived column rendered next to the value.
// Accessor takes precedence over Column; YAML-registered tables can only use
// Column since functions cannot be declared there.
type DisplayColumn struct {
	Label    string                     `yaml:"label"`
	Column   string                     `yaml:"column"`
	Accessor func(raw map[string]any) string `yaml:"-"`
}

// Render resolves the display value for a raw row.
func (d DisplayColumn) Render(raw map[string]any) string {
	if d.Accessor != nil {
		return d.Accessor(raw)
	}
	return stringify(raw[d.Column])
}

// TableConfig describes how one reference table is read and written.
type TableConfig struct {
	// Table is the physical table name.
	Table string `yaml:"table"`
	// ValueColumn holds the display value of a row.
	ValueColumn string `yaml:"value_column"`
	// PrimaryKey names the key column explicitly. When empty the column is
	// inferred per row at fetch time (see ResolveKeyColumn); inference is a
	// diagnostic fallback, not the intended steady state.
	PrimaryKey string `yaml:"primary_key"`
	// KeyCandidates are tried first when PrimaryKey is empty.
	KeyCandidates []string `yaml:"key_candidates"`
	// Scoped marks the table as tenant/business scoped. Global tables
	// (countries, states, cities) are shared across tenants.
	Scoped bool `yaml:"scoped"`
	// HideIDColumn hides the synthetic numeric id column in list output.
	HideIDColumn bool `yaml:"hide_id_column"`
	// ToggleColumn is the optional boolean active/inactive column.
	ToggleColumn string `yaml:"toggle_column"`
	SortColumn   string `yaml:"sort_column"`
	SortDesc     bool   `yaml:"sort_desc"`
	// StaticFilters are equality predicates applied to every read.
	StaticFilters map[string]any `yaml:"static_filters"`
	// InsertDefaults are merged into every insert payload.
	InsertDefaults map[string]any `yaml:"insert_defaults"`
	// SelectColumns limits the read projection; empty means all columns.
	SelectColumns []string        `yaml:"select_columns"`
	Relation      *RelationSpec   `yaml:"relation"`
	Display       []DisplayColumn `yaml:"display"`
}

// Registry resolves logical table keys to their configuration.
type Registry struct {
	tables map[string]TableConfig
}

// NewRegistry returns a registry seeded with the given configurations.
func NewRegistry(tables map[string]TableConfig) *Registry {
	m := make(map[string]TableConfig, len(tables))
	for k, v := range tables {
		m[k] = v
	}
	return &Registry{tables: m}
}

// Default returns the built-in table catalogue.
func Default() *Registry {
	return NewRegistry(map[string]TableConfig{
		"visa_statuses": {
			Table:          "visa_statuses",
			ValueColumn:    "name",
			PrimaryKey:     "id",
			Scoped:         true,
			ToggleColumn:   "is_active",
			SortColumn:     "name",
			InsertDefaults: map[string]any{"is_active": true},
		},
		"job_titles": {
			Table:          "job_titles",
			ValueColumn:    "name",
			PrimaryKey:     "id",
			Scoped:         true,
			ToggleColumn:   "is_active",
			SortColumn:     "name",
			InsertDefaults: map[string]any{"is_active": true},
		},
		"document_types": {
			Table:          "document_types",
			ValueColumn:    "name",
			PrimaryKey:     "id",
			Scoped:         true,
			ToggleColumn:   "is_active",
			SortColumn:     "name",
			InsertDefaults: map[string]any{"category": "general", "is_active": true},
		},
		"departments": {
			Table:          "departments",
			ValueColumn:    "name",
			PrimaryKey:     "id",
			Scoped:         true,
			ToggleColumn:   "is_active",
			SortColumn:     "name",
			InsertDefaults: map[string]any{"is_active": true},
		},
		"countries": {
			Table:        "countries",
			ValueColumn:  "name",
			PrimaryKey:   "country_id",
			HideIDColumn: true,
			SortColumn:   "name",
			Display: []DisplayColumn{
				{Label: "Code", Column: "code"},
			},
		},
		"states": {
			Table:       "states",
			ValueColumn: "name",
			PrimaryKey:  "state_id",
			SortColumn:  "name",
			Relation: &RelationSpec{
				Name:        "country",
				FKColumn:    "country_id",
				OptionTable: "countries",
				OptionKey:   "country_id",
				OptionLabel: "name",
			},
			Display: []DisplayColumn{
				{Label: "Code", Column: "code"},
			},
		},
		"cities": {
			Table:       "cities",
			ValueColumn: "name",
			PrimaryKey:  "city_id",
			SortColumn:  "name",
			Relation: &RelationSpec{
				Name:        "state",
				FKColumn:    "state_id",
				OptionTable: "states",
				OptionKey:   "state_id",
				OptionLabel: "name",
			},
		},
	})
}

// Lookup returns the configuration for a logical table key. ok is false for
// uncatalogued keys, which callers treat as mock, non remote-backed tables.
func (r *Registry) Lookup(key string) (TableConfig, bool) {
	cfg, ok := r.tables[key]
	return cfg, ok
}

// Keys returns the catalogued table keys in sorted order.
func (r *Registry) Keys() []string {
	out := make([]string, 0, len(r.tables))
	for k := range r.tables {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LoadOverlay registers additional table configurations from YAML. Existing
// keys are overridden, which lets deployments adjust the built-ins without a
// rebuild.
func (r *Registry) LoadOverlay(data []byte) error {
	var overlay map[string]TableConfig
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parse table overlay: %w", err)
	}
	for k, cfg := range overlay {
		if cfg.Table == "" {
			return fmt.Errorf("table overlay %q: missing table name", k)
		}
		if cfg.ValueColumn == "" {
			return fmt.Errorf("table overlay %q: missing value_column", k)
		}
		r.tables[k] = cfg
	}
	return nil
}
