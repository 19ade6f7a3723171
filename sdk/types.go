package sdk

import "github.com/refdata-dev/reftab/internal/refdata"

// Item is a normalized reference row.
type Item = refdata.Item

// Option is a selectable parent entity for relation dependent tables.
type Option = refdata.Option

// Business is a tenant sub-unit.
type Business = refdata.Business

// TableInfo describes one catalogued table.
type TableInfo struct {
	Key          string   `json:"key"`
	Scoped       bool     `json:"scoped"`
	HasToggle    bool     `json:"has_toggle"`
	HideIDColumn bool     `json:"hide_id_column"`
	Relation     string   `json:"relation,omitempty"`
	Display      []string `json:"display,omitempty"`
}
