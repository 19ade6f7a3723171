// Package schema defines the request and response bodies of the reference
// table API.
package schema

// ReferenceTable describes one catalogued table to clients.
type ReferenceTable struct {
	Key          string   `json:"key"`
	Scoped       bool     `json:"scoped"`
	HasToggle    bool     `json:"has_toggle"`
	HideIDColumn bool     `json:"hide_id_column"`
	Relation     string   `json:"relation,omitempty"`
	Display      []string `json:"display,omitempty"`
	Catalogued   bool     `json:"catalogued"`
}

// ReferenceItem is the API projection of a reference row. Display carries
// the derived columns configured for the table, keyed by label.
type ReferenceItem struct {
	ID         string            `json:"id"`
	Value      string            `json:"value"`
	BusinessID string            `json:"business_id,omitempty"`
	IsActive   bool              `json:"is_active"`
	Display    map[string]string `json:"display,omitempty"`
}

// NewItem is the create request body.
type NewItem struct {
	Value      string `json:"value"`
	BusinessID string `json:"business_id,omitempty"`
	RelationID string `json:"relation_id,omitempty"`
}

// ItemEdit is the update request body.
type ItemEdit struct {
	Value string `json:"value"`
}

// Business is the API projection of a tenant sub-unit.
type Business struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// NewBusiness is the create request body for businesses.
type NewBusiness struct {
	Name string `json:"name" minLength:"2" maxLength:"100"`
}

// Option is a selectable parent entity for relation-dependent tables.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}
