package refdata

import "testing"

func TestNormalizeRetainsKeyColumn(t *testing.T) {
	cfg := TableConfig{Table: "states", ValueColumn: "name"}
	it := Normalize(cfg, map[string]any{"state_id": int64(7), "name": "Texas", "code": "TX"})
	if it.KeyColumn != "state_id" {
		t.Fatalf("key column = %q, want state_id", it.KeyColumn)
	}
	if it.ID != "7" || it.Value != "Texas" {
		t.Fatalf("unexpected item: %+v", it)
	}
	if !it.IsActive {
		t.Fatal("items without a toggle column must default to active")
	}
}

func TestNormalizeToggleAndBusiness(t *testing.T) {
	cfg := TableConfig{Table: "visa_statuses", ValueColumn: "name", PrimaryKey: "id", ToggleColumn: "is_active"}
	it := Normalize(cfg, map[string]any{"id": int64(1), "name": "Approved", "is_active": false, "business_id": "b-1"})
	if it.IsActive {
		t.Fatal("toggle column not honoured")
	}
	if it.BusinessID != "b-1" {
		t.Fatalf("business id = %q", it.BusinessID)
	}
}

func TestDisplayColumnRender(t *testing.T) {
	raw := map[string]any{"country_id": int64(2), "name": "India", "code": "IN"}
	byColumn := DisplayColumn{Label: "Code", Column: "code"}
	if got := byColumn.Render(raw); got != "IN" {
		t.Fatalf("column render = %q", got)
	}
	byFunc := DisplayColumn{Label: "Code", Accessor: func(r map[string]any) string {
		return "[" + stringify(r["code"]) + "]"
	}}
	if got := byFunc.Render(raw); got != "[IN]" {
		t.Fatalf("accessor render = %q", got)
	}
}
