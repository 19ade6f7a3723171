package refdata

import "testing"

func TestDefaultRegistry(t *testing.T) {
	reg := Default()
	cfg, ok := reg.Lookup("states")
	if !ok {
		t.Fatal("states missing from default registry")
	}
	if cfg.Relation == nil || cfg.Relation.FKColumn != "country_id" {
		t.Fatalf("states relation misconfigured: %+v", cfg.Relation)
	}
	if cfg.Scoped {
		t.Fatal("states must be global")
	}
	cfg, ok = reg.Lookup("countries")
	if !ok || !cfg.HideIDColumn {
		t.Fatalf("countries must hide the id column: %+v", cfg)
	}
	if _, ok := reg.Lookup("no_such_table"); ok {
		t.Fatal("unknown key resolved unexpectedly")
	}
}

func TestLoadOverlay(t *testing.T) {
	reg := Default()
	overlay := []byte(`
benefit_plans:
  table: benefit_plans
  value_column: name
  primary_key: id
  scoped: true
  toggle_column: is_active
  sort_column: name
  display:
    - label: Provider
      column: provider
`)
	if err := reg.LoadOverlay(overlay); err != nil {
		t.Fatalf("overlay: %v", err)
	}
	cfg, ok := reg.Lookup("benefit_plans")
	if !ok {
		t.Fatal("overlay table not registered")
	}
	if !cfg.Scoped || cfg.ToggleColumn != "is_active" {
		t.Fatalf("overlay flags lost: %+v", cfg)
	}
	if len(cfg.Display) != 1 || cfg.Display[0].Column != "provider" {
		t.Fatalf("overlay display columns lost: %+v", cfg.Display)
	}
}

func TestLoadOverlayRejectsIncomplete(t *testing.T) {
	reg := Default()
	if err := reg.LoadOverlay([]byte("bad:\n  value_column: name\n")); err == nil {
		t.Fatal("overlay without table name accepted")
	}
	if err := reg.LoadOverlay([]byte("bad:\n  table: bad\n")); err == nil {
		t.Fatal("overlay without value column accepted")
	}
}
