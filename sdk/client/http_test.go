package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestListItemsSendsScope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/reference-tables/departments/items" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("X-Tenant-ID"); got != "t1" {
			t.Errorf("tenant header = %q", got)
		}
		if got := r.URL.Query().Get("business_id"); got != "b1" {
			t.Errorf("business_id = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]Item{{ID: "1", Value: "Engineering", IsActive: true}})
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL, WithTenant("t1"))
	items, err := c.ListItems(context.Background(), "departments", "b1")
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 1 || items[0].Value != "Engineering" {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestAddItemPostsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["value"] != "Paris" || body["relation_id"] != "7" {
			t.Errorf("unexpected body: %v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Item{ID: "42", Value: "Paris"})
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL)
	it, err := c.AddItem(context.Background(), "cities", "Paris", "", "7")
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if it.ID != "42" {
		t.Fatalf("unexpected item: %+v", it)
	}
}

func TestErrorStatusSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"title":"Conflict"}`, http.StatusConflict)
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL)
	if _, err := c.AddItem(context.Background(), "departments", "Engineering", "", ""); err == nil {
		t.Fatal("expected error for 409 response")
	}
}

func TestDeleteItem(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewHTTP(srv.URL, WithToken("tok"))
	if err := c.DeleteItem(context.Background(), "departments", "1", ""); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
}
