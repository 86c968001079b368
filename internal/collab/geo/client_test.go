package geo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/lookup/203.0.113.10" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(Location{Country: "NL", City: "Amsterdam"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	loc, err := c.Lookup(context.Background(), "203.0.113.10")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if loc.Country != "NL" || loc.City != "Amsterdam" {
		t.Errorf("unexpected location %+v", loc)
	}
}

func TestLookup_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if _, err := c.Lookup(context.Background(), "203.0.113.10"); err == nil {
		t.Error("expected error on 500 response")
	}
}

func TestLookup_RespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := New(srv.URL)
	if _, err := c.Lookup(ctx, "203.0.113.10"); err == nil {
		t.Error("expected error when context deadline passes")
	}
}
