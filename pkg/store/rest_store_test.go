package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"littleforest/pkg/domain"
	"littleforest/pkg/postgrest"
)

const productID = "3f2b8c1e-6d4a-4f0e-9a51-2c7e8b9d0a11"

func newRestStore(t *testing.T, h http.HandlerFunc) *RestStore {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	client, err := postgrest.New(postgrest.Config{ProjectURL: srv.URL, AnonKey: "anon", ServiceKey: "service"})
	if err != nil {
		t.Fatalf("new postgrest client: %v", err)
	}
	return NewRestStore(client)
}

func TestRestStoreGetMapsNoRowsToNotFound(t *testing.T) {
	s := newRestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("id"); got != "eq."+productID {
			t.Errorf("id filter = %q", got)
		}
		w.WriteHeader(http.StatusNotAcceptable)
		_, _ = io.WriteString(w, `{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned"}`)
	})
	_, ok, err := s.GetProduct(context.Background(), productID)
	if err != nil || ok {
		t.Fatalf("expected not found, ok=%v err=%v", ok, err)
	}
}

func TestRestStoreGetDecodesLocalTimestamps(t *testing.T) {
	s := newRestStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"id":"`+productID+`","name":"Mukau Seedling","category":"Indigenous Trees","price":"KSh 250","status":"active","featured":false,"stock_quantity":12,"created_at":"2025-03-01T08:30:00.123456","updated_at":null}`)
	})
	p, ok, err := s.GetProduct(context.Background(), productID)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	want := time.Date(2025, 3, 1, 8, 30, 0, 123456000, time.UTC)
	if !p.CreatedAt.Equal(want) {
		t.Fatalf("created_at = %v, want %v", p.CreatedAt, want)
	}
	if p.StockQuantity != 12 || p.Status != domain.ProductActive {
		t.Fatalf("unexpected product: %+v", p)
	}
}

func TestRestStoreServiceFaultIsUnavailable(t *testing.T) {
	s := newRestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	_, err := s.ListProducts(context.Background(), ProductFilter{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	_, _, err = s.GetProduct(context.Background(), productID)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on get, got %v", err)
	}
}

func TestRestStoreCreateConflict(t *testing.T) {
	s := newRestStore(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["id"]; ok {
			t.Errorf("insert must leave id to the database: %v", body)
		}
		if _, ok := body["created_at"]; ok {
			t.Errorf("insert must leave created_at to the database: %v", body)
		}
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"code":"23505","message":"duplicate key value violates unique constraint \"profiles_email_key\""}`)
	})
	_, err := s.CreateProfile(context.Background(), domain.Profile{Email: "a@example.com", Role: domain.RoleUser})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestRestStoreUpdateSendsOnlyPatchedFields(t *testing.T) {
	s := newRestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s", r.Method)
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body) != 2 || body["price"] != "KSh 300" || body["updated_at"] == nil {
			t.Errorf("unexpected patch body: %v", body)
		}
		_, _ = io.WriteString(w, `[{"id":"`+productID+`","name":"Mukau Seedling","price":"KSh 300","created_at":"2025-03-01T08:30:00+00:00"}]`)
	})
	price := "KSh 300"
	p, ok, err := s.UpdateProduct(context.Background(), productID, domain.ProductPatch{Price: &price})
	if err != nil || !ok || p.Price != "KSh 300" {
		t.Fatalf("update: %+v ok=%v err=%v", p, ok, err)
	}
}

func TestRestStoreUpdateAndDeleteMissingRow(t *testing.T) {
	s := newRestStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})
	name := "x"
	if _, ok, err := s.UpdateTestimonial(context.Background(), productID, domain.TestimonialPatch{Name: &name}); err != nil || ok {
		t.Fatalf("update missing: ok=%v err=%v", ok, err)
	}
	removed, err := s.DeleteProduct(context.Background(), productID)
	if err != nil || removed {
		t.Fatalf("delete missing: removed=%v err=%v", removed, err)
	}
	if _, ok, err := s.GetProfileByEmail(context.Background(), "nobody@example.com"); err != nil || ok {
		t.Fatalf("email lookup on empty array: ok=%v err=%v", ok, err)
	}
}

func TestRestStoreAdminUserKeepsPasswordHash(t *testing.T) {
	s := newRestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("email"); got != "ilike.admin@example.com" {
			t.Errorf("email filter = %q", got)
		}
		_, _ = io.WriteString(w, `[{"id":"a1","email":"admin@example.com","password_hash":"$2a$10$abc","created_at":"2025-01-01T00:00:00Z"}]`)
	})
	u, ok, err := s.GetAdminUserByEmail(context.Background(), "admin@example.com")
	if err != nil || !ok || u.PasswordHash != "$2a$10$abc" {
		t.Fatalf("admin lookup: %+v ok=%v err=%v", u, ok, err)
	}
}
