package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/carhome/carhome/internal/services"
)

func TestCatalogDetail(t *testing.T) {
	db := setupTestDB(t)
	car := createCar(t, db, "Toyota", "Corolla", "white")
	h := NewCatalogHandler(services.NewCatalogService(db))

	req := httptest.NewRequest(http.MethodGet, "/car/"+strconv.Itoa(int(car.ID)), nil)
	req.SetPathValue("id", strconv.Itoa(int(car.ID)))
	rec := httptest.NewRecorder()
	h.detail(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Corolla") {
		t.Fatalf("model name missing from page")
	}

	req = httptest.NewRequest(http.MethodGet, "/car/999", nil)
	req.SetPathValue("id", "999")
	rec = httptest.NewRecorder()
	h.detail(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/car/abc", nil)
	req.SetPathValue("id", "abc")
	rec = httptest.NewRecorder()
	h.detail(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}
}

func TestCarFilterEmptyFormReturnsAll(t *testing.T) {
	db := setupTestDB(t)
	createCar(t, db, "Toyota", "Corolla", "white")
	createCar(t, db, "BMW", "320i", "black")
	h := NewCatalogHandler(services.NewCatalogService(db))

	rec := httptest.NewRecorder()
	h.filter(rec, formRequest("/car-filter", url.Values{}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Corolla") || !strings.Contains(body, "320i") {
		t.Fatal("empty filter must return the whole catalog")
	}
}

func TestCarFilterApplied(t *testing.T) {
	db := setupTestDB(t)
	createCar(t, db, "Toyota", "Corolla", "white")
	createCar(t, db, "BMW", "320i", "black")
	h := NewCatalogHandler(services.NewCatalogService(db))

	rec := httptest.NewRecorder()
	h.filter(rec, formRequest("/car-filter", url.Values{"color": {"black"}}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "Corolla") || !strings.Contains(body, "320i") {
		t.Fatalf("filter not applied: %s", body)
	}
}

func TestCarFilterRejectsBadNumbers(t *testing.T) {
	db := setupTestDB(t)
	h := NewCatalogHandler(services.NewCatalogService(db))

	rec := httptest.NewRecorder()
	h.filter(rec, formRequest("/car-filter", url.Values{"year": {"twenty"}}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad year, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.filter(rec, formRequest("/car-filter", url.Values{"price": {"cheap"}}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad price, got %d", rec.Code)
	}
}
