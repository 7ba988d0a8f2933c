package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/carhome/carhome/internal/httpx"
	"github.com/carhome/carhome/internal/services"
)

type CatalogHandler struct {
	Catalog *services.CatalogService
}

func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{Catalog: catalog}
}

func (h *CatalogHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /catalog", h.list)
	mux.HandleFunc("/car-filter", h.filter)
	mux.HandleFunc("GET /car/{id}", h.detail)
}

func (h *CatalogHandler) list(w http.ResponseWriter, r *http.Request) {
	cars, err := h.Catalog.All()
	if err != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	renderTemplate(w, r, "catalog", map[string]any{"Cars": cars})
}

// filter renders the filter form on GET and the filtered result set on
// POST. Absent fields contribute no predicate, so an empty form returns
// the whole catalog.
func (h *CatalogHandler) filter(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "car-filter", nil)
		return
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET,POST")
		httpx.Text(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.Text(w, http.StatusBadRequest, "invalid form")
		return
	}
	f := services.CarFilter{
		Brand:      strings.TrimSpace(r.FormValue("brand")),
		Color:      strings.TrimSpace(r.FormValue("color")),
		BodyType:   strings.TrimSpace(r.FormValue("body_type")),
		EngineType: strings.TrimSpace(r.FormValue("engine_type")),
		DriveType:  strings.TrimSpace(r.FormValue("drive_type")),
		Search:     strings.TrimSpace(r.FormValue("search")),
	}
	if v := r.FormValue("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httpx.Text(w, http.StatusBadRequest, "invalid year")
			return
		}
		f.Year = n
	}
	if v := r.FormValue("price"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			httpx.Text(w, http.StatusBadRequest, "invalid price")
			return
		}
		f.MaxPrice = p
	}
	cars, err := h.Catalog.List(f)
	if err != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	renderTemplate(w, r, "car-filter-results", map[string]any{"Cars": cars})
}

func (h *CatalogHandler) detail(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.Text(w, http.StatusBadRequest, "invalid car id")
		return
	}
	car, err := h.Catalog.Get(uint(id))
	if errors.Is(err, services.ErrNotFound) {
		httpx.Text(w, http.StatusNotFound, "car not found")
		return
	}
	if err != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	renderTemplate(w, r, "car-details", map[string]any{"Car": car})
}
