package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/carhome/carhome/internal/auth"
	"github.com/carhome/carhome/internal/httpx"
	"github.com/carhome/carhome/internal/services"
)

const dateLayout = "2006-01-02"

type TestDriveHandler struct {
	Catalog  *services.CatalogService
	Bookings *services.BookingService
}

func NewTestDriveHandler(catalog *services.CatalogService, bookings *services.BookingService) *TestDriveHandler {
	return &TestDriveHandler{Catalog: catalog, Bookings: bookings}
}

// Page lists the cars open for booking.
func (h *TestDriveHandler) Page(w http.ResponseWriter, r *http.Request) {
	cars, err := h.Catalog.Available()
	if err != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	renderTemplate(w, r, "test-drive", map[string]any{"Cars": cars})
}

// Book creates a booking for the session user.
func (h *TestDriveHandler) Book(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.Text(w, http.StatusBadRequest, "invalid form")
		return
	}
	carID, _ := strconv.Atoi(r.FormValue("car_id"))
	dateStr := r.FormValue("date")
	if carID <= 0 || dateStr == "" {
		httpx.Text(w, http.StatusBadRequest, "car and date are required")
		return
	}
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		httpx.Text(w, http.StatusBadRequest, "invalid date")
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	_, err = h.Bookings.Book(uid, uint(carID), date)
	switch {
	case errors.Is(err, services.ErrPastDate):
		httpx.Text(w, http.StatusBadRequest, "date cannot be in the past")
		return
	case errors.Is(err, services.ErrAlreadyBooked):
		httpx.Text(w, http.StatusConflict, "you already have a test drive for this car on this date")
		return
	case errors.Is(err, services.ErrNotFound):
		httpx.Text(w, http.StatusNotFound, "car not found")
		return
	case err != nil:
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	http.Redirect(w, r, "/account", statusSeeOther)
}

// Cancel deletes the session user's own booking.
func (h *TestDriveHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.Text(w, http.StatusBadRequest, "invalid form")
		return
	}
	id, _ := strconv.Atoi(r.FormValue("test_drive_id"))
	if id <= 0 {
		httpx.Text(w, http.StatusBadRequest, "invalid test drive id")
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	err := h.Bookings.Cancel(uid, uint(id))
	if errors.Is(err, services.ErrNotFound) {
		httpx.Text(w, http.StatusNotFound, "test drive not found")
		return
	}
	if err != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	http.Redirect(w, r, "/account", statusSeeOther)
}
