package handlers

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/carhome/carhome/internal/auth"
	"github.com/carhome/carhome/internal/httpx"
	"github.com/carhome/carhome/internal/models"
	"github.com/carhome/carhome/internal/services"
	"github.com/carhome/carhome/internal/validation"
	"github.com/carhome/carhome/internal/view"
)

// Explicit constant for 303 See Other (Post/Redirect/Get)
const statusSeeOther = 303

type AuthHandler struct {
	DB       *gorm.DB
	Bookings *services.BookingService
}

func NewAuthHandler(db *gorm.DB, bookings *services.BookingService) *AuthHandler {
	return &AuthHandler{DB: db, Bookings: bookings}
}

func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/register", h.register)
	mux.HandleFunc("/login", h.login)
	mux.HandleFunc("GET /logout", h.logout)
}

// renderTemplate uses the shared view.Render to ensure layout and partials.
func renderTemplate(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	if err := view.Render(w, r, name+".html", data); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		if _, werr := w.Write([]byte("template error")); werr != nil {
			_ = werr
		}
	}
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		renderTemplate(w, r, "register", nil)
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
	fullName := strings.TrimSpace(r.FormValue("full_name"))
	phone := strings.TrimSpace(r.FormValue("phone"))
	email := strings.TrimSpace(r.FormValue("email"))
	pass := r.FormValue("password")
	v := validation.Violations{}
	validation.Required("full_name", fullName, v)
	validation.Required("phone", phone, v)
	validation.Required("email", email, v)
	validation.Required("password", pass, v)
	if !v.Empty() {
		renderTemplate(w, r, "register", map[string]any{"Errors": v})
		return
	}
	var existing models.User
	if err := h.DB.Where("email = ? OR phone = ?", email, phone).First(&existing).Error; err == nil {
		field := "phone number"
		if existing.Email == email {
			field = "email"
		}
		httpx.Text(w, http.StatusBadRequest, "a user with this "+field+" already exists")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	user := models.User{FullName: fullName, Phone: phone, Email: email, Password: string(hash), Role: models.RoleCustomer}
	if err := h.DB.Create(&user).Error; err != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	http.Redirect(w, r, "/login", statusSeeOther)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		if uid, ok := auth.UserIDFromContext(r.Context()); ok && uid != 0 {
			var count int64
			if err := h.DB.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err == nil && count > 0 {
				http.Redirect(w, r, "/", http.StatusSeeOther)
				return
			}
			// Stale session: clear and continue to render login
			auth.ClearSession(w)
		}
		renderTemplate(w, r, "login", nil)
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
	email := strings.TrimSpace(r.FormValue("email"))
	pass := r.FormValue("password")
	if email == "" || pass == "" {
		renderTemplate(w, r, "login", map[string]any{"Error": "email and password required"})
		return
	}
	var user models.User
	if err := h.DB.Where("email = ?", email).First(&user).Error; err != nil {
		httpx.Text(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(pass)) != nil {
		httpx.Text(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	auth.CreateSession(w, user.ID)
	http.Redirect(w, r, "/", statusSeeOther)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Account renders the profile page with the user's bookings.
func (h *AuthHandler) Account(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var user models.User
	if err := h.DB.First(&user, uid).Error; err != nil {
		httpx.Text(w, http.StatusNotFound, "user not found")
		return
	}
	drives, err := h.Bookings.ListForUser(uid)
	if err != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	renderTemplate(w, r, "account", map[string]any{"User": user, "TestDrives": drives})
}

// UpdateUser is the self-service name/phone update.
func (h *AuthHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.Text(w, http.StatusBadRequest, "invalid form")
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	name := strings.TrimSpace(r.FormValue("name"))
	phone := strings.TrimSpace(r.FormValue("phone"))
	err := h.DB.Model(&models.User{}).Where("id = ?", uid).
		Updates(map[string]any{"full_name": name, "phone": phone}).Error
	if err != nil {
		httpx.Text(w, http.StatusInternalServerError, "could not update profile")
		return
	}
	http.Redirect(w, r, "/account", statusSeeOther)
}

// GetUser returns the session user as JSON; the single JSON endpoint of
// the app outside health checks.
func (h *AuthHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	var user models.User
	if err := h.DB.First(&user, uid).Error; err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": user.ID, "email": user.Email, "role": user.Role})
}
