package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/carhome/carhome/internal/httpx"
	"github.com/carhome/carhome/internal/models"
	"github.com/carhome/carhome/internal/services"
	"github.com/carhome/carhome/internal/validation"
)

type AdminHandler struct {
	DB        *gorm.DB
	Catalog   *services.CatalogService
	Inventory *services.InventoryService
	Bookings  *services.BookingService
}

func NewAdminHandler(db *gorm.DB, catalog *services.CatalogService, inventory *services.InventoryService, bookings *services.BookingService) *AdminHandler {
	return &AdminHandler{DB: db, Catalog: catalog, Inventory: inventory, Bookings: bookings}
}

// Panel renders the default (cars) section.
func (h *AdminHandler) Panel(w http.ResponseWriter, r *http.Request) {
	cars, err := h.Catalog.All()
	if err != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	renderTemplate(w, r, "admin-panel", map[string]any{"Section": "cars", "Cars": cars})
}

// Section renders one admin panel section; unknown sections bounce back
// to cars.
func (h *AdminHandler) Section(w http.ResponseWriter, r *http.Request) {
	section := r.PathValue("section")
	data := map[string]any{"Section": section}
	switch section {
	case "cars":
		cars, err := h.Catalog.All()
		if err != nil {
			httpx.Text(w, http.StatusInternalServerError, "server error")
			return
		}
		data["Cars"] = cars
	case "users":
		var users []models.User
		if err := h.DB.Select("id", "full_name", "email", "role").Find(&users).Error; err != nil {
			httpx.Text(w, http.StatusInternalServerError, "server error")
			return
		}
		data["Users"] = users
	case "test-drives":
		drives, err := h.Bookings.AdminList()
		if err != nil {
			httpx.Text(w, http.StatusInternalServerError, "server error")
			return
		}
		data["TestDrives"] = drives
	default:
		http.Redirect(w, r, "/admin-panel/cars", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "admin-panel", data)
}

// formLists loads the dimension rows the car forms offer as choices.
func (h *AdminHandler) formLists() (map[string]any, error) {
	var brands []models.Brand
	var colors []models.Color
	var bodyTypes []models.BodyType
	var engineTypes []models.EngineType
	var driveTypes []models.DriveType
	if err := h.DB.Order("name asc").Find(&brands).Error; err != nil {
		return nil, err
	}
	if err := h.DB.Order("name asc").Find(&colors).Error; err != nil {
		return nil, err
	}
	if err := h.DB.Find(&bodyTypes).Error; err != nil {
		return nil, err
	}
	if err := h.DB.Find(&engineTypes).Error; err != nil {
		return nil, err
	}
	if err := h.DB.Find(&driveTypes).Error; err != nil {
		return nil, err
	}
	return map[string]any{
		"Brands": brands, "Colors": colors,
		"BodyTypes": bodyTypes, "EngineTypes": engineTypes, "DriveTypes": driveTypes,
	}, nil
}

func (h *AdminHandler) AddCarForm(w http.ResponseWriter, r *http.Request) {
	data, err := h.formLists()
	if err != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	renderTemplate(w, r, "add-car", data)
}

// AddCar runs the dependent upsert pipeline.
func (h *AdminHandler) AddCar(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.Text(w, http.StatusBadRequest, "invalid form")
		return
	}
	in := services.AddCarInput{
		BrandName: strings.TrimSpace(r.FormValue("brand_name")),
		ModelName: strings.TrimSpace(r.FormValue("model_name")),
		ColorName: strings.TrimSpace(r.FormValue("color_name")),
		Photo:     strings.TrimSpace(r.FormValue("photo")),
		Status:    strings.TrimSpace(r.FormValue("status")),
	}
	v := validation.Violations{}
	validation.Required("brand_name", in.BrandName, v)
	validation.Required("model_name", in.ModelName, v)
	validation.Required("color_name", in.ColorName, v)
	btID, _ := strconv.Atoi(r.FormValue("body_type_id"))
	etID, _ := strconv.Atoi(r.FormValue("engine_type_id"))
	dtID, _ := strconv.Atoi(r.FormValue("drive_type_id"))
	in.BodyTypeID, in.EngineTypeID, in.DriveTypeID = uint(btID), uint(etID), uint(dtID)
	in.EngineVolume, _ = strconv.ParseFloat(r.FormValue("engine_volume"), 64)
	in.ReleaseYear, _ = strconv.Atoi(r.FormValue("release_year"))
	in.Price, _ = strconv.ParseFloat(r.FormValue("price"), 64)
	validation.RangeInt("release_year", in.ReleaseYear, 1900, time.Now().Year()+1, v)
	validation.PositiveFloat("price", in.Price, v)
	if !v.Empty() {
		httpx.Text(w, http.StatusBadRequest, "all car fields must be filled in")
		return
	}
	if _, err := h.Inventory.AddCar(in); err != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	http.Redirect(w, r, "/admin-panel/cars", statusSeeOther)
}

func (h *AdminHandler) EditCarForm(w http.ResponseWriter, r *http.Request) {
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
	data, err := h.formLists()
	if err != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	data["Car"] = car
	renderTemplate(w, r, "edit-car", data)
}

// EditCar updates a car against existing dimension rows; unlike AddCar it
// never creates them.
func (h *AdminHandler) EditCar(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.Text(w, http.StatusBadRequest, "invalid form")
		return
	}
	id, _ := strconv.Atoi(r.FormValue("id"))
	in := services.EditCarInput{
		ID:        uint(id),
		ModelName: strings.TrimSpace(r.FormValue("model_name")),
		BrandName: strings.TrimSpace(r.FormValue("brand_name")),
		ColorName: strings.TrimSpace(r.FormValue("color_name")),
		Photo:     strings.TrimSpace(r.FormValue("photo")),
		Status:    strings.TrimSpace(r.FormValue("status")),
	}
	in.ReleaseYear, _ = strconv.Atoi(r.FormValue("release_year"))
	in.Price, _ = strconv.ParseFloat(r.FormValue("price"), 64)
	if id <= 0 || in.ModelName == "" || in.BrandName == "" || in.ColorName == "" ||
		in.Status == "" || in.ReleaseYear == 0 || in.Price == 0 {
		httpx.Text(w, http.StatusBadRequest, "all fields must be filled in")
		return
	}
	err := h.Inventory.EditCar(in)
	if errors.Is(err, services.ErrNotFound) {
		httpx.Text(w, http.StatusNotFound, "model, brand or color not found")
		return
	}
	if err != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	http.Redirect(w, r, "/admin-panel/cars", statusSeeOther)
}

func (h *AdminHandler) DeleteCar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.Text(w, http.StatusBadRequest, "invalid car id")
		return
	}
	if err := h.Inventory.DeleteCar(uint(id)); err != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	http.Redirect(w, r, "/admin-panel/cars", http.StatusSeeOther)
}

func (h *AdminHandler) AddUserForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, r, "add-user", nil)
}

func (h *AdminHandler) AddUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.Text(w, http.StatusBadRequest, "invalid form")
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	pass := r.FormValue("password")
	fullName := strings.TrimSpace(r.FormValue("full_name"))
	phone := strings.TrimSpace(r.FormValue("phone"))
	role := strings.TrimSpace(r.FormValue("role"))
	if email == "" || pass == "" || fullName == "" {
		httpx.Text(w, http.StatusBadRequest, "email, password and full name are required")
		return
	}
	if role != models.RoleAdmin {
		role = models.RoleCustomer
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pass), bcrypt.DefaultCost)
	if err != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	user := models.User{Email: email, Password: string(hash), FullName: fullName, Phone: phone, Role: role}
	if err := h.DB.Create(&user).Error; err != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	http.Redirect(w, r, "/admin-panel/users", statusSeeOther)
}

func (h *AdminHandler) EditUserForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.Text(w, http.StatusBadRequest, "invalid user id")
		return
	}
	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		httpx.Text(w, http.StatusNotFound, "user not found")
		return
	}
	renderTemplate(w, r, "edit-user", map[string]any{"User": user})
}

func (h *AdminHandler) EditUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.Text(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.Text(w, http.StatusBadRequest, "invalid form")
		return
	}
	role := strings.TrimSpace(r.FormValue("role"))
	if role != models.RoleAdmin {
		role = models.RoleCustomer
	}
	res := h.DB.Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
		"email":     strings.TrimSpace(r.FormValue("email")),
		"full_name": strings.TrimSpace(r.FormValue("full_name")),
		"phone":     strings.TrimSpace(r.FormValue("phone")),
		"role":      role,
	})
	if res.Error != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	http.Redirect(w, r, "/admin-panel/users", statusSeeOther)
}

// DeleteUser removes the user's bookings first, then the user, in one
// transaction.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.Text(w, http.StatusBadRequest, "invalid user id")
		return
	}
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.TestDrive{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.User{}).Error
	})
	if err != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	http.Redirect(w, r, "/admin-panel/users", http.StatusSeeOther)
}

func (h *AdminHandler) EditTestDriveForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.Text(w, http.StatusBadRequest, "invalid test drive id")
		return
	}
	drive, err := h.Bookings.Get(uint(id))
	if errors.Is(err, services.ErrNotFound) {
		httpx.Text(w, http.StatusNotFound, "test drive not found")
		return
	}
	if err != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	cars, err := h.Catalog.All()
	if err != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	var users []models.User
	if err := h.DB.Select("id", "full_name").Find(&users).Error; err != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	renderTemplate(w, r, "edit-test-drive", map[string]any{"TestDrive": drive, "Cars": cars, "Users": users})
}

// EditTestDrive resolves the car by model name and the user by full name,
// as the admin form submits names rather than ids.
func (h *AdminHandler) EditTestDrive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.Text(w, http.StatusBadRequest, "invalid test drive id")
		return
	}
	if err := r.ParseForm(); err != nil {
		httpx.Text(w, http.StatusBadRequest, "invalid form")
		return
	}
	carName := strings.TrimSpace(r.FormValue("car_name"))
	userName := strings.TrimSpace(r.FormValue("user_name"))
	date, perr := time.Parse(dateLayout, r.FormValue("date"))
	if carName == "" || userName == "" || perr != nil {
		httpx.Text(w, http.StatusBadRequest, "car, user and date are required")
		return
	}
	err = h.Bookings.Update(uint(id), carName, userName, date)
	if errors.Is(err, services.ErrNotFound) {
		httpx.Text(w, http.StatusNotFound, "car, user or test drive not found")
		return
	}
	if err != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	http.Redirect(w, r, "/admin-panel/test-drives", statusSeeOther)
}

func (h *AdminHandler) DeleteTestDrive(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		httpx.Text(w, http.StatusBadRequest, "invalid test drive id")
		return
	}
	if err := h.Bookings.Delete(uint(id)); err != nil {
		httpx.Text(w, http.StatusInternalServerError, "server error")
		return
	}
	http.Redirect(w, r, "/admin-panel/test-drives", http.StatusSeeOther)
}
