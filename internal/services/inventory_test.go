package services

import (
	"testing"

	"gorm.io/gorm"

	"github.com/carhome/carhome/internal/models"
)

func seedTypes(t *testing.T, db *gorm.DB) (body, engine, drive uint) {
	t.Helper()
	b := models.BodyType{Name: "sedan"}
	e := models.EngineType{Name: "petrol"}
	d := models.DriveType{Name: "front"}
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("body type: %v", err)
	}
	if err := db.Create(&e).Error; err != nil {
		t.Fatalf("engine type: %v", err)
	}
	if err := db.Create(&d).Error; err != nil {
		t.Fatalf("drive type: %v", err)
	}
	return b.ID, e.ID, d.ID
}

func addCarInput(body, engine, drive uint) AddCarInput {
	return AddCarInput{
		BrandName:    "Toyota",
		ModelName:    "Corolla",
		BodyTypeID:   body,
		EngineTypeID: engine,
		DriveTypeID:  drive,
		EngineVolume: 1.8,
		ColorName:    "white",
		ReleaseYear:  2021,
		Price:        21000,
	}
}

func TestAddCarCreatesMissingRows(t *testing.T) {
	db := setupTestDB(t)
	body, engine, drive := seedTypes(t, db)
	svc := NewInventoryService(db)

	car, err := svc.AddCar(addCarInput(body, engine, drive))
	if err != nil {
		t.Fatalf("add car: %v", err)
	}
	if car.ID == 0 {
		t.Fatal("car id not assigned")
	}
	if car.Status != models.StatusAvailable {
		t.Fatalf("expected default status available, got %q", car.Status)
	}

	var brands, carModels, colors int64
	db.Model(&models.Brand{}).Count(&brands)
	db.Model(&models.CarModel{}).Count(&carModels)
	db.Model(&models.Color{}).Count(&colors)
	if brands != 1 || carModels != 1 || colors != 1 {
		t.Fatalf("expected one row per dimension, got brands=%d models=%d colors=%d", brands, carModels, colors)
	}
}

func TestAddCarReusesExistingBrand(t *testing.T) {
	db := setupTestDB(t)
	body, engine, drive := seedTypes(t, db)
	existing := models.Brand{Name: "Toyota"}
	if err := db.Create(&existing).Error; err != nil {
		t.Fatalf("brand: %v", err)
	}
	svc := NewInventoryService(db)

	car, err := svc.AddCar(addCarInput(body, engine, drive))
	if err != nil {
		t.Fatalf("add car: %v", err)
	}

	var brands int64
	db.Model(&models.Brand{}).Count(&brands)
	if brands != 1 {
		t.Fatalf("expected brand to be reused, got %d rows", brands)
	}
	var model models.CarModel
	if err := db.First(&model, car.ModelID).Error; err != nil {
		t.Fatalf("model: %v", err)
	}
	if model.BrandID != existing.ID {
		t.Fatalf("model references brand %d, want existing %d", model.BrandID, existing.ID)
	}
}

func TestAddCarReusesModelPerBrand(t *testing.T) {
	db := setupTestDB(t)
	body, engine, drive := seedTypes(t, db)
	svc := NewInventoryService(db)

	first, err := svc.AddCar(addCarInput(body, engine, drive))
	if err != nil {
		t.Fatalf("first add: %v", err)
	}
	in := addCarInput(body, engine, drive)
	in.EngineVolume = 2.5 // attributes of an existing model must not change
	in.ColorName = "black"
	second, err := svc.AddCar(in)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if first.ModelID != second.ModelID {
		t.Fatalf("same (brand, model) produced two model rows: %d and %d", first.ModelID, second.ModelID)
	}
	var carModels int64
	db.Model(&models.CarModel{}).Count(&carModels)
	if carModels != 1 {
		t.Fatalf("expected 1 model row, got %d", carModels)
	}
	var model models.CarModel
	if err := db.First(&model, first.ModelID).Error; err != nil {
		t.Fatalf("model: %v", err)
	}
	if model.EngineVolume != 1.8 {
		t.Fatalf("model attributes overwritten: volume=%v", model.EngineVolume)
	}

	// Same model name under a different brand is a new model.
	in = addCarInput(body, engine, drive)
	in.BrandName = "Suzuki"
	third, err := svc.AddCar(in)
	if err != nil {
		t.Fatalf("third add: %v", err)
	}
	if third.ModelID == first.ModelID {
		t.Fatal("model rows must be scoped per brand")
	}
}

func TestEditCarRequiresExistingRows(t *testing.T) {
	db := setupTestDB(t)
	body, engine, drive := seedTypes(t, db)
	svc := NewInventoryService(db)
	car, err := svc.AddCar(addCarInput(body, engine, drive))
	if err != nil {
		t.Fatalf("add car: %v", err)
	}

	err = svc.EditCar(EditCarInput{
		ID:          car.ID,
		ModelName:   "Unknown",
		BrandName:   "Toyota",
		ReleaseYear: 2022,
		Price:       1,
		ColorName:   "white",
		Status:      models.StatusAvailable,
	})
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown model, got %v", err)
	}

	// The failed edit must not have touched the car.
	var got models.Car
	if err := db.First(&got, car.ID).Error; err != nil {
		t.Fatalf("car: %v", err)
	}
	if got.Price != car.Price || got.ReleaseYear != car.ReleaseYear {
		t.Fatalf("car modified by failed edit: %+v", got)
	}

	err = svc.EditCar(EditCarInput{
		ID:          car.ID,
		ModelName:   "Corolla",
		BrandName:   "Toyota",
		ReleaseYear: 2022,
		Price:       1,
		ColorName:   "purple",
		Status:      models.StatusAvailable,
	})
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown color, got %v", err)
	}
	var colors int64
	db.Model(&models.Color{}).Count(&colors)
	if colors != 1 {
		t.Fatalf("edit must not create colors, got %d rows", colors)
	}
}

func TestEditCarUpdatesFields(t *testing.T) {
	db := setupTestDB(t)
	body, engine, drive := seedTypes(t, db)
	svc := NewInventoryService(db)
	car, err := svc.AddCar(addCarInput(body, engine, drive))
	if err != nil {
		t.Fatalf("add car: %v", err)
	}
	if err := db.Create(&models.Color{Name: "red"}).Error; err != nil {
		t.Fatalf("color: %v", err)
	}

	err = svc.EditCar(EditCarInput{
		ID:          car.ID,
		ModelName:   "Corolla",
		BrandName:   "Toyota",
		ReleaseYear: 2023,
		Price:       19500,
		ColorName:   "red",
		Status:      models.StatusReserved,
	})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}

	var got models.Car
	if err := db.First(&got, car.ID).Error; err != nil {
		t.Fatalf("car: %v", err)
	}
	if got.ReleaseYear != 2023 || got.Price != 19500 || got.Status != models.StatusReserved {
		t.Fatalf("unexpected car after edit: %+v", got)
	}

	// Editing a car that does not exist is not found.
	err = svc.EditCar(EditCarInput{
		ID:        car.ID + 100,
		ModelName: "Corolla", BrandName: "Toyota",
		ColorName: "red", Status: models.StatusAvailable,
	})
	if err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCarRemovesBookings(t *testing.T) {
	db := setupTestDB(t)
	body, engine, drive := seedTypes(t, db)
	svc := NewInventoryService(db)
	car, err := svc.AddCar(addCarInput(body, engine, drive))
	if err != nil {
		t.Fatalf("add car: %v", err)
	}
	user := models.User{FullName: "Ann", Phone: "1", Email: "ann@example.com", Password: "x", Role: models.RoleCustomer}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	if _, err := NewBookingService(db).Book(user.ID, car.ID, tomorrow()); err != nil {
		t.Fatalf("book: %v", err)
	}

	if err := svc.DeleteCar(car.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var cars, bookings int64
	db.Model(&models.Car{}).Count(&cars)
	db.Model(&models.TestDrive{}).Count(&bookings)
	if cars != 0 || bookings != 0 {
		t.Fatalf("expected cascade delete, got cars=%d bookings=%d", cars, bookings)
	}
}
