package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/carhome/carhome/internal/models"
)

func tomorrow() time.Time { return time.Now().AddDate(0, 0, 1) }

func seedUser(t *testing.T, db *gorm.DB, name, email string) models.User {
	t.Helper()
	u := models.User{FullName: name, Phone: email, Email: email, Password: "x", Role: models.RoleCustomer}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("user: %v", err)
	}
	return u
}

func TestBookAndDuplicate(t *testing.T) {
	db := setupTestDB(t)
	car := seedCar(t, db, carSpec{brand: "Toyota", model: "Corolla", color: "white", body: "sedan", engine: "petrol", drive: "front", year: 2020, price: 18000})
	user := seedUser(t, db, "Ann", "ann@example.com")
	svc := NewBookingService(db)

	td, err := svc.Book(user.ID, car.ID, tomorrow())
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if td.ID == 0 {
		t.Fatal("booking id not assigned")
	}

	// Same user, car and day again, regardless of time of day.
	_, err = svc.Book(user.ID, car.ID, tomorrow().Add(3*time.Hour))
	if err != ErrAlreadyBooked {
		t.Fatalf("expected ErrAlreadyBooked, got %v", err)
	}
	var count int64
	db.Model(&models.TestDrive{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected a single booking row, got %d", count)
	}

	// A different day for the same pair is fine.
	if _, err := svc.Book(user.ID, car.ID, tomorrow().AddDate(0, 0, 1)); err != nil {
		t.Fatalf("book other day: %v", err)
	}
	// So is the same day for another user.
	other := seedUser(t, db, "Bob", "bob@example.com")
	if _, err := svc.Book(other.ID, car.ID, tomorrow()); err != nil {
		t.Fatalf("book other user: %v", err)
	}
}

func TestBookRejectsPastDate(t *testing.T) {
	db := setupTestDB(t)
	car := seedCar(t, db, carSpec{brand: "Toyota", model: "Corolla", color: "white", body: "sedan", engine: "petrol", drive: "front", year: 2020, price: 18000})
	user := seedUser(t, db, "Ann", "ann@example.com")
	svc := NewBookingService(db)

	if _, err := svc.Book(user.ID, car.ID, time.Now().AddDate(0, 0, -1)); err != ErrPastDate {
		t.Fatalf("expected ErrPastDate, got %v", err)
	}
	// Today is still bookable.
	if _, err := svc.Book(user.ID, car.ID, time.Now()); err != nil {
		t.Fatalf("book today: %v", err)
	}
}

func TestBookUnknownCar(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "Ann", "ann@example.com")
	svc := NewBookingService(db)

	if _, err := svc.Book(user.ID, 42, tomorrow()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCancelIsOwnerScoped(t *testing.T) {
	db := setupTestDB(t)
	car := seedCar(t, db, carSpec{brand: "Toyota", model: "Corolla", color: "white", body: "sedan", engine: "petrol", drive: "front", year: 2020, price: 18000})
	owner := seedUser(t, db, "Ann", "ann@example.com")
	other := seedUser(t, db, "Bob", "bob@example.com")
	svc := NewBookingService(db)

	td, err := svc.Book(owner.ID, car.ID, tomorrow())
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if err := svc.Cancel(other.ID, td.ID); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for foreign booking, got %v", err)
	}
	if err := svc.Cancel(owner.ID, td.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	var count int64
	db.Model(&models.TestDrive{}).Count(&count)
	if count != 0 {
		t.Fatalf("booking still present after cancel")
	}
}

func TestListForUserOrdersByDate(t *testing.T) {
	db := setupTestDB(t)
	car := seedCar(t, db, carSpec{brand: "Toyota", model: "Corolla", color: "white", body: "sedan", engine: "petrol", drive: "front", year: 2020, price: 18000})
	user := seedUser(t, db, "Ann", "ann@example.com")
	svc := NewBookingService(db)

	if _, err := svc.Book(user.ID, car.ID, tomorrow().AddDate(0, 0, 5)); err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := svc.Book(user.ID, car.ID, tomorrow()); err != nil {
		t.Fatalf("book: %v", err)
	}

	rows, err := svc.ListForUser(user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(rows))
	}
	if rows[0].Date.After(rows[1].Date) {
		t.Fatalf("bookings not ordered by date: %v, %v", rows[0].Date, rows[1].Date)
	}
	if rows[0].BrandName != "Toyota" || rows[0].ModelName != "Corolla" {
		t.Fatalf("car names not resolved: %+v", rows[0])
	}
}

func TestAdminUpdateResolvesNames(t *testing.T) {
	db := setupTestDB(t)
	car := seedCar(t, db, carSpec{brand: "Toyota", model: "Corolla", color: "white", body: "sedan", engine: "petrol", drive: "front", year: 2020, price: 18000})
	other := seedCar(t, db, carSpec{brand: "BMW", model: "320i", color: "black", body: "sedan", engine: "petrol", drive: "rear", year: 2019, price: 27000})
	ann := seedUser(t, db, "Ann", "ann@example.com")
	bob := seedUser(t, db, "Bob", "bob@example.com")
	svc := NewBookingService(db)

	td, err := svc.Book(ann.ID, car.ID, tomorrow())
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	newDate := tomorrow().AddDate(0, 0, 3)
	if err := svc.Update(td.ID, "320i", "Bob", newDate); err != nil {
		t.Fatalf("update: %v", err)
	}
	var got models.TestDrive
	if err := db.First(&got, td.ID).Error; err != nil {
		t.Fatalf("booking: %v", err)
	}
	if got.CarID != other.ID || got.UserID != bob.ID {
		t.Fatalf("names not resolved: %+v", got)
	}

	if err := svc.Update(td.ID, "NoSuchModel", "Bob", newDate); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown model, got %v", err)
	}
	if err := svc.Update(td.ID, "320i", "Nobody", newDate); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
}
