package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/carhome/carhome/internal/models"
)

var (
	// ErrPastDate rejects bookings for days already gone.
	ErrPastDate = errors.New("date_in_past")
	// ErrAlreadyBooked signals a duplicate (user, car, date) booking.
	ErrAlreadyBooked = errors.New("already_booked")
)

// TestDriveRow is a flattened booking row for the account and admin pages.
type TestDriveRow struct {
	ID          uint
	CarID       uint
	BrandName   string
	ModelName   string
	UserName    string
	ReleaseYear int
	Price       float64
	Date        time.Time
}

type BookingService struct{ DB *gorm.DB }

func NewBookingService(db *gorm.DB) *BookingService { return &BookingService{DB: db} }

// normalizeDay truncates to midnight so "same date" is well defined for
// the uniqueness constraint.
func normalizeDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique constraint")
}

// Book records a test drive for the given day. Today is bookable,
// yesterday is not. The (user, car, date) unique constraint is the sole
// duplicate guard: a conflicting insert is reported as ErrAlreadyBooked,
// so concurrent bookings of the same slot cannot both land.
func (s *BookingService) Book(userID, carID uint, date time.Time) (*models.TestDrive, error) {
	day := normalizeDay(date)
	if day.Before(normalizeDay(time.Now())) {
		return nil, ErrPastDate
	}
	var count int64
	if err := s.DB.Model(&models.Car{}).Where("id = ?", carID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	td := models.TestDrive{CarID: carID, UserID: userID, Date: day}
	if err := s.DB.Create(&td).Error; err != nil {
		if isDuplicate(err) {
			return nil, ErrAlreadyBooked
		}
		return nil, err
	}
	return &td, nil
}

// ListForUser returns the user's bookings ordered by date.
func (s *BookingService) ListForUser(userID uint) ([]TestDriveRow, error) {
	var rows []TestDriveRow
	err := s.DB.Table("test_drives").
		Select("test_drives.id, test_drives.car_id, brands.name AS brand_name, models.name AS model_name, "+
			"cars.release_year, cars.price, test_drives.date").
		Joins("JOIN cars ON test_drives.car_id = cars.id").
		Joins("JOIN models ON cars.model_id = models.id").
		Joins("JOIN brands ON models.brand_id = brands.id").
		Where("test_drives.user_id = ?", userID).
		Order("test_drives.date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Cancel deletes the user's own booking; someone else's id is not found.
func (s *BookingService) Cancel(userID, id uint) error {
	res := s.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.TestDrive{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdminList returns every booking with car and user names resolved.
func (s *BookingService) AdminList() ([]TestDriveRow, error) {
	var rows []TestDriveRow
	err := s.DB.Table("test_drives").
		Select("test_drives.id, test_drives.car_id, brands.name AS brand_name, models.name AS model_name, " +
			"users.full_name AS user_name, cars.release_year, cars.price, test_drives.date").
		Joins("JOIN cars ON test_drives.car_id = cars.id").
		Joins("JOIN models ON cars.model_id = models.id").
		Joins("JOIN brands ON models.brand_id = brands.id").
		Joins("JOIN users ON test_drives.user_id = users.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Get returns one booking row for the admin edit form.
func (s *BookingService) Get(id uint) (*TestDriveRow, error) {
	var row TestDriveRow
	res := s.DB.Table("test_drives").
		Select("test_drives.id, test_drives.car_id, brands.name AS brand_name, models.name AS model_name, "+
			"users.full_name AS user_name, test_drives.date").
		Joins("JOIN cars ON test_drives.car_id = cars.id").
		Joins("JOIN models ON cars.model_id = models.id").
		Joins("JOIN brands ON models.brand_id = brands.id").
		Joins("JOIN users ON test_drives.user_id = users.id").
		Where("test_drives.id = ?", id).
		Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &row, nil
}

// Update rewrites a booking from the admin form: the car is resolved by
// model name, the user by full name; either miss is not found.
func (s *BookingService) Update(id uint, modelName, userName string, date time.Time) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var car models.Car
		err := tx.Joins("JOIN models ON cars.model_id = models.id").
			Where("models.name = ?", modelName).
			First(&car).Error
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var user models.User
		err = tx.Where("full_name = ?", userName).First(&user).Error
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		res := tx.Model(&models.TestDrive{}).Where("id = ?", id).Updates(map[string]any{
			"car_id":  car.ID,
			"user_id": user.ID,
			"date":    normalizeDay(date),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Delete removes a booking by id (admin).
func (s *BookingService) Delete(id uint) error {
	return s.DB.Where("id = ?", id).Delete(&models.TestDrive{}).Error
}
