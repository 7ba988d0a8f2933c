package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/carhome/carhome/internal/models"
)

// ErrNotFound is returned when a referenced entity is absent.
var ErrNotFound = errors.New("not_found")

// CarFilter is the sparse set of optional catalog filters. Zero values
// contribute no predicate; each supplied field contributes exactly one,
// conjoined with the rest in declaration order.
type CarFilter struct {
	Brand      string  // substring against brand OR model name
	Color      string  // exact color name
	BodyType   string  // exact body type name
	EngineType string  // exact engine type name
	DriveType  string  // exact drive type name
	Year       int     // exact release year
	MaxPrice   float64 // inclusive upper bound
	Search     string  // substring against model name
}

// Empty reports whether no filter field is set.
func (f CarFilter) Empty() bool {
	return f.Brand == "" && f.Color == "" && f.BodyType == "" && f.EngineType == "" &&
		f.DriveType == "" && f.Year == 0 && f.MaxPrice == 0 && f.Search == ""
}

// CarRow is a flattened catalog row.
type CarRow struct {
	ID          uint
	ModelName   string
	BrandName   string
	ReleaseYear int
	Price       float64
	ColorName   string
	Photo       string
	Status      string
}

// CarDetail is the detail-page row, including the type dimensions.
type CarDetail struct {
	ID           uint
	ModelName    string
	BrandName    string
	ReleaseYear  int
	Price        float64
	ColorName    string
	Photo        string
	Status       string
	BodyType     string
	EngineType   string
	DriveType    string
	EngineVolume float64
}

type CatalogService struct{ DB *gorm.DB }

func NewCatalogService(db *gorm.DB) *CatalogService { return &CatalogService{DB: db} }

const carColumns = "cars.id, models.name AS model_name, brands.name AS brand_name, " +
	"cars.release_year, cars.price, colors.name AS color_name, cars.photo, cars.status"

// base is the four-way join used by the catalog and admin listings.
func (s *CatalogService) base() *gorm.DB {
	return s.DB.Table("cars").
		Select(carColumns).
		Joins("JOIN models ON cars.model_id = models.id").
		Joins("JOIN brands ON models.brand_id = brands.id").
		Joins("JOIN colors ON cars.color_id = colors.id")
}

// withTypes extends the base join with the type dimension tables, needed
// by the filter endpoint and the detail page.
func (s *CatalogService) withTypes() *gorm.DB {
	return s.base().
		Joins("JOIN body_types ON models.body_type_id = body_types.id").
		Joins("JOIN engine_types ON models.engine_type_id = engine_types.id").
		Joins("JOIN drive_types ON models.drive_type_id = drive_types.id")
}

// apply appends one predicate per supplied filter field, in declaration
// order. Values are always placeholder-bound; substring filters are
// wrapped in wildcards before binding.
func (f CarFilter) apply(q *gorm.DB) *gorm.DB {
	if f.Brand != "" {
		like := "%" + f.Brand + "%"
		q = q.Where("(brands.name LIKE ? OR models.name LIKE ?)", like, like)
	}
	if f.Color != "" {
		q = q.Where("colors.name = ?", f.Color)
	}
	if f.BodyType != "" {
		q = q.Where("body_types.name = ?", f.BodyType)
	}
	if f.EngineType != "" {
		q = q.Where("engine_types.name = ?", f.EngineType)
	}
	if f.DriveType != "" {
		q = q.Where("drive_types.name = ?", f.DriveType)
	}
	if f.Year != 0 {
		q = q.Where("cars.release_year = ?", f.Year)
	}
	if f.MaxPrice != 0 {
		q = q.Where("cars.price <= ?", f.MaxPrice)
	}
	if f.Search != "" {
		q = q.Where("models.name LIKE ?", "%"+f.Search+"%")
	}
	return q
}

// List returns the catalog rows matching the filter; an empty filter
// returns the unfiltered full join.
func (s *CatalogService) List(f CarFilter) ([]CarRow, error) {
	var rows []CarRow
	if err := f.apply(s.withTypes()).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// All returns the full catalog.
func (s *CatalogService) All() ([]CarRow, error) {
	var rows []CarRow
	if err := s.base().Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Available returns cars open for a test drive.
func (s *CatalogService) Available() ([]CarRow, error) {
	var rows []CarRow
	if err := s.base().Where("cars.status = ?", models.StatusAvailable).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Get returns the detail row for one car.
func (s *CatalogService) Get(id uint) (*CarDetail, error) {
	var d CarDetail
	q := s.withTypes().
		Select(carColumns + ", body_types.name AS body_type, engine_types.name AS engine_type, " +
			"drive_types.name AS drive_type, models.engine_volume").
		Where("cars.id = ?", id)
	res := q.Scan(&d)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &d, nil
}
