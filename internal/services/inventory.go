package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/carhome/carhome/internal/models"
)

// AddCarInput is the denormalized add-car form: dimension names plus the
// car attributes. The pipeline resolves or creates the referenced rows in
// dependency order before inserting the car.
type AddCarInput struct {
	BrandName    string
	ModelName    string
	BodyTypeID   uint
	EngineTypeID uint
	DriveTypeID  uint
	EngineVolume float64
	ColorName    string
	ReleaseYear  int
	Price        float64
	Photo        string
	Status       string
}

// EditCarInput updates an existing car. Unlike add, the referenced model
// and color must already exist.
type EditCarInput struct {
	ID          uint
	ModelName   string
	BrandName   string
	ReleaseYear int
	Price       float64
	ColorName   string
	Photo       string
	Status      string
}

type InventoryService struct{ DB *gorm.DB }

func NewInventoryService(db *gorm.DB) *InventoryService { return &InventoryService{DB: db} }

// upsertBrand inserts the brand or reuses the row holding its name. The
// insert is atomic against the unique index; only the id re-read follows.
func upsertBrand(tx *gorm.DB, name string) (uint, error) {
	b := models.Brand{Name: name}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&b).Error
	if err != nil {
		return 0, err
	}
	if b.ID != 0 {
		return b.ID, nil
	}
	if err := tx.Where("name = ?", name).First(&b).Error; err != nil {
		return 0, err
	}
	return b.ID, nil
}

// upsertModel conflicts on the canonical (brand_id, name) key; attributes
// are set on first insert only, an existing model keeps its own.
func upsertModel(tx *gorm.DB, in AddCarInput, brandID uint) (uint, error) {
	m := models.CarModel{
		Name:         in.ModelName,
		BrandID:      brandID,
		BodyTypeID:   in.BodyTypeID,
		EngineTypeID: in.EngineTypeID,
		DriveTypeID:  in.DriveTypeID,
		EngineVolume: in.EngineVolume,
	}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "brand_id"}, {Name: "name"}},
		DoNothing: true,
	}).Create(&m).Error
	if err != nil {
		return 0, err
	}
	if m.ID != 0 {
		return m.ID, nil
	}
	if err := tx.Where("brand_id = ? AND name = ?", brandID, in.ModelName).First(&m).Error; err != nil {
		return 0, err
	}
	return m.ID, nil
}

func upsertColor(tx *gorm.DB, name string) (uint, error) {
	c := models.Color{Name: name}
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&c).Error
	if err != nil {
		return 0, err
	}
	if c.ID != 0 {
		return c.ID, nil
	}
	if err := tx.Where("name = ?", name).First(&c).Error; err != nil {
		return 0, err
	}
	return c.ID, nil
}

// AddCar materializes a car from form input: brand, then model (depends on
// the brand id), then color, then the car row referencing all three. One
// transaction; any step error rolls the whole pipeline back so no car ever
// references an unresolved identifier.
func (s *InventoryService) AddCar(in AddCarInput) (*models.Car, error) {
	var car models.Car
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		brandID, err := upsertBrand(tx, in.BrandName)
		if err != nil {
			return err
		}
		modelID, err := upsertModel(tx, in, brandID)
		if err != nil {
			return err
		}
		colorID, err := upsertColor(tx, in.ColorName)
		if err != nil {
			return err
		}
		status := in.Status
		if status == "" {
			status = models.StatusAvailable
		}
		car = models.Car{
			ModelID:     modelID,
			ReleaseYear: in.ReleaseYear,
			Price:       in.Price,
			ColorID:     colorID,
			Photo:       in.Photo,
			Status:      status,
		}
		return tx.Create(&car).Error
	})
	if err != nil {
		return nil, err
	}
	return &car, nil
}

// EditCar updates a car against existing dimension rows. A missing model/
// brand pair or color fails with ErrNotFound and leaves the car untouched;
// this create-nothing asymmetry with AddCar is deliberate.
func (s *InventoryService) EditCar(in EditCarInput) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var model models.CarModel
		err := tx.Joins("JOIN brands ON models.brand_id = brands.id").
			Where("models.name = ? AND brands.name = ?", in.ModelName, in.BrandName).
			First(&model).Error
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var color models.Color
		err = tx.Where("name = ?", in.ColorName).First(&color).Error
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		res := tx.Model(&models.Car{}).Where("id = ?", in.ID).Updates(map[string]any{
			"model_id":     model.ID,
			"release_year": in.ReleaseYear,
			"price":        in.Price,
			"color_id":     color.ID,
			"photo":        in.Photo,
			"status":       in.Status,
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

// DeleteCar removes the car and its bookings.
func (s *InventoryService) DeleteCar(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("car_id = ?", id).Delete(&models.TestDrive{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&models.Car{}).Error
	})
}
