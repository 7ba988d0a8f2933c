package models

import "time"

// Car lifecycle statuses shown in the catalog and admin panel.
const (
	StatusAvailable = "available"
	StatusReserved  = "reserved"
	StatusSold      = "sold"
)

// Dimension tables referenced by Car via CarModel. Each carries a natural
// unique key so the add-car pipeline can upsert against it.
type Brand struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"unique;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Color struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"unique;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type BodyType struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"unique;not null"` // sedan, hatchback, suv, ...
}

type EngineType struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"unique;not null"` // petrol, diesel, hybrid, electric
}

type DriveType struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"unique;not null"` // front, rear, all
}

// CarModel is unique per (brand, name): two brands may share a model name,
// one brand may not list the same model twice.
type CarModel struct {
	ID           uint   `gorm:"primaryKey"`
	Name         string `gorm:"not null;index:idx_brand_model,unique,priority:2"`
	BrandID      uint   `gorm:"not null;index:idx_brand_model,priority:1"`
	Brand        Brand  `gorm:"foreignKey:BrandID"`
	BodyTypeID   uint
	BodyType     BodyType `gorm:"foreignKey:BodyTypeID"`
	EngineTypeID uint
	EngineType   EngineType `gorm:"foreignKey:EngineTypeID"`
	DriveTypeID  uint
	DriveType    DriveType `gorm:"foreignKey:DriveTypeID"`
	EngineVolume float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName maps CarModel onto the models table the SQL migrations create.
func (CarModel) TableName() string { return "models" }

type Car struct {
	ID          uint     `gorm:"primaryKey"`
	ModelID     uint     `gorm:"not null;index"`
	Model       CarModel `gorm:"foreignKey:ModelID"`
	ReleaseYear int      `gorm:"not null"`
	Price       float64  `gorm:"not null"`
	ColorID     uint     `gorm:"not null"`
	Color       Color    `gorm:"foreignKey:ColorID"`
	Photo       string
	Status      string `gorm:"not null;default:'available'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
