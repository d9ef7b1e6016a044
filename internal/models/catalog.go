package models

import "github.com/shopspring/decimal"

type Product struct {
	Model
	Name        string          `gorm:"not null" json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"price" validate:"gte=0"`
	IsAvailable bool            `gorm:"not null;index" json:"is_available"`
	ImagePath   *string         `json:"-"`
	ImageURL    string          `gorm:"-" json:"image_url,omitempty"`
}

type CurrencyType struct {
	Model
	Name        string `gorm:"uniqueIndex;not null" json:"name" validate:"required,max=32"`
	Description string `json:"description"`
}

type Status struct {
	Model
	Name        string `gorm:"uniqueIndex;not null" json:"name" validate:"required,max=64"`
	Description string `json:"description"`
}
