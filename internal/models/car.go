package models

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

const (
	DefaultCarImageURL = "https://via.placeholder.com/400x300?text=Car+Image"
	MinCarYear         = 1900
)

var (
	CarTransmissions = []string{"Manual", "Automatic", "CVT", "Semi-Automatic"}
	CarFuelTypes     = []string{"Gasoline", "Diesel", "Electric", "Hybrid", "Plugin-Hybrid"}
	CarConditions    = []string{"New", "Used", "Certified Pre-Owned"}
	CarStatuses      = []string{"Available", "Sold", "Reserved"}
)

const CarStatusAvailable = "Available"

type Car struct {
	ID           uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Brand        string    `json:"brand" gorm:"size:50;not null"`
	Model        string    `json:"model" gorm:"size:50;not null"`
	Year         int       `json:"year" gorm:"not null"`
	Price        float64   `json:"price" gorm:"not null"`
	Mileage      int       `json:"mileage" gorm:"not null;default:0"`
	Color        string    `json:"color" gorm:"size:30;not null"`
	Transmission string    `json:"transmission" gorm:"size:20;not null"`
	FuelType     string    `json:"fuelType" gorm:"size:20;not null"`
	Condition    string    `json:"condition" gorm:"size:30;not null"`
	VIN          *string   `json:"vin,omitempty" gorm:"size:17;uniqueIndex"`
	Description  string    `json:"description" gorm:"size:1000"`
	ImageURL     string    `json:"imageUrl"`
	Status       string    `json:"status" gorm:"size:16;not null;default:Available"`
	CreatedBy    uuid.UUID `json:"createdBy" gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Normalize trims text fields, upper-cases the VIN and applies defaults.
// An empty VIN is stored as NULL so the unique index ignores it.
func (c *Car) Normalize() {
	c.Brand = strings.TrimSpace(c.Brand)
	c.Model = strings.TrimSpace(c.Model)
	c.Color = strings.TrimSpace(c.Color)
	c.Description = strings.TrimSpace(c.Description)
	if c.VIN != nil {
		vin := strings.ToUpper(strings.TrimSpace(*c.VIN))
		if vin == "" {
			c.VIN = nil
		} else {
			c.VIN = &vin
		}
	}
	if c.ImageURL == "" {
		c.ImageURL = DefaultCarImageURL
	}
	if c.Status == "" {
		c.Status = CarStatusAvailable
	}
}

// MaxCarYear is one year past the current calendar year.
func MaxCarYear(now time.Time) int {
	return now.Year() + 1
}
