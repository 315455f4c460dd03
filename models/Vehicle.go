package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Vehicle is a rental car listing. Like Room, TotalUnits > 1 means a
// pool of interchangeable vehicles of the same make/model.
type Vehicle struct {
	gorm.Model
	HostID       uint           `json:"hostID" gorm:"index"`
	Make         string         `json:"make"`
	VehicleModel string         `json:"model" gorm:"column:vehicle_model"`
	Year         int            `json:"year"`
	City         string         `json:"city" gorm:"index"`
	Seats        int            `json:"seats"`
	Transmission string         `json:"transmission" gorm:"size:20"` // manual, automatic
	TotalUnits   int            `json:"totalUnits" gorm:"default:1"`
	DailyPrice   float32        `json:"dailyPrice"`
	Currency     string         `json:"currency" gorm:"size:8"`
	Images       datatypes.JSON `json:"images"`
	Status       string         `json:"status" gorm:"size:20;default:'available';index"` // available, maintenance, inactive

	Host *User `json:"host,omitempty" gorm:"foreignKey:HostID;references:ID"`
}
