package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Room is a hotel room type, not a single physical room: TotalUnits
// identical units share one listing and one price. Conflict checking
// counts overlapping reservations against TotalUnits.
type Room struct {
	gorm.Model
	HostID       uint           `json:"hostID" gorm:"index"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	AddressLine1 string         `json:"addressLine1"`
	City         string         `json:"city" gorm:"index"`
	Country      string         `json:"country"`
	Lat          float32        `json:"lat"`
	Lng          float32        `json:"lng"`
	Occupancy    int            `json:"occupancy"` // max guests per unit
	TotalUnits   int            `json:"totalUnits" gorm:"default:1"`
	NightlyPrice float32        `json:"nightlyPrice"`
	CleaningFee  float32        `json:"cleaningFee"`
	Currency     string         `json:"currency" gorm:"size:8"`
	Amenities    datatypes.JSON `json:"amenities"`
	Images       datatypes.JSON `json:"images"`
	Status       string         `json:"status" gorm:"size:20;default:'available';index"` // available, maintenance, inactive

	Host *User `json:"host,omitempty" gorm:"foreignKey:HostID;references:ID"`
}
