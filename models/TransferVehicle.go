package models

import (
	"gorm.io/gorm"
)

// TransferVehicle is an airport-transfer vehicle. Bookings are a single
// pickup instant; the booking engine expands each pickup into a
// turnaround buffer window before overlap checking.
type TransferVehicle struct {
	gorm.Model
	HostID       uint    `json:"hostID" gorm:"index"`
	Title        string  `json:"title"`
	City         string  `json:"city" gorm:"index"`
	Seats        int     `json:"seats"`
	PickupFee    float32 `json:"pickupFee"`
	Currency     string  `json:"currency" gorm:"size:8"`
	LicensePlate string  `json:"licensePlate" gorm:"size:20"`
	Status       string  `json:"status" gorm:"size:20;default:'available';index"` // available, maintenance, inactive

	Host *User `json:"host,omitempty" gorm:"foreignKey:HostID;references:ID"`
}
