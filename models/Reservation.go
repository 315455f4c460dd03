package models

import (
	"time"

	"gorm.io/gorm"
)

// Reservation is a booking against one inventory unit in any vertical.
// StartAt/EndAt is a half-open window [StartAt, EndAt): two bookings may
// share an endpoint without conflicting. For transfers PickupAt holds
// the requested instant and StartAt/EndAt the derived buffer window.
type Reservation struct {
	gorm.Model
	UnitType   string     `json:"unitType" gorm:"size:20;index:idx_unit"` // room, vehicle, transfer
	UnitID     uint       `json:"unitID" gorm:"index:idx_unit"`
	GuestID    uint       `json:"guestID" gorm:"index"`
	StartAt    time.Time  `json:"startAt"`
	EndAt      time.Time  `json:"endAt"`
	PickupAt   *time.Time `json:"pickupAt,omitempty"`
	NumGuests  int        `json:"numGuests"`
	TotalPrice float32    `json:"totalPrice"`
	Status     string     `json:"status" gorm:"size:20;index"` // pending, confirmed, active, completed, cancelled
	Note       string     `json:"note"`
	ExpiresAt  time.Time  `json:"expiresAt"` // 24h window for pending requests

	Guest *User `json:"guest,omitempty" gorm:"foreignKey:GuestID"`
}
