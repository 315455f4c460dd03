package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FirstName           string         `json:"firstName"`
	LastName            string         `json:"lastName"`
	Email               string         `json:"email" gorm:"uniqueIndex"`
	Password            string         `json:"-"`
	Role                string         `json:"role" gorm:"size:20;default:'guest'"` // guest, host, admin
	AvatarURL           string         `json:"avatarURL"`
	PushTokens          datatypes.JSON `json:"pushTokens"`
	AllowsNotifications *bool          `json:"allowsNotifications"`

	Rooms            []Room            `json:"rooms,omitempty" gorm:"foreignKey:HostID;references:ID"`
	Vehicles         []Vehicle         `json:"vehicles,omitempty" gorm:"foreignKey:HostID;references:ID"`
	TransferVehicles []TransferVehicle `json:"transferVehicles,omitempty" gorm:"foreignKey:HostID;references:ID"`
}
