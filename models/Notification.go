package models

import "gorm.io/gorm"

type Notification struct {
	gorm.Model
	UserID  uint   `json:"userID" gorm:"not null;index"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type" gorm:"size:40"` // reservation_request, reservation_status, new_message
	RefID   uint   `json:"refID"`
	RefType string `json:"refType" gorm:"size:20"` // reservation, conversation
	IsRead  bool   `json:"isRead" gorm:"default:false;index"`
}
