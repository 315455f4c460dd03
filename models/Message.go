package models

import (
	"gorm.io/gorm"
)

// Message is immutable once created; the timestamp is server-assigned
// (gorm.Model CreatedAt).
type Message struct {
	gorm.Model
	ConversationID uint   `json:"conversationID" gorm:"not null;index"`
	SenderID       uint   `json:"senderID" gorm:"not null;index"`
	Text           string `json:"text" gorm:"type:text"`

	Sender *User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
}
