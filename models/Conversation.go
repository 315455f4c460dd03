package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation groups messages between a set of participants. Direct
// conversations (IsGroup=false) are deduplicated per user pair; the
// pair is stored ordered so (a,b) and (b,a) hit the same row.
type Conversation struct {
	gorm.Model
	IsGroup       bool       `json:"isGroup" gorm:"default:false"`
	UserAID       uint       `json:"userAID" gorm:"index:idx_direct_pair"`
	UserBID       uint       `json:"userBID" gorm:"index:idx_direct_pair"`
	Title         string     `json:"title"`
	LastMessageID *uint      `json:"lastMessageID"`
	LastMessageAt *time.Time `json:"lastMessageAt" gorm:"index"`

	UserA    *User     `json:"userA,omitempty" gorm:"foreignKey:UserAID"`
	UserB    *User     `json:"userB,omitempty" gorm:"foreignKey:UserBID"`
	Messages []Message `json:"messages,omitempty" gorm:"constraint:OnDelete:CASCADE"`
}
