package dbmysql

import (
	"time"
)

// Message is a direct message between two users, optionally tied to a
// farm space being discussed. Everything except IsRead is immutable
// once written; IsRead only ever moves false to true.
type Message struct {
	MessageID   uint64    `gorm:"primaryKey;column:message_id;autoIncrement" json:"id"`
	SenderID    uint64    `gorm:"column:sender_id;index;not null" json:"senderId"`
	RecipientID uint64    `gorm:"column:recipient_id;index;not null" json:"recipientId"`
	Subject     string    `gorm:"column:subject;size:255;not null" json:"subject"`
	Body        string    `gorm:"column:body;type:text;not null" json:"body"`
	IsRead      bool      `gorm:"column:is_read;default:false" json:"isRead"`
	FarmSpaceID *uint64   `gorm:"column:farm_space_id;index" json:"farmSpaceId,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
