package dbmysql

import (
	"time"
)

// Session is a server-side login session. ExpiresAt slides forward on
// every authenticated request.
type Session struct {
	SessionID string    `gorm:"primaryKey;column:session_id;size:36" json:"-"`
	UserID    uint64    `gorm:"column:user_id;index;not null" json:"userId"`
	ExpiresAt time.Time `gorm:"column:expires_at;index;not null" json:"expiresAt"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}
