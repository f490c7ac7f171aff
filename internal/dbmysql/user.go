package dbmysql

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	UserID       uint64         `gorm:"primaryKey;column:user_id;autoIncrement" json:"userId"`
	Email        string         `gorm:"column:email;uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"column:password_hash;size:255;not null" json:"-"`
	DisplayName  string         `gorm:"column:display_name;size:80;not null" json:"displayName"`
	IsGrower     bool           `gorm:"column:is_grower;default:false" json:"isGrower"`
	AvatarFileID string         `gorm:"column:avatar_file_id;size:36" json:"avatarFileId,omitempty"`
	Status       string         `gorm:"column:status;type:enum('active','suspended','deleted');default:'active'" json:"status"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
