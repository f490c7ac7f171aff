package dbmysql

import (
	"time"

	"gorm.io/gorm"
)

// FarmSpace is a grower's rentable plot listing. The messaging core
// only reads it, to validate a message's optional context reference.
type FarmSpace struct {
	FarmSpaceID uint64         `gorm:"primaryKey;column:farm_space_id;autoIncrement" json:"farmSpaceId"`
	OwnerID     uint64         `gorm:"column:owner_id;index;not null" json:"ownerId"`
	Title       string         `gorm:"column:title;size:255;not null" json:"title"`
	Description string         `gorm:"column:description;type:text" json:"description"`
	ZipCode     string         `gorm:"column:zip_code;size:10" json:"zipCode"`
	Active      bool           `gorm:"column:active;default:true" json:"active"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
