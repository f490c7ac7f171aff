package farm

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"farmstand/internal/common"
	"farmstand/internal/dbmysql"
)

// Repository is the read-only farm-space collaborator used to validate
// a message's optional context reference.
type Repository interface {
	GetByID(ctx context.Context, farmSpaceID uint64) (*dbmysql.FarmSpace, error)
	Exists(ctx context.Context, farmSpaceID uint64) (bool, error)
}

type farmRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &farmRepository{db: db}
}

func (r *farmRepository) GetByID(ctx context.Context, farmSpaceID uint64) (*dbmysql.FarmSpace, error) {
	var space dbmysql.FarmSpace
	err := r.db.WithContext(ctx).Where("farm_space_id = ?", farmSpaceID).First(&space).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFound("farm space")
		}
		return nil, common.StorageUnavailable(err)
	}
	return &space, nil
}

func (r *farmRepository) Exists(ctx context.Context, farmSpaceID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.FarmSpace{}).
		Where("farm_space_id = ? AND active = ?", farmSpaceID, true).
		Count(&count).Error
	if err != nil {
		return false, common.StorageUnavailable(err)
	}
	return count > 0, nil
}
