package user

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"farmstand/internal/common"
	"farmstand/internal/dbmysql"
)

// Repository is the user directory: account creation plus the lookups
// the rest of the app needs to resolve counterpart identities.
type Repository interface {
	Create(ctx context.Context, user *dbmysql.User) error
	GetByID(ctx context.Context, userID uint64) (*dbmysql.User, error)
	GetByEmail(ctx context.Context, email string) (*dbmysql.User, error)
	Exists(ctx context.Context, userID uint64) (bool, error)
	EmailTaken(ctx context.Context, email string) (bool, error)
	UpdateAvatar(ctx context.Context, userID uint64, fileID string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *dbmysql.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return common.StorageUnavailable(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, userID uint64) (*dbmysql.User, error) {
	var user dbmysql.User
	err := r.db.WithContext(ctx).Where("user_id = ? AND status = ?", userID, "active").First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFound("user")
		}
		return nil, common.StorageUnavailable(err)
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*dbmysql.User, error) {
	var user dbmysql.User
	err := r.db.WithContext(ctx).Where("email = ? AND status = ?", email, "active").First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFound("user")
		}
		return nil, common.StorageUnavailable(err)
	}
	return &user, nil
}

func (r *userRepository) Exists(ctx context.Context, userID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.User{}).
		Where("user_id = ? AND status = ?", userID, "active").
		Count(&count).Error
	if err != nil {
		return false, common.StorageUnavailable(err)
	}
	return count > 0, nil
}

func (r *userRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.User{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, common.StorageUnavailable(err)
	}
	return count > 0, nil
}

func (r *userRepository) UpdateAvatar(ctx context.Context, userID uint64, fileID string) error {
	err := r.db.WithContext(ctx).Model(&dbmysql.User{}).
		Where("user_id = ?", userID).
		Update("avatar_file_id", fileID).Error
	if err != nil {
		return common.StorageUnavailable(err)
	}
	return nil
}
