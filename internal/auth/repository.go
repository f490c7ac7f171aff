package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"farmstand/internal/common"
	"farmstand/internal/dbmysql"
)

// SessionRepository persists login sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *dbmysql.Session) error
	GetByID(ctx context.Context, sessionID string) (*dbmysql.Session, error)
	Touch(ctx context.Context, sessionID string, expiresAt time.Time) error
	Delete(ctx context.Context, sessionID string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *dbmysql.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return common.StorageUnavailable(err)
	}
	return nil
}

func (r *sessionRepository) GetByID(ctx context.Context, sessionID string) (*dbmysql.Session, error) {
	var session dbmysql.Session
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFound("session")
		}
		return nil, common.StorageUnavailable(err)
	}
	return &session, nil
}

func (r *sessionRepository) Touch(ctx context.Context, sessionID string, expiresAt time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&dbmysql.Session{}).
		Where("session_id = ?", sessionID).
		Update("expires_at", expiresAt).Error
	if err != nil {
		return common.StorageUnavailable(err)
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.db.WithContext(ctx).Delete(&dbmysql.Session{}, "session_id = ?", sessionID).Error; err != nil {
		return common.StorageUnavailable(err)
	}
	return nil
}

func (r *sessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&dbmysql.Session{}, "expires_at < ?", before)
	if res.Error != nil {
		return 0, common.StorageUnavailable(res.Error)
	}
	return res.RowsAffected, nil
}
