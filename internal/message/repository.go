package message

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"farmstand/internal/common"
	"farmstand/internal/dbmysql"
)

// Repository is durable CRUD over Message rows. Authorization lives in
// the service layer; the repository only talks to the store.
type Repository interface {
	Create(ctx context.Context, msg *dbmysql.Message) error
	GetByID(ctx context.Context, messageID uint64) (*dbmysql.Message, error)
	ListForUser(ctx context.Context, userID uint64) ([]*dbmysql.Message, error)
	ListConversation(ctx context.Context, userID, counterpartID uint64, farmSpaceID *uint64) ([]*dbmysql.Message, error)
	MarkRead(ctx context.Context, messageID uint64) (*dbmysql.Message, error)
	MarkConversationRead(ctx context.Context, userID, counterpartID uint64, farmSpaceID *uint64) (int64, error)
	UnreadCount(ctx context.Context, userID uint64) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, msg *dbmysql.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return common.StorageUnavailable(err)
	}
	return nil
}

func (r *messageRepository) GetByID(ctx context.Context, messageID uint64) (*dbmysql.Message, error) {
	var msg dbmysql.Message
	err := r.db.WithContext(ctx).Where("message_id = ?", messageID).First(&msg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFound("message")
		}
		return nil, common.StorageUnavailable(err)
	}
	return &msg, nil
}

func (r *messageRepository) ListForUser(ctx context.Context, userID uint64) ([]*dbmysql.Message, error) {
	var messages []*dbmysql.Message
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Order("created_at ASC, message_id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, common.StorageUnavailable(err)
	}
	return messages, nil
}

func (r *messageRepository) ListConversation(ctx context.Context, userID, counterpartID uint64, farmSpaceID *uint64) ([]*dbmysql.Message, error) {
	q := r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)",
			userID, counterpartID, counterpartID, userID)
	if farmSpaceID != nil {
		q = q.Where("farm_space_id = ?", *farmSpaceID)
	}

	var messages []*dbmysql.Message
	err := q.Order("created_at ASC, message_id ASC").Find(&messages).Error
	if err != nil {
		return nil, common.StorageUnavailable(err)
	}
	return messages, nil
}

// MarkRead flips is_read to true. Calling it on an already-read
// message is a no-op, not an error.
func (r *messageRepository) MarkRead(ctx context.Context, messageID uint64) (*dbmysql.Message, error) {
	msg, err := r.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.IsRead {
		return msg, nil
	}

	err = r.db.WithContext(ctx).Model(&dbmysql.Message{}).
		Where("message_id = ?", messageID).
		Update("is_read", true).Error
	if err != nil {
		return nil, common.StorageUnavailable(err)
	}
	msg.IsRead = true
	return msg, nil
}

// MarkConversationRead flips every unread message from counterpart to
// user, scoped to one farm space when a filter is given so messages
// the caller never fetched stay unread. Returns how many rows changed.
func (r *messageRepository) MarkConversationRead(ctx context.Context, userID, counterpartID uint64, farmSpaceID *uint64) (int64, error) {
	q := r.db.WithContext(ctx).Model(&dbmysql.Message{}).
		Where("recipient_id = ? AND sender_id = ? AND is_read = ?", userID, counterpartID, false)
	if farmSpaceID != nil {
		q = q.Where("farm_space_id = ?", *farmSpaceID)
	}
	res := q.Update("is_read", true)
	if res.Error != nil {
		return 0, common.StorageUnavailable(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *messageRepository) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.Message{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, common.StorageUnavailable(err)
	}
	return count, nil
}
