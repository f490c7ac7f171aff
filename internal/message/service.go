package message

import (
	"context"
	"strings"

	"farmstand/internal/common"
	"farmstand/internal/dbmysql"
	"farmstand/internal/farm"
	"farmstand/internal/user"
)

// Notifier pushes a new-message notification to the participants'
// live connections. Delivery is best-effort; absent connections are
// simply skipped.
type Notifier interface {
	NotifyNewMessage(msg *dbmysql.Message)
}

// Service is the messaging core behind the HTTP handlers: validation,
// authorization, conversation aggregation, and the relay trigger.
type Service interface {
	Send(ctx context.Context, senderID, recipientID uint64, subject, body string, farmSpaceID *uint64) (*dbmysql.Message, error)
	Conversations(ctx context.Context, userID uint64) ([]*Conversation, error)
	ConversationWith(ctx context.Context, userID, counterpartID uint64, farmSpaceID *uint64) ([]*dbmysql.Message, error)
	MarkRead(ctx context.Context, callerID, messageID uint64) (*dbmysql.Message, error)
	UnreadCount(ctx context.Context, userID uint64) (int64, error)
}

type service struct {
	repo     Repository
	users    user.Repository
	farms    farm.Repository
	notifier Notifier
}

func NewService(repo Repository, users user.Repository, farms farm.Repository, notifier Notifier) Service {
	return &service{repo: repo, users: users, farms: farms, notifier: notifier}
}

// Send validates, persists, then notifies. The broadcast and the HTTP
// response are independent completions: clients must treat the
// notification as a hint to refetch, not as the authoritative payload.
func (s *service) Send(ctx context.Context, senderID, recipientID uint64, subject, body string, farmSpaceID *uint64) (*dbmysql.Message, error) {
	subject = strings.TrimSpace(subject)
	body = strings.TrimSpace(body)

	if recipientID == 0 {
		return nil, common.BadRequest("recipient is required")
	}
	if body == "" {
		return nil, common.BadRequest("message body cannot be empty")
	}
	if subject == "" {
		return nil, common.BadRequest("subject cannot be empty")
	}

	exists, err := s.users.Exists(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, common.BadRequest("recipient does not exist")
	}

	if farmSpaceID != nil {
		ok, err := s.farms.Exists(ctx, *farmSpaceID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, common.BadRequest("farm space does not exist")
		}
	}

	msg := &dbmysql.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Subject:     subject,
		Body:        body,
		FarmSpaceID: farmSpaceID,
		IsRead:      false,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyNewMessage(msg)
	}
	return msg, nil
}

func (s *service) Conversations(ctx context.Context, userID uint64) ([]*Conversation, error) {
	messages, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	conversations := aggregate(userID, messages)
	for _, conv := range conversations {
		u, err := s.users.GetByID(ctx, conv.CounterpartID)
		if err != nil {
			if common.IsErrorCode(err, common.ErrNotFound) {
				conv.CounterpartName = "former member"
				continue
			}
			return nil, err
		}
		conv.CounterpartName = u.DisplayName
		if u.AvatarFileID != "" {
			conv.CounterpartImage = "/media/" + u.AvatarFileID
		}
	}
	return conversations, nil
}

// ConversationWith returns the thread and, as a side effect, marks
// every message in it addressed to the caller as read. The mark-read
// carries the same farm-space filter as the fetch: messages in other
// contexts were not shown, so they stay unread. An empty thread is a
// valid result, not an error.
func (s *service) ConversationWith(ctx context.Context, userID, counterpartID uint64, farmSpaceID *uint64) ([]*dbmysql.Message, error) {
	messages, err := s.repo.ListConversation(ctx, userID, counterpartID, farmSpaceID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.MarkConversationRead(ctx, userID, counterpartID, farmSpaceID); err != nil {
		return nil, err
	}
	for _, msg := range messages {
		if msg.RecipientID == userID {
			msg.IsRead = true
		}
	}
	return messages, nil
}

// MarkRead flips the unread flag. Only the recipient may clear their
// own flag; anyone else gets Forbidden even with a valid session.
func (s *service) MarkRead(ctx context.Context, callerID, messageID uint64) (*dbmysql.Message, error) {
	msg, err := s.repo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.RecipientID != callerID {
		return nil, common.Forbidden("only the recipient can mark a message read")
	}
	return s.repo.MarkRead(ctx, messageID)
}

func (s *service) UnreadCount(ctx context.Context, userID uint64) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}
