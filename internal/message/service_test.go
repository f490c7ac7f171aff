package message_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"farmstand/internal/common"
	"farmstand/internal/dbmysql"
	farmmocks "farmstand/internal/farm/mocks"
	"farmstand/internal/message"
	"farmstand/internal/message/mocks"
	usermocks "farmstand/internal/user/mocks"
)

type serviceMocks struct {
	repo     *mocks.MockRepository
	users    *usermocks.MockRepository
	farms    *farmmocks.MockRepository
	notifier *mocks.MockNotifier
}

func newService(t *testing.T) (message.Service, *serviceMocks) {
	ctrl := gomock.NewController(t)
	m := &serviceMocks{
		repo:     mocks.NewMockRepository(ctrl),
		users:    usermocks.NewMockRepository(ctrl),
		farms:    farmmocks.NewMockRepository(ctrl),
		notifier: mocks.NewMockNotifier(ctrl),
	}
	svc := message.NewService(m.repo, m.users, m.farms, m.notifier)
	return svc, m
}

func TestService_Send(t *testing.T) {
	farmID := uint64(44)

	tests := []struct {
		name        string
		recipientID uint64
		subject     string
		body        string
		farmSpaceID *uint64
		mockSetup   func(m *serviceMocks)
		expectError bool
		errorCode   string
	}{
		{
			name:        "successful send",
			recipientID: 2,
			subject:     "Is this still available?",
			body:        "Interested in your heirloom tomatoes.",
			mockSetup: func(m *serviceMocks) {
				m.users.EXPECT().Exists(gomock.Any(), uint64(2)).Return(true, nil)
				m.repo.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, msg *dbmysql.Message) error {
						assert.False(t, msg.IsRead)
						assert.Equal(t, uint64(1), msg.SenderID)
						msg.MessageID = 10
						msg.CreatedAt = time.Now()
						return nil
					})
				m.notifier.EXPECT().NotifyNewMessage(gomock.Any())
			},
		},
		{
			name:        "send with farm space context",
			recipientID: 2,
			subject:     "Plot rental",
			body:        "Is the back plot free this season?",
			farmSpaceID: &farmID,
			mockSetup: func(m *serviceMocks) {
				m.users.EXPECT().Exists(gomock.Any(), uint64(2)).Return(true, nil)
				m.farms.EXPECT().Exists(gomock.Any(), farmID).Return(true, nil)
				m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
				m.notifier.EXPECT().NotifyNewMessage(gomock.Any())
			},
		},
		{
			name:        "missing recipient",
			recipientID: 0,
			subject:     "hi",
			body:        "hello",
			mockSetup:   func(m *serviceMocks) {},
			expectError: true,
			errorCode:   common.ErrBadRequest,
		},
		{
			name:        "empty body",
			recipientID: 2,
			subject:     "hi",
			body:        "   ",
			mockSetup:   func(m *serviceMocks) {},
			expectError: true,
			errorCode:   common.ErrBadRequest,
		},
		{
			name:        "empty subject",
			recipientID: 2,
			subject:     "",
			body:        "hello",
			mockSetup:   func(m *serviceMocks) {},
			expectError: true,
			errorCode:   common.ErrBadRequest,
		},
		{
			name:        "recipient does not exist",
			recipientID: 99,
			subject:     "hi",
			body:        "hello",
			mockSetup: func(m *serviceMocks) {
				m.users.EXPECT().Exists(gomock.Any(), uint64(99)).Return(false, nil)
			},
			expectError: true,
			errorCode:   common.ErrBadRequest,
		},
		{
			name:        "farm space does not exist",
			recipientID: 2,
			subject:     "hi",
			body:        "hello",
			farmSpaceID: &farmID,
			mockSetup: func(m *serviceMocks) {
				m.users.EXPECT().Exists(gomock.Any(), uint64(2)).Return(true, nil)
				m.farms.EXPECT().Exists(gomock.Any(), farmID).Return(false, nil)
			},
			expectError: true,
			errorCode:   common.ErrBadRequest,
		},
		{
			name:        "storage failure propagates",
			recipientID: 2,
			subject:     "hi",
			body:        "hello",
			mockSetup: func(m *serviceMocks) {
				m.users.EXPECT().Exists(gomock.Any(), uint64(2)).Return(true, nil)
				m.repo.EXPECT().Create(gomock.Any(), gomock.Any()).
					Return(common.StorageUnavailable(assert.AnError))
			},
			expectError: true,
			errorCode:   common.ErrStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			tt.mockSetup(m)

			msg, err := svc.Send(context.Background(), 1, tt.recipientID, tt.subject, tt.body, tt.farmSpaceID)

			if tt.expectError {
				require.Error(t, err)
				assert.True(t, common.IsErrorCode(err, tt.errorCode), "got %v", err)
				assert.Nil(t, msg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, msg)
				assert.False(t, msg.IsRead)
				assert.Equal(t, uint64(1), msg.SenderID)
				assert.Equal(t, tt.recipientID, msg.RecipientID)
			}
		})
	}
}

func TestService_MarkRead(t *testing.T) {
	tests := []struct {
		name        string
		callerID    uint64
		mockSetup   func(m *serviceMocks)
		expectError bool
		errorCode   string
	}{
		{
			name:     "recipient marks read",
			callerID: 2,
			mockSetup: func(m *serviceMocks) {
				stored := &dbmysql.Message{MessageID: 5, SenderID: 1, RecipientID: 2}
				m.repo.EXPECT().GetByID(gomock.Any(), uint64(5)).Return(stored, nil)
				m.repo.EXPECT().MarkRead(gomock.Any(), uint64(5)).
					Return(&dbmysql.Message{MessageID: 5, SenderID: 1, RecipientID: 2, IsRead: true}, nil)
			},
		},
		{
			name:     "sender cannot mark read",
			callerID: 1,
			mockSetup: func(m *serviceMocks) {
				stored := &dbmysql.Message{MessageID: 5, SenderID: 1, RecipientID: 2}
				m.repo.EXPECT().GetByID(gomock.Any(), uint64(5)).Return(stored, nil)
			},
			expectError: true,
			errorCode:   common.ErrForbidden,
		},
		{
			name:     "third party cannot mark read",
			callerID: 3,
			mockSetup: func(m *serviceMocks) {
				stored := &dbmysql.Message{MessageID: 5, SenderID: 1, RecipientID: 2}
				m.repo.EXPECT().GetByID(gomock.Any(), uint64(5)).Return(stored, nil)
			},
			expectError: true,
			errorCode:   common.ErrForbidden,
		},
		{
			name:     "unknown message",
			callerID: 2,
			mockSetup: func(m *serviceMocks) {
				m.repo.EXPECT().GetByID(gomock.Any(), uint64(5)).Return(nil, common.NotFound("message"))
			},
			expectError: true,
			errorCode:   common.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			tt.mockSetup(m)

			msg, err := svc.MarkRead(context.Background(), tt.callerID, 5)

			if tt.expectError {
				require.Error(t, err)
				assert.True(t, common.IsErrorCode(err, tt.errorCode), "got %v", err)
			} else {
				require.NoError(t, err)
				assert.True(t, msg.IsRead)
			}
		})
	}
}

func TestService_ConversationWith_MarksThreadRead(t *testing.T) {
	svc, m := newService(t)

	thread := []*dbmysql.Message{
		{MessageID: 1, SenderID: 2, RecipientID: 1, IsRead: false},
		{MessageID: 2, SenderID: 1, RecipientID: 2, IsRead: false},
		{MessageID: 3, SenderID: 2, RecipientID: 1, IsRead: false},
	}
	m.repo.EXPECT().ListConversation(gomock.Any(), uint64(1), uint64(2), nil).Return(thread, nil)
	m.repo.EXPECT().MarkConversationRead(gomock.Any(), uint64(1), uint64(2), nil).Return(int64(2), nil)

	messages, err := svc.ConversationWith(context.Background(), 1, 2, nil)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	// Messages addressed to the caller come back read; the caller's
	// own outbound message keeps the recipient's unread state
	assert.True(t, messages[0].IsRead)
	assert.False(t, messages[1].IsRead)
	assert.True(t, messages[2].IsRead)
}

func TestService_ConversationWith_ScopesMarkReadToContext(t *testing.T) {
	svc, m := newService(t)
	farmID := uint64(44)

	thread := []*dbmysql.Message{
		{MessageID: 1, SenderID: 2, RecipientID: 1, FarmSpaceID: &farmID},
	}
	m.repo.EXPECT().ListConversation(gomock.Any(), uint64(1), uint64(2), &farmID).Return(thread, nil)
	// The mark-read must carry the same filter as the fetch
	m.repo.EXPECT().MarkConversationRead(gomock.Any(), uint64(1), uint64(2), &farmID).Return(int64(1), nil)

	messages, err := svc.ConversationWith(context.Background(), 1, 2, &farmID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.True(t, messages[0].IsRead)
}

func TestService_ConversationWith_EmptyThreadIsNotAnError(t *testing.T) {
	svc, m := newService(t)

	m.repo.EXPECT().ListConversation(gomock.Any(), uint64(1), uint64(9), nil).Return(nil, nil)
	m.repo.EXPECT().MarkConversationRead(gomock.Any(), uint64(1), uint64(9), nil).Return(int64(0), nil)

	messages, err := svc.ConversationWith(context.Background(), 1, 9, nil)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

func TestService_Conversations_ResolvesCounterparts(t *testing.T) {
	svc, m := newService(t)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	messages := []*dbmysql.Message{
		{MessageID: 1, SenderID: 2, RecipientID: 1, CreatedAt: base},
		{MessageID: 2, SenderID: 1, RecipientID: 3, CreatedAt: base.Add(time.Minute)},
	}
	m.repo.EXPECT().ListForUser(gomock.Any(), uint64(1)).Return(messages, nil)
	m.users.EXPECT().GetByID(gomock.Any(), uint64(3)).
		Return(&dbmysql.User{UserID: 3, DisplayName: "Otis Orchard", AvatarFileID: "abc123"}, nil)
	m.users.EXPECT().GetByID(gomock.Any(), uint64(2)).
		Return(nil, common.NotFound("user"))

	conversations, err := svc.Conversations(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, conversations, 2)

	assert.Equal(t, "Otis Orchard", conversations[0].CounterpartName)
	assert.Equal(t, "/media/abc123", conversations[0].CounterpartImage)
	assert.Equal(t, "former member", conversations[1].CounterpartName)
	assert.Empty(t, conversations[1].CounterpartImage)
}
