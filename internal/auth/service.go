package auth

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"farmstand/internal/common"
	"farmstand/internal/config"
	"farmstand/internal/dbmysql"
	"farmstand/internal/user"
)

// Service owns login sessions: it issues them at sign-in, resolves
// them on every request (sliding the 7-day window forward), and tears
// them down at sign-out.
type Service interface {
	Register(ctx context.Context, email, displayName, password string, isGrower bool) (*dbmysql.User, string, error)
	Login(ctx context.Context, email, password string) (*dbmysql.User, string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*dbmysql.Session, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type service struct {
	sessions SessionRepository
	users    user.Repository
	codec    *TokenCodec
	ttl      time.Duration
}

func NewService(sessions SessionRepository, users user.Repository, codec *TokenCodec, cfg *config.Config) Service {
	days := cfg.Session.TTLDays
	if days <= 0 {
		days = 7
	}
	return &service{
		sessions: sessions,
		users:    users,
		codec:    codec,
		ttl:      time.Duration(days) * 24 * time.Hour,
	}
}

func (s *service) Register(ctx context.Context, email, displayName, password string, isGrower bool) (*dbmysql.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := common.ValidateEmail(email); err != nil {
		return nil, "", common.BadRequest(err.Error())
	}
	if err := common.ValidateDisplayName(displayName); err != nil {
		return nil, "", common.BadRequest(err.Error())
	}
	if err := common.ValidatePassword(password); err != nil {
		return nil, "", common.BadRequest(err.Error())
	}

	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if taken {
		return nil, "", common.NewAppError(common.ErrDuplicate, "email already registered", nil)
	}

	hashed, err := common.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	u := &dbmysql.User{
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: hashed,
		IsGrower:     isGrower,
		Status:       "active",
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.openSession(ctx, u.UserID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Login(ctx context.Context, email, password string) (*dbmysql.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", common.BadRequest("email and password required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if common.IsErrorCode(err, common.ErrNotFound) {
			return nil, "", common.NewAppError(common.ErrInvalidCredentials, "invalid email or password", nil)
		}
		return nil, "", err
	}

	if err := common.CheckPassword(password, u.PasswordHash); err != nil {
		return nil, "", common.NewAppError(common.ErrInvalidCredentials, "invalid email or password", nil)
	}

	token, err := s.openSession(ctx, u.UserID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Logout(ctx context.Context, token string) error {
	sessionID, err := s.codec.Decode(token)
	if err != nil {
		// Nothing to tear down for a token we never issued
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// Authenticate resolves a token to its live session and slides the
// expiry window forward.
func (s *service) Authenticate(ctx context.Context, token string) (*dbmysql.Session, error) {
	sessionID, err := s.codec.Decode(token)
	if err != nil {
		return nil, common.Unauthenticated("invalid session token")
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if common.IsErrorCode(err, common.ErrNotFound) {
			return nil, common.Unauthenticated("no such session")
		}
		return nil, err
	}

	if time.Now().After(session.ExpiresAt) {
		if err := s.sessions.Delete(ctx, sessionID); err != nil {
			log.Printf("failed to delete expired session %s: %v", sessionID, err)
		}
		return nil, common.NewAppError(common.ErrSessionExpired, "session expired", nil)
	}

	session.ExpiresAt = time.Now().Add(s.ttl)
	if err := s.sessions.Touch(ctx, sessionID, session.ExpiresAt); err != nil {
		return nil, err
	}
	return session, nil
}

// PurgeExpired removes sessions whose window already closed. Expired
// rows are also rejected at authentication time; this just keeps the
// table from growing without bound.
func (s *service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, time.Now())
}

func (s *service) openSession(ctx context.Context, userID uint64) (string, error) {
	session := &dbmysql.Session{
		SessionID: uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", err
	}
	return s.codec.Encode(session.SessionID)
}
