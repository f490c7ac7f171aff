package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"farmstand/internal/config"
)

// sessionClaims wraps the session id in a signed token. Expiry is NOT
// carried in the token: the session row is the authority, which lets
// the 7-day window slide without reissuing cookies.
type sessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies the cookie-borne session token. The
// signature check rejects tampered cookies before any store lookup.
type TokenCodec struct {
	secret []byte
}

func NewTokenCodec(cfg *config.Config) *TokenCodec {
	return &TokenCodec{secret: []byte(cfg.Session.Secret)}
}

func (c *TokenCodec) Encode(sessionID string) (string, error) {
	claims := &sessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
			Issuer:   "farmstand",
			Subject:  "session",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

func (c *TokenCodec) Decode(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &sessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	})
	if err != nil {
		return "", err
	}

	if claims, ok := token.Claims.(*sessionClaims); ok && token.Valid && claims.SessionID != "" {
		return claims.SessionID, nil
	}
	return "", errors.New("invalid session token")
}
