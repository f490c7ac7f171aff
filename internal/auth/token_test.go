package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmstand/internal/config"
)

func testCodec(secret string) *TokenCodec {
	return NewTokenCodec(&config.Config{
		Session: config.SessionConfig{Secret: secret},
	})
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := testCodec("test-secret")

	token, err := codec.Encode("11111111-2222-3333-4444-555555555555")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sessionID, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", sessionID)
}

func TestTokenCodec_RejectsTamperedToken(t *testing.T) {
	codec := testCodec("test-secret")

	token, err := codec.Encode("session-id")
	require.NoError(t, err)

	// Flip a character in the payload segment
	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = codec.Decode(tampered)
	assert.Error(t, err)
}

func TestTokenCodec_RejectsWrongSecret(t *testing.T) {
	token, err := testCodec("secret-one").Encode("session-id")
	require.NoError(t, err)

	_, err = testCodec("secret-two").Decode(token)
	assert.Error(t, err)
}

func TestTokenCodec_RejectsGarbage(t *testing.T) {
	codec := testCodec("test-secret")

	for _, garbage := range []string{"", "not-a-token", "a.b.c"} {
		_, err := codec.Decode(garbage)
		assert.Error(t, err, "token %q", garbage)
	}
}
