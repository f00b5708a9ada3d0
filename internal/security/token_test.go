package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundtrip(t *testing.T) {
	token, err := SignSessionToken("secret", "session-123", time.Hour)
	require.NoError(t, err)

	sid, err := ParseSessionToken(token, "secret")
	require.NoError(t, err)
	require.Equal(t, "session-123", sid)
}

func TestSessionTokenWrongSecret(t *testing.T) {
	token, err := SignSessionToken("secret", "session-123", time.Hour)
	require.NoError(t, err)

	_, err = ParseSessionToken(token, "other-secret")
	require.Error(t, err)
}

func TestSessionTokenExpired(t *testing.T) {
	token, err := SignSessionToken("secret", "session-123", -time.Minute)
	require.NoError(t, err)

	_, err = ParseSessionToken(token, "secret")
	require.Error(t, err)
}
