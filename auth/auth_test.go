package auth

import (
	"testing"
	"time"

	"doodlebluff/models"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostTokenRoundTrip(t *testing.T) {
	SetKey("test-secret")

	token, err := GenerateHostToken("session-1", "host-1")
	require.NoError(t, err)

	claims, err := ParseHostToken(token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, "host-1", claims.HostID)
}

func TestParseHostTokenRejectsOtherKeys(t *testing.T) {
	SetKey("first")
	token, err := GenerateHostToken("s", "h")
	require.NoError(t, err)

	SetKey("second")
	_, err = ParseHostToken(token)
	assert.Error(t, err)
}

func TestParseHostTokenRejectsExpired(t *testing.T) {
	SetKey("test-secret")
	claims := &models.HostClaims{
		SessionID:      "s",
		StandardClaims: jwt.StandardClaims{ExpiresAt: time.Now().Add(-time.Minute).Unix()},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(JwtKey)
	require.NoError(t, err)

	_, err = ParseHostToken(token)
	assert.Error(t, err)
}

func TestParseHostTokenRejectsGarbage(t *testing.T) {
	_, err := ParseHostToken("not-a-token")
	assert.Error(t, err)
}
