package auth

import (
	"errors"
	"time"

	"doodlebluff/models"

	jwt "github.com/dgrijalva/jwt-go"
)

// HostTokenTTL bounds how long a host token stays valid.
const HostTokenTTL = 24 * time.Hour

// JwtKey signs host tokens. Replace it at startup with SetKey.
var JwtKey = []byte("change-me")

var ErrInvalidToken = errors.New("invalid host token")

func SetKey(secret string) {
	JwtKey = []byte(secret)
}

// GenerateHostToken issues the token that authorises host-only actions on one session.
func GenerateHostToken(sessionID, hostID string) (string, error) {
	claims := &models.HostClaims{
		SessionID: sessionID,
		HostID:    hostID,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  time.Now().Unix(),
			ExpiresAt: time.Now().Add(HostTokenTTL).Unix(),
			Subject:   hostID,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JwtKey)
}

// ParseHostToken validates tokenString and returns its claims.
func ParseHostToken(tokenString string) (*models.HostClaims, error) {
	claims := &models.HostClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return JwtKey, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
