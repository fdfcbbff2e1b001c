package models

import (
	jwt "github.com/dgrijalva/jwt-go"
)

// HostClaims identify the host that created a session.
type HostClaims struct {
	SessionID string `json:"sid"`
	HostID    string `json:"hid"`
	jwt.StandardClaims
}
