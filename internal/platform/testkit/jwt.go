package testkit

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKey signs fixture tokens; connectors never verify it
var TokenKey = []byte("testkit-signing-key")

// MintJWT signs claims with HS256 and returns the compact token
// exp defaults to one hour from now when absent
func MintJWT(t testing.TB, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(TokenKey)
	if err != nil {
		t.Fatalf("mint jwt: %v", err)
	}
	return s
}

// Bearer returns an Authorization header value for claims
func Bearer(t testing.TB, claims jwt.MapClaims) string {
	t.Helper()
	return "Bearer " + MintJWT(t, claims)
}
