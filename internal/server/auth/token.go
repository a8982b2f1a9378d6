// Package auth verifies the actor bearer tokens issued by the surrounding
// identity layer. Authorization policy lives there; this package only
// establishes which actor a request claims to be.
package auth

import (
	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered claims plus the actor identifier recorded
// in audit entries.
type Claims struct {
	jwt.RegisteredClaims
	ActorID string
}

// ActorIDFromToken validates the HS256 token signature and returns the
// actor id claim. Invalid, expired, or unsigned tokens fail with
// ErrInvalidToken.
func ActorIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		return "", common.ErrInvalidToken
	}

	if !token.Valid || claims.ActorID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.ActorID, nil
}
