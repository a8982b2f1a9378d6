package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/docvault/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, key []byte, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(key)
	require.NoError(t, err)
	return s
}

func TestActorIDFromToken(t *testing.T) {
	key := []byte("test-secret")

	t.Run("valid token", func(t *testing.T) {
		s := signToken(t, key, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			ActorID: "user1",
		})

		actorID, err := ActorIDFromToken(s, key)
		require.NoError(t, err)
		assert.Equal(t, "user1", actorID)
	})

	t.Run("expired token", func(t *testing.T) {
		s := signToken(t, key, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
			ActorID: "user1",
		})

		_, err := ActorIDFromToken(s, key)
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		s := signToken(t, []byte("other-secret"), Claims{ActorID: "user1"})

		_, err := ActorIDFromToken(s, key)
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("missing actor id", func(t *testing.T) {
		s := signToken(t, key, Claims{})

		_, err := ActorIDFromToken(s, key)
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := ActorIDFromToken("not-a-token", key)
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})
}
