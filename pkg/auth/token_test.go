package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestTokenRoundTrip(t *testing.T) {
	service := NewTokenService([]byte("test-secret"))
	userID := bson.NewObjectID()

	token, err := service.Generate(userID, "admin")
	require.NoError(t, err)

	claims, err := service.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)

	decoded, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, decoded)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, err := NewTokenService([]byte("secret-a")).Generate(bson.NewObjectID(), "customer")
	require.NoError(t, err)

	_, err = NewTokenService([]byte("secret-b")).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := NewTokenService([]byte("test-secret")).Parse("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
}
