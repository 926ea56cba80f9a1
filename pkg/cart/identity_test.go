package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestResolveIdentityAuthenticated(t *testing.T) {
	userID := bson.NewObjectID()

	id, stale, minted := ResolveIdentity(&userID, "")
	assert.Equal(t, User{ID: userID}, id)
	assert.Empty(t, stale)
	assert.False(t, minted)
}

func TestResolveIdentityAuthenticatedWithStaleCookie(t *testing.T) {
	userID := bson.NewObjectID()

	id, stale, minted := ResolveIdentity(&userID, "sess-1")
	assert.Equal(t, User{ID: userID}, id)
	assert.Equal(t, "sess-1", stale)
	assert.False(t, minted)
}

func TestResolveIdentityGuestCookie(t *testing.T) {
	id, stale, minted := ResolveIdentity(nil, "sess-1")
	assert.Equal(t, Guest{SessionID: "sess-1"}, id)
	assert.Empty(t, stale)
	assert.False(t, minted)
}

func TestResolveIdentityMintsSession(t *testing.T) {
	id, stale, minted := ResolveIdentity(nil, "")
	guest, ok := id.(Guest)
	require.True(t, ok)
	assert.Empty(t, stale)
	assert.True(t, minted)

	_, err := uuid.Parse(guest.SessionID)
	assert.NoError(t, err)

	// Each mint is a distinct session.
	other, _, _ := ResolveIdentity(nil, "")
	assert.NotEqual(t, guest, other)
}
