package cart

import (
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Identity is the per-request resolution result for cart ownership: either an
// anonymous guest session or a verified user. It is computed once at the edge
// and threaded explicitly through every cart operation; nothing in the core
// reads ambient request state.
type Identity interface {
	isIdentity()
}

// Guest owns a session-keyed anonymous cart.
type Guest struct {
	SessionID string
}

func (Guest) isIdentity() {}

// User owns the persistent cart backed by pending order lines.
type User struct {
	ID bson.ObjectID
}

func (User) isIdentity() {}

// ResolveIdentity derives the request's cart identity. Resolution always
// succeeds:
//
//   - authenticated requests resolve to User; a guest cookie riding along is
//     returned as staleSession so the caller can trigger the one-time merge;
//   - unauthenticated requests with a cookie resolve to that guest session;
//   - otherwise a fresh session id is minted and minted=true tells the caller
//     to propagate it back as the guest_session cookie.
func ResolveIdentity(authedUserID *bson.ObjectID, cookieSession string) (id Identity, staleSession string, minted bool) {
	if authedUserID != nil {
		return User{ID: *authedUserID}, cookieSession, false
	}
	if cookieSession != "" {
		return Guest{SessionID: cookieSession}, "", false
	}
	return Guest{SessionID: uuid.NewString()}, "", true
}
