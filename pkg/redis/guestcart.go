package redis

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nerakcos/storefront-api/pkg/models"
)

// SessionTTL matches the guest_session cookie lifetime; an untouched guest
// cart expires with its cookie.
const SessionTTL = 30 * 24 * time.Hour

// GuestCartStore keeps anonymous carts in one Redis hash per session:
// guest_cart:{sessionID}, field = product id hex, value = quantity. The hash
// field keying gives "at most one line per (session, product)" for free.
type GuestCartStore struct {
	client *redisclient.Client
}

func NewGuestCartStore(client *redisclient.Client) *GuestCartStore {
	return &GuestCartStore{client: client}
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("guest_cart:%s", sessionID)
}

// Lines returns the session's cart lines sorted by product id for stable
// output. A missing key is an empty cart.
func (g *GuestCartStore) Lines(ctx context.Context, sessionID string) ([]models.GuestCartLine, error) {
	fields, err := g.client.HGetAll(ctx, cartKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}

	lines := make([]models.GuestCartLine, 0, len(fields))
	for field, value := range fields {
		productID, err := bson.ObjectIDFromHex(field)
		if err != nil {
			continue
		}
		quantity, err := strconv.Atoi(value)
		if err != nil || quantity < 1 {
			continue
		}
		lines = append(lines, models.GuestCartLine{
			SessionID: sessionID,
			ProductID: productID,
			Quantity:  quantity,
		})
	}

	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ProductID.Hex() < lines[j].ProductID.Hex()
	})
	return lines, nil
}

// Increment adds quantity to the session's line for the product, creating the
// line when absent, and refreshes the session TTL.
func (g *GuestCartStore) Increment(ctx context.Context, sessionID string, productID bson.ObjectID, quantity int) error {
	key := cartKey(sessionID)

	pipe := g.client.TxPipeline()
	pipe.HIncrBy(ctx, key, productID.Hex(), int64(quantity))
	pipe.Expire(ctx, key, SessionTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// SetQuantity overwrites the line's quantity. Callers are expected to have
// resolved the line within the session first; setting an absent field would
// otherwise create it.
func (g *GuestCartStore) SetQuantity(ctx context.Context, sessionID string, productID bson.ObjectID, quantity int) error {
	key := cartKey(sessionID)

	pipe := g.client.TxPipeline()
	pipe.HSet(ctx, key, productID.Hex(), quantity)
	pipe.Expire(ctx, key, SessionTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (g *GuestCartStore) Remove(ctx context.Context, sessionID string, productID bson.ObjectID) error {
	return g.client.HDel(ctx, cartKey(sessionID), productID.Hex()).Err()
}

// Clear drops the whole session cart. Called after a successful merge or
// guest checkout; the guest side must not survive either.
func (g *GuestCartStore) Clear(ctx context.Context, sessionID string) error {
	return g.client.Del(ctx, cartKey(sessionID)).Err()
}
