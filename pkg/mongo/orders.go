package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/nerakcos/storefront-api/pkg/models"
)

var ErrInsufficientStock = errors.New("insufficient stock")

// PendingByUser returns the user's live cart lines, oldest first.
func (s *Store) PendingByUser(ctx context.Context, userID bson.ObjectID) ([]models.Order, error) {
	cursor, err := s.collection(collOrders).Find(ctx,
		bson.D{
			{Key: "user_id", Value: userID},
			{Key: "status", Value: models.OrderStatusPending},
		},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// pendingLineUpdate builds the increment-or-create pipeline for one pending
// line. The second stage recomputes total_price from the post-increment
// quantity so the snapshot is always unit price times quantity, never the sum of
// stale snapshots.
func pendingLineUpdate(quantity int, unitPrice float64) mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "quantity", Value: bson.D{{Key: "$add", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$quantity", 0}}},
				quantity,
			}}}},
		}}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "total_price", Value: bson.D{{Key: "$multiply", Value: bson.A{"$quantity", unitPrice}}}},
			{Key: "created_at", Value: bson.D{{Key: "$ifNull", Value: bson.A{"$created_at", "$$NOW"}}}},
		}}},
	}
}

// UpsertPendingLine increments the user's pending line for the product, or
// creates it when absent. The partial unique index serializes concurrent
// increment-or-create attempts on the same (user, product); a loser of that
// race retries once and lands on the increment path.
func (s *Store) UpsertPendingLine(ctx context.Context, userID, productID bson.ObjectID, quantity int, unitPrice float64) error {
	filter := bson.D{
		{Key: "user_id", Value: userID},
		{Key: "product_id", Value: productID},
		{Key: "status", Value: models.OrderStatusPending},
	}

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		_, err = s.collection(collOrders).UpdateOne(ctx, filter,
			pendingLineUpdate(quantity, unitPrice),
			options.UpdateOne().SetUpsert(true))
		if err == nil || !isDuplicateKey(err) {
			return err
		}
	}
	return err
}

// SetPendingQuantity replaces the quantity of one of the user's pending lines
// and recomputes the price snapshot. A line id outside the user's cart is a
// not-found, never a cross-cart mutation.
func (s *Store) SetPendingQuantity(ctx context.Context, userID, orderID bson.ObjectID, quantity int, unitPrice float64) error {
	res, err := s.collection(collOrders).UpdateOne(ctx,
		bson.D{
			{Key: "_id", Value: orderID},
			{Key: "user_id", Value: userID},
			{Key: "status", Value: models.OrderStatusPending},
		},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "quantity", Value: quantity},
			{Key: "total_price", Value: unitPrice * float64(quantity)},
		}}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errNoDocuments()
	}
	return nil
}

func (s *Store) DeletePendingLine(ctx context.Context, userID, orderID bson.ObjectID) error {
	res, err := s.collection(collOrders).DeleteOne(ctx,
		bson.D{
			{Key: "_id", Value: orderID},
			{Key: "user_id", Value: userID},
			{Key: "status", Value: models.OrderStatusPending},
		})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errNoDocuments()
	}
	return nil
}

// mergedSession records that a guest session has already been folded into a
// user cart. The marker is written in the same transaction as the merged
// lines, so deleting the session's Redis hash is safe to retry: a second merge
// attempt for the same session applies nothing.
type mergedSession struct {
	SessionID string        `bson:"session_id"`
	UserID    bson.ObjectID `bson:"user_id"`
	CreatedAt time.Time     `bson:"created_at"`
}

// MergeGuestLines folds a drained guest cart into the user's pending lines as
// one transaction: either every line is merged and the session marked, or
// nothing is. A failure leaves the guest cart intact for retry; a retry after
// the commit finds the marker and skips straight to the session cleanup.
func (s *Store) MergeGuestLines(ctx context.Context, userID bson.ObjectID, sessionID string, lines []models.PricedLine) error {
	if len(lines) == 0 {
		return nil
	}
	_, err := s.withTransaction(ctx, func(ctx context.Context) (any, error) {
		err := s.collection(collMergedSessions).FindOne(ctx,
			bson.D{{Key: "session_id", Value: sessionID}}).Err()
		if err == nil {
			// Already committed on an earlier attempt; only the session
			// hash deletion is left to redo.
			return nil, nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			return nil, err
		}

		if _, err := s.collection(collMergedSessions).InsertOne(ctx, mergedSession{
			SessionID: sessionID,
			UserID:    userID,
			CreatedAt: time.Now(),
		}); err != nil {
			return nil, err
		}
		for _, line := range lines {
			if err := s.UpsertPendingLine(ctx, userID, line.ProductID, line.Quantity, line.UnitPrice); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}

// MarkAllPendingPaid transitions every pending line of the user to paid in a
// single transaction and returns the first line's id with the number of lines
// transitioned. A count of zero means the cart was empty; no write happened.
func (s *Store) MarkAllPendingPaid(ctx context.Context, userID bson.ObjectID) (bson.ObjectID, int, error) {
	type placed struct {
		first bson.ObjectID
		count int
	}

	result, err := s.withTransaction(ctx, func(ctx context.Context) (any, error) {
		orders, err := s.PendingByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if len(orders) == 0 {
			return placed{}, nil
		}

		res, err := s.collection(collOrders).UpdateMany(ctx,
			bson.D{
				{Key: "user_id", Value: userID},
				{Key: "status", Value: models.OrderStatusPending},
			},
			bson.D{{Key: "$set", Value: bson.D{{Key: "status", Value: models.OrderStatusPaid}}}})
		if err != nil {
			return nil, err
		}
		if res.ModifiedCount != int64(len(orders)) {
			return nil, fmt.Errorf("checkout transitioned %d of %d lines", res.ModifiedCount, len(orders))
		}
		return placed{first: orders[0].ID, count: len(orders)}, nil
	})
	if err != nil {
		return bson.ObjectID{}, 0, err
	}

	p := result.(placed)
	return p.first, p.count, nil
}

// InsertPaidOrders materializes a guest cart directly as paid order documents
// with no owning user, in one transaction. Used by pure-guest checkout.
func (s *Store) InsertPaidOrders(ctx context.Context, lines []models.PricedLine) (bson.ObjectID, error) {
	docs := make([]any, 0, len(lines))
	now := time.Now()
	for _, line := range lines {
		docs = append(docs, models.Order{
			ProductID:  line.ProductID,
			Quantity:   line.Quantity,
			TotalPrice: line.UnitPrice * float64(line.Quantity),
			Status:     models.OrderStatusPaid,
			CreatedAt:  now,
		})
	}

	result, err := s.withTransaction(ctx, func(ctx context.Context) (any, error) {
		res, err := s.collection(collOrders).InsertMany(ctx, docs)
		if err != nil {
			return nil, err
		}
		return res.InsertedIDs[0].(bson.ObjectID), nil
	})
	if err != nil {
		return bson.ObjectID{}, err
	}
	return result.(bson.ObjectID), nil
}

// PlaceDirectOrder is the legacy order endpoint: it decrements stock and
// inserts the order in one transaction. The guarded stock filter makes the
// decrement fail rather than go negative under concurrency.
func (s *Store) PlaceDirectOrder(ctx context.Context, userID, productID bson.ObjectID, quantity int, unitPrice float64) (*models.Order, error) {
	result, err := s.withTransaction(ctx, func(ctx context.Context) (any, error) {
		res, err := s.collection(collProducts).UpdateOne(ctx,
			bson.D{
				{Key: "_id", Value: productID},
				{Key: "stock", Value: bson.D{{Key: "$gte", Value: quantity}}},
			},
			bson.D{{Key: "$inc", Value: bson.D{{Key: "stock", Value: -quantity}}}})
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, ErrInsufficientStock
		}

		order := &models.Order{
			UserID:     &userID,
			ProductID:  productID,
			Quantity:   quantity,
			TotalPrice: unitPrice * float64(quantity),
			Status:     models.OrderStatusPending,
			CreatedAt:  time.Now(),
		}
		ins, err := s.collection(collOrders).InsertOne(ctx, order)
		if err != nil {
			return nil, err
		}
		order.ID = ins.InsertedID.(bson.ObjectID)
		return order, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.Order), nil
}

func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	cursor, err := s.collection(collOrders).Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}
