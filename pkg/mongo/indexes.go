package mongo

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type IndexConfig struct {
	CollectionName string
	IndexModel     mongo.IndexModel
}

var requiredIndexes = []IndexConfig{
	// Users
	{
		CollectionName: collUsers,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_user_email_unique"),
		},
	},

	// Categories
	{
		CollectionName: collCategories,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_category_slug_unique"),
		},
	},

	// Products
	{
		CollectionName: collProducts,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "category_id", Value: 1}},
			Options: options.Index().SetName("idx_product_category"),
		},
	},

	// Orders. The partial unique index backs the "at most one pending line per
	// (user, product)" invariant; concurrent increment-or-create races surface
	// as duplicate key errors instead of a second row.
	{
		CollectionName: collOrders,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "product_id", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName("idx_pending_line_unique").
				SetPartialFilterExpression(bson.D{{Key: "status", Value: "pending"}}),
		},
	},
	{
		CollectionName: collOrders,
		IndexModel: mongo.IndexModel{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "status", Value: 1},
			},
			Options: options.Index().SetName("idx_user_status"),
		},
	},

	// Merged guest sessions. The unique index serializes concurrent merges of
	// the same session; the TTL index expires markers together with the 30-day
	// session lifetime they guard.
	{
		CollectionName: collMergedSessions,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_merged_session_unique"),
		},
	},
	{
		CollectionName: collMergedSessions,
		IndexModel: mongo.IndexModel{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(30 * 24 * 3600).SetName("idx_merged_session_ttl"),
		},
	},
}

// EnsureIndexes creates the required indexes at startup; creation is
// idempotent on restart.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	for _, idxConfig := range requiredIndexes {
		collection := s.collection(idxConfig.CollectionName)

		indexName, err := collection.Indexes().CreateOne(ctx, idxConfig.IndexModel)
		if err != nil {
			log.Printf("Error creating index on collection %s: %v", idxConfig.CollectionName, err)
			return err
		}
		log.Printf("Created index '%s' on collection '%s'", indexName, idxConfig.CollectionName)
	}
	return nil
}
