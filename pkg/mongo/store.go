package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names.
const (
	collUsers          = "users"
	collProducts       = "products"
	collCategories     = "categories"
	collOrders         = "orders"
	collContact        = "contact_messages"
	collCollaborations = "collaboration_requests"
	collBlogPosts      = "blog_posts"
	collMergedSessions = "merged_sessions"
)

var (
	ErrDuplicateEmail = errors.New("email already registered")
	ErrDuplicateSlug  = errors.New("category already exists")
)

// Store owns the Mongo client for the process. It is built once in main and
// handed to the components that need it; nothing reads connection state from
// package globals.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	clientOptions := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(clientOptions)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return &Store{client: client, db: client.Database(dbName)}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// withTransaction runs fn inside a single multi-document transaction. Any
// error aborts the transaction so the store never reflects partial writes.
func (s *Store) withTransaction(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	session, err := s.client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	return session.WithTransaction(ctx, fn)
}

func isDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}

// errNoDocuments lets sibling files report a missing document without each
// importing the driver package.
func errNoDocuments() error {
	return mongo.ErrNoDocuments
}
