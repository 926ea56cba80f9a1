package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/nerakcos/storefront-api/pkg/models"
)

func (s *Store) CreateContactMessage(ctx context.Context, msg *models.ContactMessage) error {
	msg.CreatedAt = time.Now()
	res, err := s.collection(collContact).InsertOne(ctx, msg)
	if err != nil {
		return err
	}
	msg.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

func (s *Store) CreateCollaborationRequest(ctx context.Context, req *models.CollaborationRequest) error {
	if req.Status == "" {
		req.Status = "pending"
	}
	req.CreatedAt = time.Now()
	res, err := s.collection(collCollaborations).InsertOne(ctx, req)
	if err != nil {
		return err
	}
	req.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

func (s *Store) ListBlogPosts(ctx context.Context) ([]models.BlogPost, error) {
	cursor, err := s.collection(collBlogPosts).Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var posts []models.BlogPost
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (s *Store) CreateBlogPost(ctx context.Context, post *models.BlogPost) error {
	if post.Date.IsZero() {
		post.Date = time.Now()
	}
	res, err := s.collection(collBlogPosts).InsertOne(ctx, post)
	if err != nil {
		return err
	}
	post.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

func (s *Store) UpdateBlogPost(ctx context.Context, id bson.ObjectID, updates bson.D) (*models.BlogPost, error) {
	var post models.BlogPost
	err := s.collection(collBlogPosts).FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: updates}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&post)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *Store) DeleteBlogPost(ctx context.Context, id bson.ObjectID) error {
	res, err := s.collection(collBlogPosts).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errNoDocuments()
	}
	return nil
}
