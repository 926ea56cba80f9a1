package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/nerakcos/storefront-api/pkg/models"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleCustomer
	}
	user.CreatedAt = time.Now()

	res, err := s.collection(collUsers).InsertOne(ctx, user)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	user.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

// UserByEmail returns mongo.ErrNoDocuments when no account matches.
func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.collection(collUsers).FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) UserByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	var user models.User
	err := s.collection(collUsers).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile applies the non-nil fields of req to the user's profile.
func (s *Store) UpdateProfile(ctx context.Context, id bson.ObjectID, req *models.UpdateProfileRequest) error {
	updates := bson.D{}
	if req.Name != nil {
		updates = append(updates, bson.E{Key: "name", Value: *req.Name})
	}
	if req.Address != nil {
		updates = append(updates, bson.E{Key: "address", Value: *req.Address})
	}
	if len(updates) == 0 {
		return nil
	}

	res, err := s.collection(collUsers).UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: updates}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errNoDocuments()
	}
	return nil
}
