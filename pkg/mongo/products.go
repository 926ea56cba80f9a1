package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/nerakcos/storefront-api/pkg/models"
)

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	product.SetTimestamps()
	res, err := s.collection(collProducts).InsertOne(ctx, product)
	if err != nil {
		return err
	}
	product.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	cursor, err := s.collection(collProducts).Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ProductByID returns mongo.ErrNoDocuments when the product does not exist.
func (s *Store) ProductByID(ctx context.Context, id bson.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.collection(collProducts).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Store) UpdateProduct(ctx context.Context, id bson.ObjectID, updates bson.D) (*models.Product, error) {
	updates = append(updates, bson.E{Key: "updated_at", Value: time.Now()})
	var product models.Product
	err := s.collection(collProducts).FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: updates}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id bson.ObjectID) error {
	res, err := s.collection(collProducts).DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return errNoDocuments()
	}
	return nil
}

func (s *Store) CreateCategory(ctx context.Context, category *models.Category) error {
	res, err := s.collection(collCategories).InsertOne(ctx, category)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateSlug
		}
		return err
	}
	category.ID = res.InsertedID.(bson.ObjectID)
	return nil
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	cursor, err := s.collection(collCategories).Find(ctx, bson.D{},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var categories []models.Category
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Store) CategoryByID(ctx context.Context, id bson.ObjectID) (*models.Category, error) {
	var category models.Category
	err := s.collection(collCategories).FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&category)
	if err != nil {
		return nil, err
	}
	return &category, nil
}
