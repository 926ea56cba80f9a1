package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Product represents a catalog product
type Product struct {
	ID          bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string        `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Description string        `json:"description" bson:"description,omitempty"`
	Price       float64       `json:"price" bson:"price" validate:"required,gt=0"`
	Stock       int           `json:"stock" bson:"stock" validate:"gte=0"`
	ImageURLs   []string      `json:"image_urls" bson:"image_urls,omitempty"`
	CategoryID  bson.ObjectID `json:"category_id" bson:"category_id"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" bson:"updated_at"`
}

// HasStock reports whether the advisory stock level covers the requested quantity.
// The check is read-then-decide; concurrent adds may both pass against the same count.
func (p *Product) HasStock(quantity int) bool {
	return p.Stock >= quantity
}

// PrimaryImage returns the first image URL, or "" when the product has none.
func (p *Product) PrimaryImage() string {
	if len(p.ImageURLs) == 0 {
		return ""
	}
	return p.ImageURLs[0]
}

func (p *Product) SetTimestamps() {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
}

type CreateProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Price       float64  `json:"price" binding:"required,gt=0"`
	Stock       int      `json:"stock" binding:"gte=0"`
	ImageURLs   []string `json:"image_urls"`
	CategoryID  string   `json:"category_id" binding:"required"`
}

type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	ImageURLs   []string `json:"image_urls"`
	CategoryID  *string  `json:"category_id"`
}

// Category groups products and carries a URL-friendly slug
type Category struct {
	ID          bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string        `json:"name" bson:"name" validate:"required,min=2,max=50"`
	Slug        string        `json:"slug" bson:"slug" validate:"required"`
	Description string        `json:"description" bson:"description,omitempty"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

// Slugify derives a URL-friendly slug from a category name.
func Slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Join(strings.Fields(slug), "-")
	return slug
}
