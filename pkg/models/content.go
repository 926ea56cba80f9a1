package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ContactMessage is a message submitted through the contact form.
type ContactMessage struct {
	ID        bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string        `json:"name" bson:"name" validate:"required"`
	Email     string        `json:"email" bson:"email" validate:"required,email"`
	Subject   string        `json:"subject" bson:"subject,omitempty"`
	Message   string        `json:"message" bson:"message" validate:"required"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required"`
}

// CollaborationRequest is a partnership inquiry; it starts pending and is
// triaged by an admin.
type CollaborationRequest struct {
	ID        bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Name      string        `json:"name" bson:"name" validate:"required"`
	Email     string        `json:"email" bson:"email" validate:"required,email"`
	Message   string        `json:"message" bson:"message" validate:"required"`
	Status    string        `json:"status" bson:"status"`
	CreatedAt time.Time     `json:"created_at" bson:"created_at"`
}

type CollaborateRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

type BlogPost struct {
	ID        bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Title     string        `json:"title" bson:"title" validate:"required"`
	Thumbnail string        `json:"thumbnail,omitempty" bson:"thumbnail,omitempty"`
	Content   string        `json:"content" bson:"content" validate:"required"`
	Date      time.Time     `json:"date" bson:"date"`
	IsRead    bool          `json:"isRead" bson:"is_read"`
}

type CreateBlogPostRequest struct {
	Title     string `json:"title" binding:"required"`
	Thumbnail string `json:"thumbnail"`
	Content   string `json:"content" binding:"required"`
	Date      string `json:"date"`
	IsRead    bool   `json:"isRead"`
}

type UpdateBlogPostRequest struct {
	Title     *string `json:"title"`
	Thumbnail *string `json:"thumbnail"`
	Content   *string `json:"content"`
	Date      *string `json:"date"`
	IsRead    *bool   `json:"isRead"`
}
