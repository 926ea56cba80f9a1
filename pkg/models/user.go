package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// User represents a registered storefront account
type User struct {
	ID           bson.ObjectID `json:"id" bson:"_id,omitempty"`
	Email        string        `json:"email" bson:"email" validate:"required,email"`
	PasswordHash string        `json:"-" bson:"password_hash"`
	Name         string        `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Role         string        `json:"role" bson:"role"`
	Address      string        `json:"address,omitempty" bson:"address,omitempty"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UpdateProfileRequest carries partial profile updates; nil fields are left unchanged.
type UpdateProfileRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}
