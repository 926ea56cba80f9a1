package models

import (
	"go.mongodb.org/mongo-driver/v2/bson"
)

// GuestCartLine is one product line inside an anonymous session cart. Guest
// lines carry no price snapshot; totals are derived from the catalog at read
// time.
type GuestCartLine struct {
	SessionID string        `json:"session_id"`
	ProductID bson.ObjectID `json:"product_id"`
	Quantity  int           `json:"quantity"`
}

// CartLineView is the unified wire shape for both guest and user cart lines.
// For user lines ID is the order document id and Status is set; for guest
// lines ID is the product id (the line key within the session) and Status is
// empty.
type CartLineView struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Total     float64 `json:"total"`
	Image     string  `json:"image,omitempty"`
	Status    string  `json:"status,omitempty"`
}

// PricedLine is a cart line paired with the catalog unit price in effect at
// the moment of the operation. Merge and guest checkout consume these.
type PricedLine struct {
	ProductID bson.ObjectID
	Quantity  int
	UnitPrice float64
}

type AddToCartRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

// UpdateCartItemRequest leaves quantity validation to the cart service: the
// line lookup runs first, so an unknown item answers not-found even when the
// quantity is also invalid.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// CheckoutRequest accepts shipping and payment details; persisting them is an
// external concern, the checkout core only consumes the resolved cart.
type CheckoutRequest struct {
	Shipping      map[string]any `json:"shipping"`
	PaymentMethod string         `json:"payment_method"`
}
