package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Order line statuses. A pending order is an active cart line; paid is terminal
// for the checkout flow, cancelled is set by a separate admin path.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// Order is one product line belonging to a user's cart or order history.
// While Status is pending the row is a live cart line; TotalPrice is a snapshot
// of unit price times quantity taken at the last quantity change, never patched
// independently of quantity.
type Order struct {
	ID         bson.ObjectID  `json:"id" bson:"_id,omitempty"`
	UserID     *bson.ObjectID `json:"user_id,omitempty" bson:"user_id,omitempty"`
	ProductID  bson.ObjectID  `json:"product_id" bson:"product_id"`
	Quantity   int            `json:"quantity" bson:"quantity" validate:"gte=1"`
	TotalPrice float64        `json:"total" bson:"total_price"`
	Status     string         `json:"status" bson:"status"`
	CreatedAt  time.Time      `json:"created_at" bson:"created_at"`
}

func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// CreateOrderRequest is the legacy direct-order payload; it bypasses the cart
// and decrements stock on placement.
type CreateOrderRequest struct {
	UserID    string `json:"user_id" binding:"required"`
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gte=1"`
}
