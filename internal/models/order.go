package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderStatusPending    = "Pending"
	OrderStatusProcessing = "Processing"
	OrderStatusCompleted  = "Completed"
	OrderStatusCancelled  = "Cancelled"
)

// ParseOrderStatus resolves a status string case-insensitively to its
// canonical form.
func ParseOrderStatus(raw string) (string, bool) {
	for _, status := range []string{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusCompleted,
		OrderStatusCancelled,
	} {
		if strings.EqualFold(raw, status) {
			return status, true
		}
	}
	return "", false
}

// IngredientDetail freezes an ingredient's state into an order line.
type IngredientDetail struct {
	IngredientID int     `bson:"ingredientId" json:"ingredientId"`
	Name         string  `bson:"name" json:"name"`
	Quantity     int     `bson:"quantity" json:"quantity"`
	ExtraCost    float64 `bson:"extraCost" json:"extraCost"`
}

// OrderItem is an immutable snapshot of one cart line at checkout. Price is
// the computed per-unit price including ingredient extras.
type OrderItem struct {
	ItemID      primitive.ObjectID `bson:"itemId" json:"itemId"`
	ItemName    string             `bson:"itemName" json:"itemName"`
	Ingredients []IngredientDetail `bson:"ingredients" json:"ingredients"`
	Price       float64            `bson:"price" json:"price"`
	Quantity    int                `bson:"quantity" json:"quantity"`
}

type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"userId" json:"userId"`
	Items       []OrderItem        `bson:"items" json:"items"`
	TotalAmount float64            `bson:"totalAmount" json:"totalAmount"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   *time.Time         `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
