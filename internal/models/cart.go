package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CartStatusActive     = "Active"
	CartStatusCheckedOut = "CheckedOut"
)

// CartLine is one item reference in a cart. IngredientQuantities overrides
// the defaults per ingredient; keys are decimal ingredient ids because BSON
// maps only take string keys.
type CartLine struct {
	ItemID               primitive.ObjectID `bson:"itemId" json:"itemId"`
	Quantity             int                `bson:"quantity" json:"quantity"`
	IngredientQuantities map[string]int     `bson:"ingredientQuantities" json:"ingredientQuantities"`
}

// SameCustomization reports whether two lines carry the identical ingredient
// override map. Only identical lines are merged on add.
func (l CartLine) SameCustomization(other CartLine) bool {
	if len(l.IngredientQuantities) != len(other.IngredientQuantities) {
		return false
	}
	for key, qty := range l.IngredientQuantities {
		if otherQty, ok := other.IngredientQuantities[key]; !ok || otherQty != qty {
			return false
		}
	}
	return true
}

type Cart struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	Status       string             `bson:"status" json:"status"`
	Items        []CartLine         `bson:"items" json:"items"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	CheckedOutAt *time.Time         `bson:"checkedOutAt,omitempty" json:"checkedOutAt,omitempty"`
}
