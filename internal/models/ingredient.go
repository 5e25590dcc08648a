package models

// Ingredient carries the pricing inputs for drink customization. ItemIds is
// the back-reference list of items currently using the ingredient.
type Ingredient struct {
	ID              int      `bson:"_id" json:"id"`
	Name            string   `bson:"name" json:"name"`
	DefaultQuantity int      `bson:"defaultQuantity" json:"defaultQuantity"`
	ExtraCost       float64  `bson:"extraCost" json:"extraCost"`
	ItemIds         []string `bson:"itemIds" json:"itemIds"`
}
