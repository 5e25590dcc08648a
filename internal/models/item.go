package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Item is a menu entry. Ingredients is populated at read time from
// IngredientIds and is never persisted.
type Item struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	CategoryID    int                `bson:"categoryId" json:"categoryId"`
	IngredientIds []int              `bson:"ingredientIds" json:"ingredientIds"`
	Ingredients   []Ingredient       `bson:"-" json:"ingredients,omitempty"`
	Price         float64            `bson:"price" json:"price"`
	PictureURL    string             `bson:"pictureUrl,omitempty" json:"pictureUrl,omitempty"`
}
