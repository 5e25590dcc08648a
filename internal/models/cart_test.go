package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSameCustomizationIdenticalMaps(t *testing.T) {
	itemID := primitive.NewObjectID()
	a := CartLine{ItemID: itemID, Quantity: 1, IngredientQuantities: map[string]int{"1": 3, "2": 1}}
	b := CartLine{ItemID: itemID, Quantity: 4, IngredientQuantities: map[string]int{"2": 1, "1": 3}}

	assert.True(t, a.SameCustomization(b))
}

func TestSameCustomizationDifferentQuantities(t *testing.T) {
	a := CartLine{IngredientQuantities: map[string]int{"1": 3}}
	b := CartLine{IngredientQuantities: map[string]int{"1": 2}}

	assert.False(t, a.SameCustomization(b))
}

func TestSameCustomizationDifferentKeys(t *testing.T) {
	a := CartLine{IngredientQuantities: map[string]int{"1": 3}}
	b := CartLine{IngredientQuantities: map[string]int{"2": 3}}
	c := CartLine{IngredientQuantities: map[string]int{"1": 3, "2": 1}}

	assert.False(t, a.SameCustomization(b))
	assert.False(t, a.SameCustomization(c))
	assert.False(t, c.SameCustomization(a))
}

func TestSameCustomizationEmptyMaps(t *testing.T) {
	a := CartLine{IngredientQuantities: map[string]int{}}
	b := CartLine{IngredientQuantities: nil}

	assert.True(t, a.SameCustomization(b))
}
