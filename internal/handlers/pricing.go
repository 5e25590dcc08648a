package handlers

import (
	"strconv"

	"brewtiful/internal/models"
)

// ingredientUsage pairs an item's ingredient with the quantity a cart line
// requested for it (the default when the line has no override).
type ingredientUsage struct {
	Ingredient models.Ingredient
	Quantity   int
}

func extraQuantity(requested, defaultQuantity int) int {
	if requested > defaultQuantity {
		return requested - defaultQuantity
	}
	return 0
}

// resolveUsages walks an item's ingredient ids against the loaded ingredient
// set and the line's override map. Unknown ingredient ids are skipped.
// Negative overrides are clamped to zero.
func resolveUsages(item models.Item, ingredients map[int]models.Ingredient, overrides map[string]int) []ingredientUsage {
	usages := make([]ingredientUsage, 0, len(item.IngredientIds))
	for _, id := range item.IngredientIds {
		ingredient, ok := ingredients[id]
		if !ok {
			continue
		}

		quantity := ingredient.DefaultQuantity
		if requested, ok := overrides[strconv.Itoa(id)]; ok {
			if requested < 0 {
				requested = 0
			}
			quantity = requested
		}

		usages = append(usages, ingredientUsage{Ingredient: ingredient, Quantity: quantity})
	}
	return usages
}

// unitPrice is the item's base price plus the cost of every extra unit above
// an ingredient's default quantity. A quantity below default never discounts.
func unitPrice(basePrice float64, usages []ingredientUsage) float64 {
	price := basePrice
	for _, usage := range usages {
		extra := extraQuantity(usage.Quantity, usage.Ingredient.DefaultQuantity)
		price += float64(extra) * usage.Ingredient.ExtraCost
	}
	return price
}

func lineTotal(unit float64, quantity int) float64 {
	return unit * float64(quantity)
}
