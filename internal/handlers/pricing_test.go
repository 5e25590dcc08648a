package handlers

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"brewtiful/internal/models"
)

func milkItem(price float64) (models.Item, map[int]models.Ingredient) {
	item := models.Item{
		ID:            primitive.NewObjectID(),
		Name:          "Latte",
		Price:         price,
		IngredientIds: []int{1},
	}
	ingredients := map[int]models.Ingredient{
		1: {ID: 1, Name: "Milk", DefaultQuantity: 1, ExtraCost: 0.5},
	}
	return item, ingredients
}

func TestUnitPriceWorkedExample(t *testing.T) {
	// $3.00 base, Milk default 1 at $0.50 extra, requested 3 -> $4.00.
	item, ingredients := milkItem(3.00)
	usages := resolveUsages(item, ingredients, map[string]int{"1": 3})
	if got := unitPrice(item.Price, usages); got != 4.00 {
		t.Fatalf("expected unit price 4.00, got %v", got)
	}
}

func TestUnitPriceBelowDefaultNeverDiscounts(t *testing.T) {
	item, ingredients := milkItem(3.00)
	usages := resolveUsages(item, ingredients, map[string]int{"1": 0})
	if got := unitPrice(item.Price, usages); got != 3.00 {
		t.Fatalf("expected base price 3.00 with no discount, got %v", got)
	}
}

func TestUnitPriceMissingOverrideUsesDefault(t *testing.T) {
	item, ingredients := milkItem(3.00)
	usages := resolveUsages(item, ingredients, map[string]int{})
	if len(usages) != 1 || usages[0].Quantity != 1 {
		t.Fatalf("expected default quantity 1, got %+v", usages)
	}
	if got := unitPrice(item.Price, usages); got != 3.00 {
		t.Fatalf("expected base price 3.00, got %v", got)
	}
}

func TestResolveUsagesSkipsUnknownIngredients(t *testing.T) {
	item, ingredients := milkItem(3.00)
	item.IngredientIds = append(item.IngredientIds, 99)

	usages := resolveUsages(item, ingredients, map[string]int{"99": 5})
	if len(usages) != 1 {
		t.Fatalf("expected unknown ingredient to be skipped, got %d usages", len(usages))
	}
	if got := unitPrice(item.Price, usages); got != 3.00 {
		t.Fatalf("expected unknown ingredient to add no cost, got %v", got)
	}
}

func TestResolveUsagesClampsNegativeOverrides(t *testing.T) {
	item, ingredients := milkItem(3.00)
	usages := resolveUsages(item, ingredients, map[string]int{"1": -4})
	if usages[0].Quantity != 0 {
		t.Fatalf("expected negative override clamped to 0, got %d", usages[0].Quantity)
	}
}

func TestLineTotalNeverBelowBaseTimesQuantity(t *testing.T) {
	item, ingredients := milkItem(2.50)
	overrides := []map[string]int{
		nil,
		{},
		{"1": 0},
		{"1": 1},
		{"1": 7},
		{"1": -3},
	}
	for _, override := range overrides {
		usages := resolveUsages(item, ingredients, override)
		unit := unitPrice(item.Price, usages)
		for quantity := 1; quantity <= 3; quantity++ {
			total := lineTotal(unit, quantity)
			floor := item.Price * float64(quantity)
			if total < floor {
				t.Fatalf("line total %v below floor %v for override %v qty %d", total, floor, override, quantity)
			}
		}
	}
}

func TestExtraQuantity(t *testing.T) {
	tests := []struct {
		requested, defaultQty, want int
	}{
		{3, 1, 2},
		{1, 1, 0},
		{0, 1, 0},
		{5, 0, 5},
	}
	for _, tt := range tests {
		if got := extraQuantity(tt.requested, tt.defaultQty); got != tt.want {
			t.Fatalf("extraQuantity(%d,%d) = %d, want %d", tt.requested, tt.defaultQty, got, tt.want)
		}
	}
}
