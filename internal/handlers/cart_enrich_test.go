package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"brewtiful/internal/models"
)

func TestSplitStaleLinesSeparatesDeletedItems(t *testing.T) {
	kept := primitive.NewObjectID()
	deleted := primitive.NewObjectID()

	lines := []models.CartLine{
		{ItemID: kept, Quantity: 2},
		{ItemID: deleted, Quantity: 1},
	}
	itemsByID := map[primitive.ObjectID]models.Item{
		kept: {ID: kept, Name: "Latte"},
	}

	live, stale := splitStaleLines(lines, itemsByID)

	require.Len(t, live, 1)
	assert.Equal(t, kept, live[0].ItemID)
	assert.Equal(t, 2, live[0].Quantity)

	require.Len(t, stale, 1)
	assert.Equal(t, deleted, stale[0])
}

func TestSplitStaleLinesKeepsEverythingWhenItemsExist(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()

	lines := []models.CartLine{
		{ItemID: first, Quantity: 1},
		{ItemID: second, Quantity: 3},
	}
	itemsByID := map[primitive.ObjectID]models.Item{
		first:  {ID: first},
		second: {ID: second},
	}

	live, stale := splitStaleLines(lines, itemsByID)
	assert.Len(t, live, 2)
	assert.Empty(t, stale)
}

func TestSplitStaleLinesEmptyCart(t *testing.T) {
	live, stale := splitStaleLines(nil, nil)
	assert.Empty(t, live)
	assert.Empty(t, stale)
}
