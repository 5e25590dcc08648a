package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"brewtiful/internal/models"
)

func TestActiveCartItemsPullTargetsOnlyActiveCarts(t *testing.T) {
	ids := []primitive.ObjectID{primitive.NewObjectID(), primitive.NewObjectID()}

	filter, update := activeCartItemsPull(ids)

	assert.Equal(t, bson.M{"status": models.CartStatusActive}, filter)

	pull, ok := update["$pull"].(bson.M)
	require.True(t, ok, "expected a $pull update, got %v", update)
	items, ok := pull["items"].(bson.M)
	require.True(t, ok)
	itemID, ok := items["itemId"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, bson.M{"$in": ids}, itemID)
}

func TestIngredientBackRefsPullUsesHexItemIDs(t *testing.T) {
	first := primitive.NewObjectID()
	second := primitive.NewObjectID()

	filter, update := ingredientBackRefsPull([]primitive.ObjectID{first, second})

	wantIn := bson.M{"$in": []string{first.Hex(), second.Hex()}}
	assert.Equal(t, bson.M{"itemIds": wantIn}, filter)

	pull, ok := update["$pull"].(bson.M)
	require.True(t, ok, "expected a $pull update, got %v", update)
	assert.Equal(t, wantIn, pull["itemIds"])
}

func TestCascadeBuildersShareTheItemSet(t *testing.T) {
	// Category deletion feeds one id slice into both builders; the cart pull
	// must cover exactly the items whose back-references are dropped.
	ids := []primitive.ObjectID{primitive.NewObjectID()}

	_, cartUpdate := activeCartItemsPull(ids)
	ingredientFilter, _ := ingredientBackRefsPull(ids)

	cartIn := cartUpdate["$pull"].(bson.M)["items"].(bson.M)["itemId"].(bson.M)["$in"].([]primitive.ObjectID)
	ingredientIn := ingredientFilter["itemIds"].(bson.M)["$in"].([]string)

	require.Len(t, cartIn, len(ingredientIn))
	for i, id := range cartIn {
		assert.Equal(t, id.Hex(), ingredientIn[i])
	}
}
