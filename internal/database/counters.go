package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CategorySequence   = "categoryId"
	IngredientSequence = "ingredientId"
)

type counter struct {
	ID            string `bson:"_id"`
	SequenceValue int    `bson:"sequenceValue"`
}

// NextSequence allocates the next integer id for the named sequence. The
// upserted $inc keeps allocation atomic across concurrent requests.
func NextSequence(ctx context.Context, db *mongo.Database, name string) (int, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc counter
	err := db.Collection("counters").FindOneAndUpdate(
		ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"sequenceValue": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, err
	}

	return doc.SequenceValue, nil
}
