package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureUserIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("users").Indexes()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	tokenHashIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "refreshTokens.tokenHash", Value: 1}},
		Options: options.Index().SetName("refreshTokenHash_index"),
	}

	log.Println("EnsureUserIndexes: creating email_unique index")
	if _, err := indexes.CreateOne(ctx, emailIndex); err != nil {
		log.Println("EnsureUserIndexes: email index error:", err)
		return err
	}

	log.Println("EnsureUserIndexes: creating refreshTokenHash_index")
	if _, err := indexes.CreateOne(ctx, tokenHashIndex); err != nil {
		log.Println("EnsureUserIndexes: refresh token index error:", err)
		return err
	}
	return nil
}

func EnsureCartIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("carts").Indexes()

	// One Active cart per user. The partial filter keeps checked-out history
	// out of the uniqueness constraint.
	userActiveIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().
			SetName("userId_active_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"status": "Active"}),
	}

	log.Println("EnsureCartIndexes: creating userId_active_unique index")
	if _, err := indexes.CreateOne(ctx, userActiveIndex); err != nil {
		log.Println("EnsureCartIndexes: cart index error:", err)
		return err
	}
	return nil
}

func EnsureOrderIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("orders").Indexes()

	userIDIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("userId_createdAt_index"),
	}

	statusIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "status", Value: 1}},
		Options: options.Index().SetName("status_index"),
	}

	log.Println("EnsureOrderIndexes: creating userId_createdAt_index")
	if _, err := indexes.CreateOne(ctx, userIDIndex); err != nil {
		log.Println("EnsureOrderIndexes: userId index error:", err)
		return err
	}

	log.Println("EnsureOrderIndexes: creating status_index")
	if _, err := indexes.CreateOne(ctx, statusIndex); err != nil {
		log.Println("EnsureOrderIndexes: status index error:", err)
		return err
	}
	return nil
}

func EnsureItemIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	indexes := db.Collection("items").Indexes()

	categoryIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "categoryId", Value: 1}},
		Options: options.Index().SetName("categoryId_index"),
	}

	log.Println("EnsureItemIndexes: creating categoryId_index")
	if _, err := indexes.CreateOne(ctx, categoryIndex); err != nil {
		log.Println("EnsureItemIndexes: categoryId index error:", err)
		return err
	}
	return nil
}
