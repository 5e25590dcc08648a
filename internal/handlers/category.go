package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"brewtiful/internal/database"
	"brewtiful/internal/models"
)

type CategoryCreateRequest struct {
	Name string `json:"name" binding:"required"`
}

type CategoryUpdateRequest struct {
	Name string `json:"name" binding:"required"`
}

func GetCategories(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
		cursor, err := db.Collection("categories").Find(ctx, bson.M{}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		categories := make([]models.Category, 0)
		if err := cursor.All(ctx, &categories); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, categories)
	}
}

func GetCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var category models.Category
		if err := db.Collection("categories").FindOne(ctx, bson.M{"_id": id}).Decode(&category); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Category with id:%d not found.", id)})
			return
		}

		c.JSON(http.StatusOK, category)
	}
}

func CreateCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CategoryCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		name := strings.TrimSpace(req.Name)
		if !validName(name) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name must consist of only English or Lithuanian letters and spaces, max 20 characters"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("categories").CountDocuments(ctx, bson.M{"name": name})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "category already exists"})
			return
		}

		id, err := database.NextSequence(ctx, db, database.CategorySequence)
		if err != nil {
			log.Println("[CATEGORY] [ERROR] id allocation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		category := models.Category{ID: id, Name: name}
		if _, err := db.Collection("categories").InsertOne(ctx, category); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusCreated, category)
	}
}

func UpdateCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req CategoryUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		name := strings.TrimSpace(req.Name)
		if !validName(name) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name must consist of only English or Lithuanian letters and spaces, max 20 characters"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var updated models.Category
		err = db.Collection("categories").
			FindOneAndUpdate(
				ctx,
				bson.M{"_id": id},
				bson.M{"$set": bson.M{"name": name}},
				options.FindOneAndUpdate().SetReturnDocument(options.After),
			).
			Decode(&updated)

		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Category with id:%d not found.", id)})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

// DeleteCategory removes the category, its items, and every reference those
// items hold in active carts and ingredient back-references.
func DeleteCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		result, err := db.Collection("categories").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if result.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Category with id:%d not found.", id)})
			return
		}

		cursor, err := db.Collection("items").Find(ctx, bson.M{"categoryId": id})
		if err != nil {
			log.Println("[CATEGORY] [ERROR] cascade item lookup failed:", err)
			c.Status(http.StatusNoContent)
			return
		}
		var items []models.Item
		if err := cursor.All(ctx, &items); err != nil {
			log.Println("[CATEGORY] [ERROR] cascade item decode failed:", err)
			c.Status(http.StatusNoContent)
			return
		}

		if len(items) > 0 {
			ids := make([]primitive.ObjectID, 0, len(items))
			for _, item := range items {
				ids = append(ids, item.ID)
			}
			log.Printf("[CATEGORY] [INFO] deleting %d items for category %d", len(ids), id)

			if _, err := db.Collection("items").DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
				log.Println("[CATEGORY] [ERROR] cascade item delete failed:", err)
			}
			if err := removeItemsFromCarts(ctx, db, ids); err != nil {
				log.Println("[CATEGORY] [ERROR] cascade cart cleanup failed:", err)
			}
			if err := removeItemsFromIngredients(ctx, db, ids); err != nil {
				log.Println("[CATEGORY] [ERROR] cascade ingredient cleanup failed:", err)
			}
		}

		c.Status(http.StatusNoContent)
	}
}

// activeCartItemsPull builds the filter/update pair that removes the given
// item ids from every Active cart. Checked-out carts are history and are
// left untouched.
func activeCartItemsPull(itemIDs []primitive.ObjectID) (bson.M, bson.M) {
	filter := bson.M{"status": models.CartStatusActive}
	update := bson.M{"$pull": bson.M{"items": bson.M{"itemId": bson.M{"$in": itemIDs}}}}
	return filter, update
}

// ingredientBackRefsPull builds the filter/update pair that drops the given
// items from ingredient ItemIds back-reference lists.
func ingredientBackRefsPull(itemIDs []primitive.ObjectID) (bson.M, bson.M) {
	hexIDs := make([]string, 0, len(itemIDs))
	for _, id := range itemIDs {
		hexIDs = append(hexIDs, id.Hex())
	}
	filter := bson.M{"itemIds": bson.M{"$in": hexIDs}}
	update := bson.M{"$pull": bson.M{"itemIds": bson.M{"$in": hexIDs}}}
	return filter, update
}

// removeItemsFromCarts pulls the given item ids out of every Active cart.
func removeItemsFromCarts(ctx context.Context, db *mongo.Database, itemIDs []primitive.ObjectID) error {
	filter, update := activeCartItemsPull(itemIDs)
	_, err := db.Collection("carts").UpdateMany(ctx, filter, update)
	return err
}

// removeItemsFromIngredients drops item back-references after item deletion.
func removeItemsFromIngredients(ctx context.Context, db *mongo.Database, itemIDs []primitive.ObjectID) error {
	filter, update := ingredientBackRefsPull(itemIDs)
	_, err := db.Collection("ingredients").UpdateMany(ctx, filter, update)
	return err
}
