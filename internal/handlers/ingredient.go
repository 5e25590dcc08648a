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
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"brewtiful/internal/database"
	"brewtiful/internal/models"
)

type IngredientCreateRequest struct {
	Name            string  `json:"name" binding:"required"`
	DefaultQuantity int     `json:"defaultQuantity" binding:"required"`
	ExtraCost       float64 `json:"extraCost"`
}

type IngredientUpdateRequest struct {
	Name            string  `json:"name" binding:"required"`
	DefaultQuantity int     `json:"defaultQuantity" binding:"required"`
	ExtraCost       float64 `json:"extraCost"`
}

func validateIngredientFields(name string, defaultQuantity int, extraCost float64) (string, bool) {
	if !validName(name) {
		return "name must consist of only English or Lithuanian letters and spaces, max 20 characters", false
	}
	if defaultQuantity <= 0 {
		return "defaultQuantity must be a positive number", false
	}
	if extraCost < 0 {
		return "extraCost must be 0 or a positive number", false
	}
	return "", true
}

func GetIngredients(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
		cursor, err := db.Collection("ingredients").Find(ctx, bson.M{}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		ingredients := make([]models.Ingredient, 0)
		if err := cursor.All(ctx, &ingredients); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, ingredients)
	}
}

func GetIngredient(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var ingredient models.Ingredient
		if err := db.Collection("ingredients").FindOne(ctx, bson.M{"_id": id}).Decode(&ingredient); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Ingredient with id:%d not found.", id)})
			return
		}

		c.JSON(http.StatusOK, ingredient)
	}
}

func CreateIngredient(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req IngredientCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		name := strings.TrimSpace(req.Name)
		if msg, ok := validateIngredientFields(name, req.DefaultQuantity, req.ExtraCost); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		id, err := database.NextSequence(ctx, db, database.IngredientSequence)
		if err != nil {
			log.Println("[INGREDIENT] [ERROR] id allocation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		ingredient := models.Ingredient{
			ID:              id,
			Name:            name,
			DefaultQuantity: req.DefaultQuantity,
			ExtraCost:       req.ExtraCost,
			ItemIds:         []string{},
		}

		if _, err := db.Collection("ingredients").InsertOne(ctx, ingredient); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusCreated, ingredient)
	}
}

func UpdateIngredient(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req IngredientUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		name := strings.TrimSpace(req.Name)
		if msg, ok := validateIngredientFields(name, req.DefaultQuantity, req.ExtraCost); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		update := bson.M{"$set": bson.M{
			"name":            name,
			"defaultQuantity": req.DefaultQuantity,
			"extraCost":       req.ExtraCost,
		}}

		var updated models.Ingredient
		err = db.Collection("ingredients").
			FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
				options.FindOneAndUpdate().SetReturnDocument(options.After)).
			Decode(&updated)

		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Ingredient with id:%d not found.", id)})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

// DeleteIngredient removes the ingredient and pulls its id from every item
// that referenced it. Cart override maps keep their stale keys; pricing skips
// unknown ingredient ids.
func DeleteIngredient(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		result, err := db.Collection("ingredients").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if result.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Ingredient with id:%d not found.", id)})
			return
		}

		if _, err := db.Collection("items").UpdateMany(ctx,
			bson.M{"ingredientIds": id},
			bson.M{"$pull": bson.M{"ingredientIds": id}},
		); err != nil {
			log.Println("[INGREDIENT] [ERROR] cascade item cleanup failed:", err)
		}

		c.Status(http.StatusNoContent)
	}
}
