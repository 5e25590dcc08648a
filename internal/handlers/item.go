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

	"brewtiful/internal/models"
)

type ItemCreateRequest struct {
	Name          string  `json:"name" binding:"required"`
	CategoryID    int     `json:"categoryId" binding:"required"`
	IngredientIds []int   `json:"ingredientIds"`
	Price         float64 `json:"price" binding:"required"`
	PictureURL    string  `json:"pictureUrl"`
}

type ItemUpdateRequest struct {
	Name          string  `json:"name" binding:"required"`
	CategoryID    int     `json:"categoryId" binding:"required"`
	IngredientIds []int   `json:"ingredientIds"`
	Price         float64 `json:"price" binding:"required"`
	PictureURL    string  `json:"pictureUrl"`
}

func GetItems(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("items").Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		items := make([]models.Item, 0)
		if err := cursor.All(ctx, &items); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		if err := loadItemIngredients(ctx, db, items); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, items)
	}
}

func GetItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var item models.Item
		if err := db.Collection("items").FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Item with id:%s not found.", id.Hex())})
			return
		}

		items := []models.Item{item}
		if err := loadItemIngredients(ctx, db, items); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, items[0])
	}
}

func GetItemsByCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryID, err := strconv.Atoi(c.Param("categoryId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var category models.Category
		if err := db.Collection("categories").FindOne(ctx, bson.M{"_id": categoryID}).Decode(&category); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Category with id:%d not found.", categoryID)})
			return
		}

		cursor, err := db.Collection("items").Find(ctx, bson.M{"categoryId": categoryID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		items := make([]models.Item, 0)
		if err := cursor.All(ctx, &items); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		if err := loadItemIngredients(ctx, db, items); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, items)
	}
}

func CreateItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ItemCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		item := models.Item{
			ID:            primitive.NewObjectID(),
			Name:          strings.TrimSpace(req.Name),
			CategoryID:    req.CategoryID,
			IngredientIds: req.IngredientIds,
			Price:         req.Price,
			PictureURL:    strings.TrimSpace(req.PictureURL),
		}
		if item.IngredientIds == nil {
			item.IngredientIds = []int{}
		}

		if msg, ok := validateItemFields(ctx, db, item); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}

		if _, err := db.Collection("items").InsertOne(ctx, item); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		if err := addItemToIngredients(ctx, db, item.IngredientIds, item.ID); err != nil {
			log.Println("[ITEM] [ERROR] ingredient back-reference update failed:", err)
		}

		c.JSON(http.StatusCreated, item)
	}
}

func UpdateItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req ItemUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var existing models.Item
		if err := db.Collection("items").FindOne(ctx, bson.M{"_id": id}).Decode(&existing); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Item with id:%s not found.", id.Hex())})
			return
		}

		updated := models.Item{
			ID:            id,
			Name:          strings.TrimSpace(req.Name),
			CategoryID:    req.CategoryID,
			IngredientIds: req.IngredientIds,
			Price:         req.Price,
			PictureURL:    strings.TrimSpace(req.PictureURL),
		}
		if updated.IngredientIds == nil {
			updated.IngredientIds = []int{}
		}

		if msg, ok := validateItemFields(ctx, db, updated); !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": msg})
			return
		}

		if _, err := db.Collection("items").ReplaceOne(ctx, bson.M{"_id": id}, updated); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		// Reconcile ingredient back-references with the new ingredient set.
		if err := removeItemsFromIngredients(ctx, db, []primitive.ObjectID{id}); err != nil {
			log.Println("[ITEM] [ERROR] ingredient back-reference cleanup failed:", err)
		}
		if err := addItemToIngredients(ctx, db, updated.IngredientIds, id); err != nil {
			log.Println("[ITEM] [ERROR] ingredient back-reference update failed:", err)
		}

		c.Status(http.StatusNoContent)
	}
}

// DeleteItem removes the item, pulls it from active carts and drops its
// ingredient back-references.
func DeleteItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		result, err := db.Collection("items").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if result.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Item with id:%s not found.", id.Hex())})
			return
		}

		if err := removeItemsFromCarts(ctx, db, []primitive.ObjectID{id}); err != nil {
			log.Println("[ITEM] [ERROR] cascade cart cleanup failed:", err)
		}
		if err := removeItemsFromIngredients(ctx, db, []primitive.ObjectID{id}); err != nil {
			log.Println("[ITEM] [ERROR] cascade ingredient cleanup failed:", err)
		}

		c.Status(http.StatusNoContent)
	}
}

func validateItemFields(ctx context.Context, db *mongo.Database, item models.Item) (string, bool) {
	if item.Price <= 0 {
		return "price must be a positive number", false
	}
	if !validName(item.Name) {
		return "item name can only contain English and Lithuanian letters", false
	}

	count, err := db.Collection("categories").CountDocuments(ctx, bson.M{"_id": item.CategoryID})
	if err != nil || count == 0 {
		return "the specified category does not exist", false
	}

	for _, ingredientID := range item.IngredientIds {
		n, err := db.Collection("ingredients").CountDocuments(ctx, bson.M{"_id": ingredientID})
		if err != nil || n == 0 {
			return fmt.Sprintf("ingredient with id %d does not exist", ingredientID), false
		}
	}

	return "", true
}

// addItemToIngredients records the item on each ingredient's ItemIds list.
func addItemToIngredients(ctx context.Context, db *mongo.Database, ingredientIDs []int, itemID primitive.ObjectID) error {
	if len(ingredientIDs) == 0 {
		return nil
	}
	_, err := db.Collection("ingredients").UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ingredientIDs}},
		bson.M{"$addToSet": bson.M{"itemIds": itemID.Hex()}},
	)
	return err
}

// fetchIngredients loads the given ingredient ids into an id-keyed map.
func fetchIngredients(ctx context.Context, db *mongo.Database, ids []int) (map[int]models.Ingredient, error) {
	byID := make(map[int]models.Ingredient, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}

	cursor, err := db.Collection("ingredients").Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var ingredients []models.Ingredient
	if err := cursor.All(ctx, &ingredients); err != nil {
		return nil, err
	}
	for _, ingredient := range ingredients {
		byID[ingredient.ID] = ingredient
	}
	return byID, nil
}

// loadItemIngredients resolves every item's ingredient snapshot in one query.
func loadItemIngredients(ctx context.Context, db *mongo.Database, items []models.Item) error {
	idSet := make(map[int]struct{})
	for _, item := range items {
		for _, id := range item.IngredientIds {
			idSet[id] = struct{}{}
		}
	}
	ids := make([]int, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	byID, err := fetchIngredients(ctx, db, ids)
	if err != nil {
		return err
	}

	for i := range items {
		resolved := make([]models.Ingredient, 0, len(items[i].IngredientIds))
		for _, id := range items[i].IngredientIds {
			if ingredient, ok := byID[id]; ok {
				resolved = append(resolved, ingredient)
			}
		}
		items[i].Ingredients = resolved
	}
	return nil
}
