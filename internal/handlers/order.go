package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"brewtiful/internal/models"
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type itemNotFoundError struct {
	ItemID primitive.ObjectID
}

func (e itemNotFoundError) Error() string {
	return "item not found"
}

// Checkout freezes the user's Active cart into an immutable order and marks
// the cart CheckedOut. Line prices are computed by the same routine the cart
// view uses, so the frozen totals match what the user saw.
func Checkout(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/Orders/checkout"
		defer handlePanic(c, route)

		userID, err := userIDFromContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		var cart models.Cart
		err = db.Collection("carts").
			FindOne(ctx, bson.M{"userId": userID, "status": models.CartStatusActive}).
			Decode(&cart)
		if err == mongo.ErrNoDocuments || (err == nil && len(cart.Items) == 0) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty."})
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		order, err := buildOrderFromCart(ctx, db, cart, userID)
		if err != nil {
			var notFound itemNotFoundError
			if errors.As(err, &notFound) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":  "item referenced by cart no longer exists",
					"itemId": notFound.ItemID.Hex(),
				})
				return
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		res, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			order.ID = id
		}

		now := time.Now()
		if _, err := db.Collection("carts").UpdateOne(ctx,
			bson.M{"_id": cart.ID},
			bson.M{"$set": bson.M{
				"status":       models.CartStatusCheckedOut,
				"checkedOutAt": now,
			}},
		); err != nil {
			// The cart stayed Active, so a retry would insert the order twice.
			// Remove the order we just wrote and report the failure instead.
			log.Println("[ORDER] [ERROR] cart close failed after checkout:", err)
			if _, delErr := db.Collection("orders").DeleteOne(ctx, bson.M{"_id": order.ID}); delErr != nil {
				log.Println("[ORDER] [ERROR] order rollback failed:", delErr)
			}
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[ORDER] [INFO] checkout completed for user:", userID.Hex())
		c.JSON(http.StatusOK, gin.H{
			"message": "Checkout successful.",
			"orderId": order.ID.Hex(),
		})
	}
}

func GetUserOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := userIDFromContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, bson.M{"userId": userID}, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := userIDFromContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		filter := bson.M{"_id": orderID}
		// Admins may view any order; users only their own.
		if role, _ := c.Get("role"); role != models.RoleAdmin {
			filter["userId"] = userID
		}

		var order models.Order
		if err := db.Collection("orders").FindOne(ctx, filter).Decode(&order); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found."})
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

func GetAllOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := bson.M{}
		if raw := strings.TrimSpace(c.Query("status")); raw != "" {
			status, ok := models.ParseOrderStatus(raw)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status value."})
				return
			}
			filter["status"] = status
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
		cursor, err := db.Collection("orders").Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		c.JSON(http.StatusOK, orders)
	}
}

func UpdateOrderStatus(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		status, ok := models.ParseOrderStatus(req.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status value."})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		now := time.Now()
		result, err := db.Collection("orders").UpdateOne(ctx,
			bson.M{"_id": orderID},
			bson.M{"$set": bson.M{"status": status, "updatedAt": now}},
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if result.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found."})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully."})
	}
}

// buildOrderFromCart snapshots every cart line: item name, the computed
// per-unit price and the ingredient detail that produced it.
func buildOrderFromCart(ctx context.Context, db *mongo.Database, cart models.Cart, userID primitive.ObjectID) (models.Order, error) {
	itemIDs := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, line := range cart.Items {
		itemIDs = append(itemIDs, line.ItemID)
	}

	cursor, err := db.Collection("items").Find(ctx, bson.M{"_id": bson.M{"$in": itemIDs}})
	if err != nil {
		return models.Order{}, err
	}
	defer cursor.Close(ctx)

	var items []models.Item
	if err := cursor.All(ctx, &items); err != nil {
		return models.Order{}, err
	}
	itemsByID := make(map[primitive.ObjectID]models.Item, len(items))
	ingredientIDSet := make(map[int]struct{})
	for _, item := range items {
		itemsByID[item.ID] = item
		for _, id := range item.IngredientIds {
			ingredientIDSet[id] = struct{}{}
		}
	}

	ingredientIDs := make([]int, 0, len(ingredientIDSet))
	for id := range ingredientIDSet {
		ingredientIDs = append(ingredientIDs, id)
	}
	ingredientsByID, err := fetchIngredients(ctx, db, ingredientIDs)
	if err != nil {
		return models.Order{}, err
	}

	order := models.Order{
		UserID:    userID,
		Status:    models.OrderStatusPending,
		Items:     make([]models.OrderItem, 0, len(cart.Items)),
		CreatedAt: time.Now(),
	}

	var total float64
	for _, line := range cart.Items {
		item, ok := itemsByID[line.ItemID]
		if !ok {
			return models.Order{}, itemNotFoundError{ItemID: line.ItemID}
		}

		usages := resolveUsages(item, ingredientsByID, line.IngredientQuantities)
		unit := unitPrice(item.Price, usages)

		details := make([]models.IngredientDetail, 0, len(usages))
		for _, usage := range usages {
			details = append(details, models.IngredientDetail{
				IngredientID: usage.Ingredient.ID,
				Name:         usage.Ingredient.Name,
				Quantity:     usage.Quantity,
				ExtraCost:    usage.Ingredient.ExtraCost,
			})
		}

		order.Items = append(order.Items, models.OrderItem{
			ItemID:      item.ID,
			ItemName:    item.Name,
			Ingredients: details,
			Price:       unit,
			Quantity:    line.Quantity,
		})
		total += lineTotal(unit, line.Quantity)
	}

	order.TotalAmount = total
	return order, nil
}
