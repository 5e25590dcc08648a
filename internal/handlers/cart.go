package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"brewtiful/internal/models"
)

type CartAddRequest struct {
	ItemID               string         `json:"itemId" binding:"required"`
	Quantity             int            `json:"quantity" binding:"required"`
	IngredientQuantities map[string]int `json:"ingredientQuantities"`
}

type CartRemoveRequest struct {
	ItemID string `json:"itemId" binding:"required"`
}

// IngredientInfo is the display view of one ingredient on an enriched cart
// line: the requested quantity next to the default it deviates from.
type IngredientInfo struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	DefaultQuantity int    `json:"defaultQuantity"`
}

// EnrichedCartLine joins a stored cart line against the catalog, with the
// computed price for the current customization.
type EnrichedCartLine struct {
	ItemID               primitive.ObjectID `json:"itemId"`
	Name                 string             `json:"name"`
	Price                float64            `json:"price"`
	UnitPrice            float64            `json:"unitPrice"`
	TotalPrice           float64            `json:"totalPrice"`
	Quantity             int                `json:"quantity"`
	IngredientsInfo      []IngredientInfo   `json:"ingredientsInfo"`
	IngredientQuantities map[string]int     `json:"ingredientQuantities"`
}

type CartResponse struct {
	ID           primitive.ObjectID `json:"id"`
	UserID       primitive.ObjectID `json:"userId"`
	Status       string             `json:"status"`
	Items        []EnrichedCartLine `json:"items"`
	CreatedAt    time.Time          `json:"createdAt"`
	CheckedOutAt *time.Time         `json:"checkedOutAt,omitempty"`
}

func GetCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := userIDFromContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cart, err := findOrCreateActiveCart(ctx, db, userID)
		if err != nil {
			log.Println("[CART] [ERROR] cart lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		enriched, err := enrichCart(ctx, db, cart)
		if err != nil {
			log.Println("[CART] [ERROR] cart enrichment failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, enriched)
	}
}

func AddToCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := userIDFromContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req CartAddRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		itemID, err := primitive.ObjectIDFromHex(req.ItemID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid itemId"})
			return
		}
		if req.Quantity <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "quantity must be greater than zero"})
			return
		}

		overrides := req.IngredientQuantities
		if overrides == nil {
			overrides = map[string]int{}
		}
		for key, qty := range overrides {
			if qty < 0 {
				overrides[key] = 0
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("items").CountDocuments(ctx, bson.M{"_id": itemID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if count == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}

		cart, err := findOrCreateActiveCart(ctx, db, userID)
		if err != nil {
			log.Println("[CART] [ERROR] cart lookup failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		line := models.CartLine{
			ItemID:               itemID,
			Quantity:             req.Quantity,
			IngredientQuantities: overrides,
		}

		// A line is merged only when both item and customization match;
		// a differently customized drink stays its own line.
		merged := false
		for i, existing := range cart.Items {
			if existing.ItemID == itemID && existing.SameCustomization(line) {
				cart.Items[i].Quantity += req.Quantity
				merged = true
				break
			}
		}
		if !merged {
			cart.Items = append(cart.Items, line)
		}

		if _, err := db.Collection("carts").UpdateOne(ctx,
			bson.M{"_id": cart.ID},
			bson.M{"$set": bson.M{"items": cart.Items}},
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Item added to cart successfully."})
	}
}

func RemoveFromCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := userIDFromContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req CartRemoveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		itemID, err := primitive.ObjectIDFromHex(req.ItemID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid itemId"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var cart models.Cart
		err = db.Collection("carts").
			FindOne(ctx, bson.M{"userId": userID, "status": models.CartStatusActive}).
			Decode(&cart)
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		kept := make([]models.CartLine, 0, len(cart.Items))
		removed := false
		for _, line := range cart.Items {
			if !removed && line.ItemID == itemID {
				removed = true
				continue
			}
			kept = append(kept, line)
		}
		if !removed {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found in cart"})
			return
		}

		if _, err := db.Collection("carts").UpdateOne(ctx,
			bson.M{"_id": cart.ID},
			bson.M{"$set": bson.M{"items": kept}},
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart successfully."})
	}
}

// findOrCreateActiveCart returns the user's Active cart, inserting an empty
// one when none exists. The partial unique index on (userId, Active) keeps
// concurrent creations from producing a second Active cart.
func findOrCreateActiveCart(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) (models.Cart, error) {
	var cart models.Cart
	err := db.Collection("carts").
		FindOne(ctx, bson.M{"userId": userID, "status": models.CartStatusActive}).
		Decode(&cart)
	if err == nil {
		return cart, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.Cart{}, err
	}

	cart = models.Cart{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Status:    models.CartStatusActive,
		Items:     []models.CartLine{},
		CreatedAt: time.Now(),
	}
	if _, err := db.Collection("carts").InsertOne(ctx, cart); err != nil {
		return models.Cart{}, err
	}
	return cart, nil
}

// splitStaleLines separates cart lines whose item still exists from the ids
// of lines pointing at deleted items.
func splitStaleLines(lines []models.CartLine, itemsByID map[primitive.ObjectID]models.Item) ([]models.CartLine, []primitive.ObjectID) {
	live := make([]models.CartLine, 0, len(lines))
	var stale []primitive.ObjectID
	for _, line := range lines {
		if _, ok := itemsByID[line.ItemID]; ok {
			live = append(live, line)
			continue
		}
		stale = append(stale, line.ItemID)
	}
	return live, stale
}

// enrichCart joins cart lines against items and ingredients and prices each
// line with the shared pricing routine. Lines whose item no longer exists
// are pulled from the stored cart so a later checkout sees the same cart
// the user saw.
func enrichCart(ctx context.Context, db *mongo.Database, cart models.Cart) (CartResponse, error) {
	itemIDs := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, line := range cart.Items {
		itemIDs = append(itemIDs, line.ItemID)
	}

	itemsByID := make(map[primitive.ObjectID]models.Item, len(itemIDs))
	if len(itemIDs) > 0 {
		cursor, err := db.Collection("items").Find(ctx, bson.M{"_id": bson.M{"$in": itemIDs}})
		if err != nil {
			return CartResponse{}, err
		}
		defer cursor.Close(ctx)

		var items []models.Item
		if err := cursor.All(ctx, &items); err != nil {
			return CartResponse{}, err
		}
		for _, item := range items {
			itemsByID[item.ID] = item
		}
	}

	ingredientIDSet := make(map[int]struct{})
	for _, item := range itemsByID {
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
		return CartResponse{}, err
	}

	liveLines, staleIDs := splitStaleLines(cart.Items, itemsByID)
	if len(staleIDs) > 0 {
		if _, err := db.Collection("carts").UpdateOne(ctx,
			bson.M{"_id": cart.ID},
			bson.M{"$pull": bson.M{"items": bson.M{"itemId": bson.M{"$in": staleIDs}}}},
		); err != nil {
			log.Println("[CART] [ERROR] stale line cleanup failed:", err)
		}
	}

	enriched := make([]EnrichedCartLine, 0, len(liveLines))
	for _, line := range liveLines {
		item := itemsByID[line.ItemID]

		usages := resolveUsages(item, ingredientsByID, line.IngredientQuantities)
		unit := unitPrice(item.Price, usages)

		info := make([]IngredientInfo, 0, len(usages))
		for _, usage := range usages {
			info = append(info, IngredientInfo{
				ID:              usage.Ingredient.ID,
				Name:            usage.Ingredient.Name,
				Quantity:        usage.Quantity,
				DefaultQuantity: usage.Ingredient.DefaultQuantity,
			})
		}

		enriched = append(enriched, EnrichedCartLine{
			ItemID:               item.ID,
			Name:                 item.Name,
			Price:                item.Price,
			UnitPrice:            unit,
			TotalPrice:           lineTotal(unit, line.Quantity),
			Quantity:             line.Quantity,
			IngredientsInfo:      info,
			IngredientQuantities: line.IngredientQuantities,
		})
	}

	return CartResponse{
		ID:           cart.ID,
		UserID:       cart.UserID,
		Status:       cart.Status,
		Items:        enriched,
		CreatedAt:    cart.CreatedAt,
		CheckedOutAt: cart.CheckedOutAt,
	}, nil
}
