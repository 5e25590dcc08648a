package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"brewtiful/internal/models"
)

type UserSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Points   int    `json:"points"`
}

func GetUsers(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		cursor, err := db.Collection("users").Find(ctx, bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		defer cursor.Close(ctx)

		var users []models.User
		if err := cursor.All(ctx, &users); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "decode error"})
			return
		}

		summaries := make([]UserSummary, 0, len(users))
		for _, user := range users {
			summaries = append(summaries, UserSummary{
				ID:       user.ID.Hex(),
				Name:     user.Name,
				Username: user.Username,
				Email:    user.Email,
				Role:     user.Role,
				Points:   user.Points,
			})
		}

		c.JSON(http.StatusOK, summaries)
	}
}

// DeleteUser removes the account and its carts. Orders stay: they are
// immutable purchase history.
func DeleteUser(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		result, err := db.Collection("users").DeleteOne(ctx, bson.M{"_id": id})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if result.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("User with ID %s not found.", id.Hex())})
			return
		}

		if _, err := db.Collection("carts").DeleteMany(ctx, bson.M{"userId": id}); err != nil {
			log.Println("[USERS] [ERROR] cart cleanup failed for deleted user:", err)
		}

		c.Status(http.StatusNoContent)
	}
}
