package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func ensureDBConnection(ctx context.Context, db *mongo.Database) error {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Client().Ping(checkCtx, readpref.Primary())
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] returning error %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// userIDFromContext returns the authenticated user's id set by AuthGuard.
func userIDFromContext(c *gin.Context) (primitive.ObjectID, error) {
	value, exists := c.Get("userId")
	if !exists {
		return primitive.NilObjectID, errors.New("not authenticated")
	}
	userID, ok := value.(primitive.ObjectID)
	if !ok || userID.IsZero() {
		return primitive.NilObjectID, errors.New("not authenticated")
	}
	return userID, nil
}
