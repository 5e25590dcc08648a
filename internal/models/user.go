package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

// User is the account document. Refresh tokens live embedded on the user so
// issuing, using and revoking them is a single replace of one document.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Username      string             `bson:"username" json:"username"`
	Email         string             `bson:"email" json:"email"`
	PasswordHash  string             `bson:"passwordHash" json:"-"`
	Role          string             `bson:"role" json:"role"`
	Points        int                `bson:"points" json:"points"`
	RefreshTokens []RefreshToken     `bson:"refreshTokens" json:"-"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
