package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"brewtiful/internal/config"
	"brewtiful/internal/models"
)

const refreshCookieName = "refreshToken"

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Username string `json:"username" binding:"required"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Register(db *mongo.Database, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		name := strings.TrimSpace(req.Name)
		username := strings.TrimSpace(req.Username)

		if !validName(name) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name must consist of only English or Lithuanian letters and spaces, max 20 characters"})
			return
		}

		role := models.RoleUser
		if strings.EqualFold(req.Role, models.RoleAdmin) {
			role = models.RoleAdmin
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("users").CountDocuments(ctx, bson.M{"email": email})
		if err != nil {
			log.Println("[AUTH] [ERROR] register db error:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if count > 0 {
			log.Println("[AUTH] [ERROR] register email exists:", email)
			c.JSON(http.StatusBadRequest, gin.H{"error": "User already exists."})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Println("[AUTH] [ERROR] register password hash failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "password hash failed"})
			return
		}

		now := time.Now()
		user := models.User{
			ID:            primitive.NewObjectID(),
			Name:          name,
			Username:      username,
			Email:         email,
			PasswordHash:  string(hash),
			Role:          role,
			Points:        0,
			RefreshTokens: []models.RefreshToken{},
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		accessToken, err := issueAccessToken(user, cfg)
		if err != nil {
			log.Println("[AUTH] [ERROR] register token generation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
			return
		}

		refresh, err := issueRefreshToken(user, cfg)
		if err != nil {
			log.Println("[AUTH] [ERROR] register refresh generation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
			return
		}
		user.RefreshTokens = append(user.RefreshTokens, refresh)

		if _, err := db.Collection("users").InsertOne(ctx, user); err != nil {
			log.Println("[AUTH] [ERROR] register insert failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		setRefreshCookie(c, refresh)
		log.Println("[AUTH] [INFO] user registered:", email)
		c.JSON(http.StatusOK, gin.H{"token": accessToken})
	}
}

func Login(db *mongo.Database, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email == "" || strings.TrimSpace(req.Password) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
			if err != mongo.ErrNoDocuments {
				log.Println("[AUTH] [ERROR] login user lookup failed:", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
				return
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
			log.Println("[AUTH] [ERROR] login invalid credentials for:", email)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}

		now := time.Now()
		user.RefreshTokens = pruneRefreshTokens(user.RefreshTokens, now)

		var active models.RefreshToken
		found := false
		for _, stored := range user.RefreshTokens {
			if stored.Live(now) {
				active = stored
				found = true
				break
			}
		}
		if !found {
			refresh, err := issueRefreshToken(user, cfg)
			if err != nil {
				log.Println("[AUTH] [ERROR] login refresh generation failed:", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
				return
			}
			user.RefreshTokens = append(user.RefreshTokens, refresh)
			active = refresh
		}

		accessToken, err := issueAccessToken(user, cfg)
		if err != nil {
			log.Println("[AUTH] [ERROR] login token generation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
			return
		}

		if _, err := db.Collection("users").ReplaceOne(ctx, bson.M{"_id": user.ID}, user); err != nil {
			log.Println("[AUTH] [ERROR] login token store update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		setRefreshCookie(c, active)
		log.Println("[AUTH] [INFO] login succeeded:", email)
		c.JSON(http.StatusOK, gin.H{"token": accessToken})
	}
}

func Refresh(db *mongo.Database, cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented, err := c.Cookie(refreshCookieName)
		if err != nil || strings.TrimSpace(presented) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "refresh token is missing"})
			return
		}

		// The presented token is fully verified before its subject claim is
		// trusted to locate the owning user.
		userID, err := verifyRefreshToken(presented, cfg)
		if err != nil {
			log.Println("[AUTH] [ERROR] refresh token verification failed:", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}

		now := time.Now()

		remaining, ok := consumeRefreshToken(user.RefreshTokens, hashToken(presented), now)
		if !ok {
			log.Println("[AUTH] [ERROR] refresh token expired, revoked or already used")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token has expired or is no longer valid"})
			return
		}
		user.RefreshTokens = remaining

		accessToken, err := issueAccessToken(user, cfg)
		if err != nil {
			log.Println("[AUTH] [ERROR] refresh access generation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
			return
		}

		refresh, err := issueRefreshToken(user, cfg)
		if err != nil {
			log.Println("[AUTH] [ERROR] refresh generation failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
			return
		}
		user.RefreshTokens = append(user.RefreshTokens, refresh)

		if _, err := db.Collection("users").ReplaceOne(ctx, bson.M{"_id": user.ID}, user); err != nil {
			log.Println("[AUTH] [ERROR] refresh token store update failed:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		setRefreshCookie(c, refresh)
		log.Println("[AUTH] [INFO] token refreshed for:", user.Email)
		c.JSON(http.StatusOK, gin.H{"token": accessToken})
	}
}

func Logout(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		presented, err := c.Cookie(refreshCookieName)
		if err != nil || strings.TrimSpace(presented) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "refresh token is missing"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		hash := hashToken(presented)
		res, err := db.Collection("users").UpdateOne(ctx,
			bson.M{"refreshTokens": bson.M{"$elemMatch": bson.M{
				"tokenHash": hash,
				"revoked":   false,
			}}},
			bson.M{"$set": bson.M{"refreshTokens.$.revoked": true}},
		)
		if err != nil {
			log.Println("[AUTH] [ERROR] logout db error:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}

		clearRefreshCookie(c)
		c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully."})
	}
}

func GetProfile(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := userIDFromContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var user models.User
		if err := db.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"name":     user.Name,
			"email":    user.Email,
			"username": user.Username,
			"role":     user.Role,
		})
	}
}

/* =========================
   TOKEN ISSUANCE
========================= */

func issueAccessToken(user models.User, cfg config.Config) (string, error) {
	return signUserToken(user, cfg, cfg.AccessTokenTTL)
}

// issueRefreshToken mints the refresh JWT and wraps it in the stored record
// attached to the user document.
func issueRefreshToken(user models.User, cfg config.Config) (models.RefreshToken, error) {
	now := time.Now()
	token, err := signUserToken(user, cfg, cfg.RefreshTokenTTL)
	if err != nil {
		return models.RefreshToken{}, err
	}

	return models.RefreshToken{
		Token:     token,
		TokenHash: hashToken(token),
		IssuedAt:  now,
		ExpiresAt: now.Add(cfg.RefreshTokenTTL),
		Used:      false,
		Revoked:   false,
	}, nil
}

func signUserToken(user models.User, cfg config.Config, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID.Hex(),
		"email": user.Email,
		"role":  user.Role,
		"jti":   uuid.NewString(),
		"iss":   cfg.JWTIssuer,
		"aud":   cfg.JWTAudience,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWTSecret))
}

// verifyRefreshToken checks signature, issuer, audience and expiry of the
// presented refresh JWT and returns its subject.
func verifyRefreshToken(presented string, cfg config.Config) (primitive.ObjectID, error) {
	token, err := jwt.Parse(presented, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.JWTIssuer),
		jwt.WithAudience(cfg.JWTAudience),
	)
	if err != nil {
		return primitive.NilObjectID, err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return primitive.NilObjectID, err
	}

	return primitive.ObjectIDFromHex(strings.TrimSpace(sub))
}

// pruneRefreshTokens drops expired and used entries. Revoked tokens are kept
// until expiry so a replayed revoked token stays identifiable as revoked.
func pruneRefreshTokens(tokens []models.RefreshToken, now time.Time) []models.RefreshToken {
	kept := make([]models.RefreshToken, 0, len(tokens))
	for _, t := range tokens {
		if t.Used || now.After(t.ExpiresAt) {
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

// consumeRefreshToken marks the stored token matching hash as used and returns
// the pruned token list. ok is false when no live matching token exists, so a
// second presentation of the same token is rejected.
func consumeRefreshToken(tokens []models.RefreshToken, hash string, now time.Time) ([]models.RefreshToken, bool) {
	matched := -1
	for i, stored := range tokens {
		if stored.TokenHash == hash {
			matched = i
			break
		}
	}
	if matched < 0 || !tokens[matched].Live(now) {
		return tokens, false
	}

	tokens[matched].Used = true
	return pruneRefreshTokens(tokens, now), true
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func setRefreshCookie(c *gin.Context, refresh models.RefreshToken) {
	c.SetSameSite(http.SameSiteNoneMode)
	maxAge := int(time.Until(refresh.ExpiresAt).Seconds())
	c.SetCookie(refreshCookieName, refresh.Token, maxAge, "/", "", true, true)
}

func clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(refreshCookieName, "", -1, "/", "", true, true)
}
