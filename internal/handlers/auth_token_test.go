package handlers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"brewtiful/internal/config"
	"brewtiful/internal/models"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:       "test-secret",
		JWTIssuer:       "brewtiful",
		JWTAudience:     "brewtiful-web",
		AccessTokenTTL:  10 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
}

func testUser() models.User {
	return models.User{
		ID:    primitive.NewObjectID(),
		Email: "barista@example.com",
		Role:  models.RoleUser,
	}
}

func TestAccessTokenClaims(t *testing.T) {
	cfg := testConfig()
	user := testUser()

	signed, err := issueAccessToken(user, cfg)
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(t *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, user.ID.Hex(), claims["sub"])
	assert.Equal(t, user.Email, claims["email"])
	assert.Equal(t, models.RoleUser, claims["role"])
	assert.Equal(t, cfg.JWTIssuer, claims["iss"])
	assert.Equal(t, cfg.JWTAudience, claims["aud"])
	assert.NotEmpty(t, claims["jti"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(cfg.AccessTokenTTL), exp.Time, time.Minute)
}

func TestAccessTokensCarryUniqueJTI(t *testing.T) {
	cfg := testConfig()
	user := testUser()

	first, err := issueAccessToken(user, cfg)
	require.NoError(t, err)
	second, err := issueAccessToken(user, cfg)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestIssueRefreshTokenStoredRecord(t *testing.T) {
	cfg := testConfig()
	user := testUser()

	refresh, err := issueRefreshToken(user, cfg)
	require.NoError(t, err)

	assert.False(t, refresh.Used)
	assert.False(t, refresh.Revoked)
	assert.Equal(t, hashToken(refresh.Token), refresh.TokenHash)
	assert.WithinDuration(t, time.Now().Add(cfg.RefreshTokenTTL), refresh.ExpiresAt, time.Minute)

	subject, err := verifyRefreshToken(refresh.Token, cfg)
	require.NoError(t, err)
	assert.Equal(t, user.ID, subject)
}

func TestVerifyRefreshTokenRejectsWrongSecret(t *testing.T) {
	cfg := testConfig()
	refresh, err := issueRefreshToken(testUser(), cfg)
	require.NoError(t, err)

	bad := cfg
	bad.JWTSecret = "other-secret"
	_, err = verifyRefreshToken(refresh.Token, bad)
	assert.Error(t, err)
}

func TestVerifyRefreshTokenRejectsWrongIssuer(t *testing.T) {
	cfg := testConfig()
	refresh, err := issueRefreshToken(testUser(), cfg)
	require.NoError(t, err)

	bad := cfg
	bad.JWTIssuer = "someone-else"
	_, err = verifyRefreshToken(refresh.Token, bad)
	assert.Error(t, err)
}

func TestPruneRefreshTokensDropsUsedAndExpired(t *testing.T) {
	now := time.Now()
	tokens := []models.RefreshToken{
		{TokenHash: "live", ExpiresAt: now.Add(time.Hour)},
		{TokenHash: "used", ExpiresAt: now.Add(time.Hour), Used: true},
		{TokenHash: "expired", ExpiresAt: now.Add(-time.Hour)},
		{TokenHash: "revoked", ExpiresAt: now.Add(time.Hour), Revoked: true},
	}

	kept := pruneRefreshTokens(tokens, now)
	require.Len(t, kept, 2)
	assert.Equal(t, "live", kept[0].TokenHash)
	// Revoked entries are kept until expiry so a replay stays identifiable.
	assert.Equal(t, "revoked", kept[1].TokenHash)
}

func TestRefreshTokenLive(t *testing.T) {
	now := time.Now()
	live := models.RefreshToken{ExpiresAt: now.Add(time.Hour)}
	assert.True(t, live.Live(now))

	used := models.RefreshToken{ExpiresAt: now.Add(time.Hour), Used: true}
	assert.False(t, used.Live(now))

	revoked := models.RefreshToken{ExpiresAt: now.Add(time.Hour), Revoked: true}
	assert.False(t, revoked.Live(now))

	expired := models.RefreshToken{ExpiresAt: now.Add(-time.Minute)}
	assert.False(t, expired.Live(now))
}

func TestConsumeRefreshTokenIsSingleUse(t *testing.T) {
	now := time.Now()
	tokens := []models.RefreshToken{
		{TokenHash: "current", ExpiresAt: now.Add(time.Hour)},
		{TokenHash: "other", ExpiresAt: now.Add(time.Hour)},
	}

	remaining, ok := consumeRefreshToken(tokens, "current", now)
	require.True(t, ok)
	require.Len(t, remaining, 1)
	assert.Equal(t, "other", remaining[0].TokenHash)

	// Presenting the same token again against the stored state fails.
	_, ok = consumeRefreshToken(remaining, "current", now)
	assert.False(t, ok)
}

func TestConsumeRefreshTokenRejectsDeadTokens(t *testing.T) {
	now := time.Now()

	_, ok := consumeRefreshToken([]models.RefreshToken{
		{TokenHash: "used", ExpiresAt: now.Add(time.Hour), Used: true},
	}, "used", now)
	assert.False(t, ok)

	_, ok = consumeRefreshToken([]models.RefreshToken{
		{TokenHash: "revoked", ExpiresAt: now.Add(time.Hour), Revoked: true},
	}, "revoked", now)
	assert.False(t, ok)

	_, ok = consumeRefreshToken([]models.RefreshToken{
		{TokenHash: "expired", ExpiresAt: now.Add(-time.Minute)},
	}, "expired", now)
	assert.False(t, ok)

	_, ok = consumeRefreshToken(nil, "missing", now)
	assert.False(t, ok)
}

func TestHashTokenIsStableHex(t *testing.T) {
	first := hashToken("some-token")
	second := hashToken("some-token")
	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.NotEqual(t, first, hashToken("other-token"))
}
