package models

import "time"

// RefreshToken is one long-lived credential attached to a user. The token
// itself is a signed JWT; TokenHash (sha256 hex) is what lookups key on.
type RefreshToken struct {
	Token     string    `bson:"token" json:"-"`
	TokenHash string    `bson:"tokenHash" json:"-"`
	IssuedAt  time.Time `bson:"issuedAt" json:"issuedAt"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
	Used      bool      `bson:"used" json:"used"`
	Revoked   bool      `bson:"revoked" json:"revoked"`
}

// Live reports whether the token can still be presented for a refresh.
func (t RefreshToken) Live(now time.Time) bool {
	return !t.Used && !t.Revoked && now.Before(t.ExpiresAt)
}
