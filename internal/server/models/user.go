package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the stored account record. PasswordHash never leaves the server;
// API responses are built from the public view in the services package.
type User struct {
	ID                 string
	Name               string
	Email              string
	PasswordHash       string
	OnboardingComplete bool
	// TokenVersion is embedded in every access token; bumping it revokes
	// all tokens issued before.
	TokenVersion int64
	CreatedAt    time.Time
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewUserID derives the stable account id from a normalized email
// (name-based UUID, SHA-1, URL namespace).
func NewUserID(email string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String()
}
