package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuthProvider identifies the OAuth identity provider a user signed in with.
type AuthProvider string

const (
	AuthProviderGoogle AuthProvider = "google"
	AuthProviderApple  AuthProvider = "apple"
)

// User represents an authenticated shop owner. All documents live under the
// user's namespace; there is no cross-user sharing.
type User struct {
	ID          uuid.UUID
	Provider    AuthProvider
	Subject     string // provider-assigned stable subject claim
	Email       string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewUser creates a user for a first sign-in with a provider identity.
func NewUser(provider AuthProvider, subject, email, displayName string) *User {
	now := time.Now().UTC()

	return &User{
		ID:          uuid.New(),
		Provider:    provider,
		Subject:     subject,
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
