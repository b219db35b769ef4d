package adapters

import (
	"context"
	"fmt"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/salon-ledger/backend/internal/application/adapter"
)

const (
	appleJWKSURL = "https://appleid.apple.com/auth/keys"
	appleIssuer  = "https://appleid.apple.com"
)

// appleClaims are the claims Sign in with Apple identity tokens carry.
type appleClaims struct {
	Email string `json:"email"`
	Nonce string `json:"nonce"`
	jwt.RegisteredClaims
}

// appleVerifier verifies Sign in with Apple identity tokens against Apple's
// JWKS endpoint.
type appleVerifier struct {
	clientID string
	keys     keyfunc.Keyfunc
}

// NewAppleVerifier creates a verifier for Apple identity tokens issued to
// the given service id. The JWKS is fetched lazily and refreshed in the
// background.
func NewAppleVerifier(clientID string) (adapter.IdentityVerifier, error) {
	keys, err := keyfunc.NewDefault([]string{appleJWKSURL})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize apple JWKS: %w", err)
	}
	return &appleVerifier{
		clientID: clientID,
		keys:     keys,
	}, nil
}

// Verify validates the token signature, issuer, audience and expiry and
// extracts the identity claims. Apple does not carry a display name in the
// token, so DisplayName stays empty.
func (v *appleVerifier) Verify(ctx context.Context, identityToken string) (*adapter.Identity, error) {
	claims := &appleClaims{}
	token, err := jwt.ParseWithClaims(identityToken, claims, v.keys.Keyfunc,
		jwt.WithIssuer(appleIssuer),
		jwt.WithAudience(v.clientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("apple token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("apple token is not valid")
	}

	return &adapter.Identity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Nonce:   claims.Nonce,
	}, nil
}
