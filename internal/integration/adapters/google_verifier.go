package adapters

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"

	"github.com/salon-ledger/backend/internal/application/adapter"
)

// googleVerifier verifies Google Sign-In identity tokens.
type googleVerifier struct {
	clientID string
}

// NewGoogleVerifier creates a verifier for Google identity tokens issued to
// the given OAuth client id.
func NewGoogleVerifier(clientID string) adapter.IdentityVerifier {
	return &googleVerifier{
		clientID: clientID,
	}
}

// Verify validates the token signature, audience and expiry against Google's
// published keys and extracts the identity claims.
func (v *googleVerifier) Verify(ctx context.Context, identityToken string) (*adapter.Identity, error) {
	payload, err := idtoken.Validate(ctx, identityToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("google token validation failed: %w", err)
	}

	return &adapter.Identity{
		Subject:     payload.Subject,
		Email:       claimString(payload.Claims, "email"),
		DisplayName: claimString(payload.Claims, "name"),
		Nonce:       claimString(payload.Claims, "nonce"),
	}, nil
}

func claimString(claims map[string]any, key string) string {
	if value, ok := claims[key].(string); ok {
		return value
	}
	return ""
}
