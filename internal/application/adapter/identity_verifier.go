package adapter

import "context"

// Identity holds the verified claims of a provider identity token.
type Identity struct {
	Subject     string
	Email       string
	DisplayName string
	Nonce       string // nonce claim carried by the token, empty when absent
}

// IdentityVerifier verifies a provider-issued identity token (signature,
// audience, expiry) and extracts the identity claims. One implementation
// exists per OAuth provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, identityToken string) (*Identity, error)
}

// NonceStore enforces single use of sign-in nonces.
type NonceStore interface {
	// Consume marks the nonce as used. It returns false when the nonce was
	// already consumed within its validity window.
	Consume(ctx context.Context, nonce string) (bool, error)
}
