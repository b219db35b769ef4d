// Package auth contains authentication-related use cases.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/salon-ledger/backend/internal/application/adapter"
	"github.com/salon-ledger/backend/internal/application/service"
	"github.com/salon-ledger/backend/internal/domain/entity"
	domainerror "github.com/salon-ledger/backend/internal/domain/error"
)

// SignInInput represents the input for OAuth sign-in.
type SignInInput struct {
	Provider      entity.AuthProvider
	IdentityToken string
	Nonce         string
}

// SignInOutput represents the output of OAuth sign-in.
type SignInOutput struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
}

// SignInUseCase exchanges a provider identity token plus a single-use nonce
// for a session token pair.
type SignInUseCase struct {
	verifiers  map[entity.AuthProvider]adapter.IdentityVerifier
	nonceStore adapter.NonceStore
	userRepo   adapter.UserRepository
	tokens     adapter.TokenService
	categories *service.CategoryService
}

// NewSignInUseCase creates a new SignInUseCase instance.
func NewSignInUseCase(
	verifiers map[entity.AuthProvider]adapter.IdentityVerifier,
	nonceStore adapter.NonceStore,
	userRepo adapter.UserRepository,
	tokens adapter.TokenService,
	categories *service.CategoryService,
) *SignInUseCase {
	return &SignInUseCase{
		verifiers:  verifiers,
		nonceStore: nonceStore,
		userRepo:   userRepo,
		tokens:     tokens,
		categories: categories,
	}
}

// Execute performs the sign-in.
func (uc *SignInUseCase) Execute(ctx context.Context, input SignInInput) (*SignInOutput, error) {
	verifier, ok := uc.verifiers[input.Provider]
	if !ok {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeUnsupportedProvider,
			fmt.Sprintf("provider %q is not supported", input.Provider),
			domainerror.ErrUnsupportedProvider,
		)
	}

	identity, err := verifier.Verify(ctx, input.IdentityToken)
	if err != nil {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeInvalidIdentityToken,
			"identity token verification failed",
			domainerror.ErrInvalidIdentityToken,
		)
	}

	// The token must carry the nonce the client generated for this attempt.
	if identity.Nonce == "" || identity.Nonce != input.Nonce {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeNonceMismatch,
			"identity token nonce does not match",
			domainerror.ErrNonceMismatch,
		)
	}

	fresh, err := uc.nonceStore.Consume(ctx, input.Nonce)
	if err != nil {
		return nil, fmt.Errorf("failed to consume sign-in nonce: %w", err)
	}
	if !fresh {
		return nil, domainerror.NewAuthError(
			domainerror.ErrCodeNonceAlreadyUsed,
			"sign-in nonce was already used",
			domainerror.ErrNonceAlreadyUsed,
		)
	}

	user, err := uc.userRepo.FindByProviderSubject(ctx, input.Provider, identity.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil {
		user = entity.NewUser(input.Provider, identity.Subject, identity.Email, identity.DisplayName)
		if err := uc.userRepo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		// First sign-in gets the default expense categories. Seeding is
		// best-effort and never blocks the sign-in.
		uc.categories.SeedDefaults(ctx, user.ID.String())
		slog.Info("new user signed up", "user_id", user.ID, "provider", input.Provider)
	} else if identity.Email != "" && identity.Email != user.Email {
		user.Email = identity.Email
		user.UpdatedAt = time.Now().UTC()
		if err := uc.userRepo.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
	}

	tokenPair, err := uc.tokens.GenerateTokenPair(ctx, user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return &SignInOutput{
		User:         user,
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
	}, nil
}
