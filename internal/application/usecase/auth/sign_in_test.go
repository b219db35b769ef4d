package auth

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/salon-ledger/backend/internal/application/adapter"
	"github.com/salon-ledger/backend/internal/application/service"
	"github.com/salon-ledger/backend/internal/domain/entity"
	domainerror "github.com/salon-ledger/backend/internal/domain/error"
	"github.com/salon-ledger/backend/internal/integration/persistence"
	"github.com/salon-ledger/backend/internal/integration/persistence/model"
)

type stubVerifier struct {
	identity *adapter.Identity
	err      error
}

func (v *stubVerifier) Verify(_ context.Context, _ string) (*adapter.Identity, error) {
	return v.identity, v.err
}

type memoryNonceStore struct {
	used map[string]bool
}

func (s *memoryNonceStore) Consume(_ context.Context, nonce string) (bool, error) {
	if s.used == nil {
		s.used = make(map[string]bool)
	}
	if s.used[nonce] {
		return false, nil
	}
	s.used[nonce] = true
	return true, nil
}

type stubTokenService struct {
	issued int
}

func (s *stubTokenService) GenerateTokenPair(_ context.Context, userID uuid.UUID, _ string) (*adapter.TokenPair, error) {
	s.issued++
	return &adapter.TokenPair{
		AccessToken:  fmt.Sprintf("access-%s-%d", userID, s.issued),
		RefreshToken: fmt.Sprintf("refresh-%s-%d", userID, s.issued),
	}, nil
}

func (s *stubTokenService) ValidateAccessToken(_ context.Context, _ string) (*adapter.TokenClaims, error) {
	return nil, domainerror.ErrInvalidToken
}

func (s *stubTokenService) ValidateRefreshToken(_ context.Context, _ string) (*adapter.TokenClaims, error) {
	return nil, domainerror.ErrInvalidToken
}

func (s *stubTokenService) InvalidateRefreshToken(_ context.Context, _ string) error { return nil }

func (s *stubTokenService) IsRefreshTokenValid(_ context.Context, _ string) (bool, error) {
	return true, nil
}

type signInFixture struct {
	useCase    *SignInUseCase
	verifier   *stubVerifier
	categories *service.CategoryService
	userRepo   adapter.UserRepository
}

func newSignInFixture(t *testing.T) *signInFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.DocumentModel{}, &model.UserModel{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	verifier := &stubVerifier{
		identity: &adapter.Identity{
			Subject:     "subject-1",
			Email:       "owner@example.com",
			DisplayName: "Owner",
			Nonce:       "nonce-1",
		},
	}
	categories := service.NewCategoryService(persistence.NewDocumentStore(db))
	userRepo := persistence.NewUserRepository(db)

	useCase := NewSignInUseCase(
		map[entity.AuthProvider]adapter.IdentityVerifier{
			entity.AuthProviderGoogle: verifier,
		},
		&memoryNonceStore{},
		userRepo,
		&stubTokenService{},
		categories,
	)
	return &signInFixture{
		useCase:    useCase,
		verifier:   verifier,
		categories: categories,
		userRepo:   userRepo,
	}
}

func TestSignInUseCase_FirstSignIn(t *testing.T) {
	f := newSignInFixture(t)
	ctx := context.Background()

	out, err := f.useCase.Execute(ctx, SignInInput{
		Provider:      entity.AuthProviderGoogle,
		IdentityToken: "token",
		Nonce:         "nonce-1",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if out.User.Email != "owner@example.com" {
		t.Errorf("expected user email from identity, got %s", out.User.Email)
	}
	if out.AccessToken == "" || out.RefreshToken == "" {
		t.Error("expected issued token pair")
	}

	t.Run("seeds default categories", func(t *testing.T) {
		items, err := f.categories.FetchAll(ctx, out.User.ID.String())
		if err != nil {
			t.Fatalf("FetchAll failed: %v", err)
		}
		if len(items) != len(entity.DefaultCategories) {
			t.Errorf("expected %d seeded categories, got %d", len(entity.DefaultCategories), len(items))
		}
	})
}

func TestSignInUseCase_ReturningUser(t *testing.T) {
	f := newSignInFixture(t)
	ctx := context.Background()

	first, err := f.useCase.Execute(ctx, SignInInput{
		Provider:      entity.AuthProviderGoogle,
		IdentityToken: "token",
		Nonce:         "nonce-1",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	f.verifier.identity.Nonce = "nonce-2"
	second, err := f.useCase.Execute(ctx, SignInInput{
		Provider:      entity.AuthProviderGoogle,
		IdentityToken: "token",
		Nonce:         "nonce-2",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if first.User.ID != second.User.ID {
		t.Error("expected the same user across sign-ins with one subject")
	}

	t.Run("does not reseed categories", func(t *testing.T) {
		items, err := f.categories.FetchAll(ctx, second.User.ID.String())
		if err != nil {
			t.Fatalf("FetchAll failed: %v", err)
		}
		if len(items) != len(entity.DefaultCategories) {
			t.Errorf("expected seeding exactly once, got %d categories", len(items))
		}
	})
}

func TestSignInUseCase_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("unsupported provider", func(t *testing.T) {
		f := newSignInFixture(t)
		_, err := f.useCase.Execute(ctx, SignInInput{
			Provider:      entity.AuthProvider("facebook"),
			IdentityToken: "token",
			Nonce:         "nonce-1",
		})
		if !errors.Is(err, domainerror.ErrUnsupportedProvider) {
			t.Errorf("expected ErrUnsupportedProvider, got %v", err)
		}
	})

	t.Run("failed verification", func(t *testing.T) {
		f := newSignInFixture(t)
		f.verifier.err = errors.New("bad signature")
		f.verifier.identity = nil
		_, err := f.useCase.Execute(ctx, SignInInput{
			Provider:      entity.AuthProviderGoogle,
			IdentityToken: "token",
			Nonce:         "nonce-1",
		})
		if !errors.Is(err, domainerror.ErrInvalidIdentityToken) {
			t.Errorf("expected ErrInvalidIdentityToken, got %v", err)
		}
	})

	t.Run("nonce mismatch", func(t *testing.T) {
		f := newSignInFixture(t)
		_, err := f.useCase.Execute(ctx, SignInInput{
			Provider:      entity.AuthProviderGoogle,
			IdentityToken: "token",
			Nonce:         "a-different-nonce",
		})
		if !errors.Is(err, domainerror.ErrNonceMismatch) {
			t.Errorf("expected ErrNonceMismatch, got %v", err)
		}
	})

	t.Run("nonce replay", func(t *testing.T) {
		f := newSignInFixture(t)
		if _, err := f.useCase.Execute(ctx, SignInInput{
			Provider:      entity.AuthProviderGoogle,
			IdentityToken: "token",
			Nonce:         "nonce-1",
		}); err != nil {
			t.Fatalf("first sign-in failed: %v", err)
		}

		_, err := f.useCase.Execute(ctx, SignInInput{
			Provider:      entity.AuthProviderGoogle,
			IdentityToken: "token",
			Nonce:         "nonce-1",
		})
		if !errors.Is(err, domainerror.ErrNonceAlreadyUsed) {
			t.Errorf("expected ErrNonceAlreadyUsed, got %v", err)
		}
	})
}
