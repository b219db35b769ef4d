package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/salon-ledger/backend/internal/application/adapter"
	"github.com/salon-ledger/backend/internal/integration/persistence"
	"github.com/salon-ledger/backend/internal/integration/persistence/model"
)

func newTokenService(t *testing.T) adapter.TokenService {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.RefreshTokenModel{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	repo := persistence.NewTokenRepository(db)
	return NewTokenService("test-secret", 15*time.Minute, 7*24*time.Hour, repo)
}

func TestTokenService_GenerateAndValidate(t *testing.T) {
	svc := newTokenService(t)
	ctx := context.Background()
	userID := uuid.New()

	pair, err := svc.GenerateTokenPair(ctx, userID, "owner@example.com")
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}

	t.Run("access token validates with the right claims", func(t *testing.T) {
		claims, err := svc.ValidateAccessToken(ctx, pair.AccessToken)
		if err != nil {
			t.Fatalf("ValidateAccessToken failed: %v", err)
		}
		if claims.UserID != userID {
			t.Errorf("expected user id %s, got %s", userID, claims.UserID)
		}
		if claims.Email != "owner@example.com" {
			t.Errorf("expected email claim, got %s", claims.Email)
		}
	})

	t.Run("token types are not interchangeable", func(t *testing.T) {
		if _, err := svc.ValidateAccessToken(ctx, pair.RefreshToken); err == nil {
			t.Error("expected refresh token to fail access validation")
		}
		if _, err := svc.ValidateRefreshToken(ctx, pair.AccessToken); err == nil {
			t.Error("expected access token to fail refresh validation")
		}
	})

	t.Run("garbage tokens are rejected", func(t *testing.T) {
		if _, err := svc.ValidateAccessToken(ctx, "not-a-jwt"); err == nil {
			t.Error("expected malformed token to be rejected")
		}
	})
}

func TestTokenService_RefreshTokenLifecycle(t *testing.T) {
	svc := newTokenService(t)
	ctx := context.Background()

	pair, err := svc.GenerateTokenPair(ctx, uuid.New(), "owner@example.com")
	if err != nil {
		t.Fatalf("GenerateTokenPair failed: %v", err)
	}

	valid, err := svc.IsRefreshTokenValid(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("IsRefreshTokenValid failed: %v", err)
	}
	if !valid {
		t.Fatal("expected freshly issued refresh token to be valid")
	}

	if err := svc.InvalidateRefreshToken(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("InvalidateRefreshToken failed: %v", err)
	}

	valid, err = svc.IsRefreshTokenValid(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("IsRefreshTokenValid failed: %v", err)
	}
	if valid {
		t.Error("expected invalidated refresh token to be invalid")
	}
}
