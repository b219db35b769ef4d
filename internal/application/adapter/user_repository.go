package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/salon-ledger/backend/internal/domain/entity"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create creates a new user in the database.
	Create(ctx context.Context, user *entity.User) error

	// FindByID retrieves a user by its ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByProviderSubject retrieves a user by provider and subject claim.
	FindByProviderSubject(ctx context.Context, provider entity.AuthProvider, subject string) (*entity.User, error)

	// Update updates an existing user in the database.
	Update(ctx context.Context, user *entity.User) error
}
