package auth

import (
	"context"

	"github.com/salon-ledger/backend/internal/application/adapter"
)

// LogoutInput represents the input for user logout.
type LogoutInput struct {
	RefreshToken string
}

// LogoutOutput represents the output of user logout.
type LogoutOutput struct {
	Message string
}

// LogoutUseCase handles user logout logic.
type LogoutUseCase struct {
	tokenService adapter.TokenService
}

// NewLogoutUseCase creates a new LogoutUseCase instance.
func NewLogoutUseCase(tokenService adapter.TokenService) *LogoutUseCase {
	return &LogoutUseCase{
		tokenService: tokenService,
	}
}

// Execute performs the user logout by invalidating the refresh token.
func (uc *LogoutUseCase) Execute(ctx context.Context, input LogoutInput) (*LogoutOutput, error) {
	// The token might already be invalid; logout succeeds regardless.
	_ = uc.tokenService.InvalidateRefreshToken(ctx, input.RefreshToken)

	return &LogoutOutput{
		Message: "Successfully logged out",
	}, nil
}
