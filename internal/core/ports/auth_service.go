package ports

import (
	"context"

	"github.com/ZaspDragon/timeclock-api/internal/core/domain"
)

type AuthService interface {
	// Register creates an account with the default employee role.
	Register(ctx context.Context, name, company, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
}
