package ports

import (
	"context"

	"github.com/99minutos/parcel-portal/internal/core/domain"
)

// AuthService is the authentication backend used by the sign-in page and the
// JSON auth routes. SignIn failures are *domain.AuthError values.
type AuthService interface {
	Register(ctx context.Context, username, password, email, role string) (*domain.User, error)
	SignIn(ctx context.Context, email, password string) (string, *domain.User, error)
}

// VerificationService issues and redeems e-mail verification links.
type VerificationService interface {
	Resend(ctx context.Context, email string) error
	Verify(ctx context.Context, token string) (string, error)
}
