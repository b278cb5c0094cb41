package ports

import (
	"context"

	"github.com/99minutos/parcel-portal/internal/core/domain"
)

// UserRepository defines persistence for portal accounts.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// MarkEmailVerified flips the verified flag for the account owning email.
	MarkEmailVerified(ctx context.Context, email string) error
}

// AttemptLimiter counts failed sign-in attempts per e-mail inside a window.
type AttemptLimiter interface {
	Blocked(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

// VerificationTokenStore keeps one-shot e-mail verification tokens.
type VerificationTokenStore interface {
	Save(ctx context.Context, token, email string) error
	// Consume returns the e-mail bound to token and deletes it.
	Consume(ctx context.Context, token string) (string, error)
}
