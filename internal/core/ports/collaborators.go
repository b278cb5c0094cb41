package ports

import (
	"context"

	"github.com/99minutos/parcel-portal/internal/core/domain"
)

// ParcelRequestSubmitter persists a finished draft for the request form.
type ParcelRequestSubmitter interface {
	SubmitParcelRequest(ctx context.Context, draft domain.ParcelRequestDraft) (bool, error)
}

// Authenticator checks credentials for the sign-in page.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*domain.User, error)
}

// VerificationResender sends the verification e-mail again.
type VerificationResender interface {
	ResendVerificationEmail(ctx context.Context, email string) error
}

// Navigator moves the browser to another page.
type Navigator interface {
	Navigate(path string)
}

// Outbox queues outgoing e-mail.
type Outbox interface {
	Enqueue(msg domain.Email) error
}
