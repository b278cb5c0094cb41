package ports

import (
	"context"

	"github.com/99minutos/parcel-portal/internal/core/domain"
)

// ParcelRequestRepository defines persistence for accepted parcel requests.
type ParcelRequestRepository interface {
	Create(ctx context.Context, r *domain.ParcelRequest) error
	FindByReference(ctx context.Context, reference, ownerID string) (*domain.ParcelRequest, error)
	// ListByOwner returns the newest requests first, at most limit of them.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.ParcelRequest, error)
}

// SubmissionDedup remembers recently accepted drafts so that a double post of
// the same form is rejected.
type SubmissionDedup interface {
	Seen(ctx context.Context, ownerID, fingerprint string) (bool, error)
	Mark(ctx context.Context, ownerID, fingerprint string) error
}
