package ports

import (
	"context"

	"github.com/99minutos/parcel-portal/internal/core/domain"
)

// ParcelRequestService accepts or rejects drafts on behalf of a user.
// A false result with a nil error is a business rejection.
type ParcelRequestService interface {
	Submit(ctx context.Context, ownerID string, draft domain.ParcelRequestDraft) (bool, error)
	ListRecent(ctx context.Context, ownerID string, limit int) ([]*domain.ParcelRequest, error)
	// Get returns one request. An empty ownerID looks across all owners.
	Get(ctx context.Context, ownerID, reference string) (*domain.ParcelRequest, error)
}
