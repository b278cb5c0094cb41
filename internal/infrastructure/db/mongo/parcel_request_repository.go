package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/parcel-portal/internal/core/domain"
)

const collectionParcelRequests = "parcel_requests"

type ParcelRequestRepository struct {
	col *mongo.Collection
}

func NewParcelRequestRepository(db *mongo.Database) *ParcelRequestRepository {
	return &ParcelRequestRepository{col: db.Collection(collectionParcelRequests)}
}

// Create inserts a new parcel request document.
func (r *ParcelRequestRepository) Create(ctx context.Context, req *domain.ParcelRequest) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, req)
	return err
}

// FindByReference retrieves one request. When ownerID is non-empty the
// query is additionally filtered by owner.
func (r *ParcelRequestRepository) FindByReference(ctx context.Context, reference, ownerID string) (*domain.ParcelRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"reference": reference}
	if ownerID != "" {
		filter["owner_id"] = ownerID
	}

	var req domain.ParcelRequest
	if err := r.col.FindOne(ctx, filter).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrParcelRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

// ListByOwner returns the newest requests of ownerID first.
func (r *ParcelRequestRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*domain.ParcelRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*domain.ParcelRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureIndexes creates necessary indexes on the parcel_requests collection.
func (r *ParcelRequestRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "reference", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
