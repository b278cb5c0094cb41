package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultDedupTTL = 10 * time.Minute

// SubmissionDedup remembers accepted parcel request drafts per owner.
// Key format: dedup:request:<owner_id>:<fingerprint>
type SubmissionDedup struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSubmissionDedup wraps client. A non-positive ttl falls back to ten minutes.
func NewSubmissionDedup(client *redis.Client, ttl time.Duration) *SubmissionDedup {
	if ttl <= 0 {
		ttl = defaultDedupTTL
	}
	return &SubmissionDedup{client: client, ttl: ttl}
}

// Seen reports whether the same draft was accepted for ownerID within the TTL.
func (d *SubmissionDedup) Seen(ctx context.Context, ownerID, fingerprint string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(ownerID, fingerprint)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records an accepted draft (expires after the TTL).
func (d *SubmissionDedup) Mark(ctx context.Context, ownerID, fingerprint string) error {
	return d.client.Set(ctx, d.key(ownerID, fingerprint), "1", d.ttl).Err()
}

func (d *SubmissionDedup) key(ownerID, fingerprint string) string {
	return fmt.Sprintf("dedup:request:%s:%s", ownerID, fingerprint)
}
