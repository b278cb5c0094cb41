package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/99minutos/parcel-portal/internal/core/domain"
)

// VerificationTokens stores one-shot e-mail verification tokens.
// Key format: verify:<token> -> email
type VerificationTokens struct {
	client *redis.Client
	ttl    time.Duration
}

func NewVerificationTokens(client *redis.Client, ttl time.Duration) *VerificationTokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &VerificationTokens{client: client, ttl: ttl}
}

func (v *VerificationTokens) Save(ctx context.Context, token, email string) error {
	if err := v.client.Set(ctx, v.key(token), email, v.ttl).Err(); err != nil {
		return fmt.Errorf("save verification token: %w", err)
	}
	return nil
}

// Consume atomically reads and deletes token.
func (v *VerificationTokens) Consume(ctx context.Context, token string) (string, error) {
	email, err := v.client.GetDel(ctx, v.key(token)).Result()
	if err == redis.Nil {
		return "", domain.ErrInvalidToken
	}
	if err != nil {
		return "", fmt.Errorf("consume verification token: %w", err)
	}
	return email, nil
}

func (v *VerificationTokens) key(token string) string {
	return "verify:" + token
}
