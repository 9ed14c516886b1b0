package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// reuseFlagTTL matches the longest refresh-token lifetime; after that the
// database record has expired anyway.
const reuseFlagTTL = 7 * 24 * time.Hour

// ReuseGuard remembers the hashes of rotated-out refresh tokens so a
// replayed token is caught even before the database lookup. It is a fast
// path only; the revoked flag in the database remains the source of truth.
type ReuseGuard struct {
	client *goredis.Client
}

func NewReuseGuard(client *goredis.Client) *ReuseGuard {
	return &ReuseGuard{client: client}
}

// MarkRotated flags a token hash as rotated out.
func (g *ReuseGuard) MarkRotated(ctx context.Context, tokenHash string) error {
	if g == nil || g.client == nil {
		return nil
	}
	return g.client.Set(ctx, reuseKey(tokenHash), "1", reuseFlagTTL).Err()
}

// SeenRotated reports whether the token hash was rotated out earlier.
func (g *ReuseGuard) SeenRotated(ctx context.Context, tokenHash string) (bool, error) {
	if g == nil || g.client == nil {
		return false, nil
	}

	n, err := g.client.Exists(ctx, reuseKey(tokenHash)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rotated token: %w", err)
	}
	return n > 0, nil
}

func reuseKey(tokenHash string) string {
	return "rotated_token:" + tokenHash
}
