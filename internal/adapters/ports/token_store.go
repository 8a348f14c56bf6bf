package ports

import (
	"context"

	"github.com/kevin07696/vanco-gateway/internal/domain"
)

// TokenStore persists the current gateway session token across calls and processes.
// Implementations:
//   - file: single JSON record, atomic rename on write (default)
//   - redis: shared key, useful when several hosts share one gateway login
//   - postgres: upserted row
//
// Validity is always re-derived from the persisted ObtainedAt and the store's TTL.
type TokenStore interface {
	// Get returns the cached token if present and within TTL.
	// Unreadable or corrupt storage is reported as a miss, never as an error.
	Get(ctx context.Context) (*domain.SessionToken, bool)

	// Put stores value with ObtainedAt set to the store's current time, replacing any prior token.
	Put(ctx context.Context, value string) (*domain.SessionToken, error)
}
