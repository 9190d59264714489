package mercadopagowebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cabanadebrincar/cabana-backend/pkg/redis"
)

// IdempotencyGuard drops concurrent duplicate pokes for the same payment id.
// The unique index on pagamentos_orcamento stays the source of truth.
type IdempotencyGuard struct {
	store redis.GuardStore
	ttl   time.Duration
	scope string
}

func NewIdempotencyGuard(store redis.GuardStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &IdempotencyGuard{
		store: store,
		ttl:   ttl,
		scope: scope,
	}, nil
}

// CheckAndMark reports whether the payment id was already marked, marking it otherwise.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, paymentID string) (bool, error) {
	if paymentID == "" {
		return false, errors.New("payment id is required")
	}
	key := g.store.GuardKey(g.scope, paymentID)
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

func (g *IdempotencyGuard) Delete(ctx context.Context, paymentID string) error {
	if paymentID == "" {
		return errors.New("payment id is required")
	}
	return g.store.Del(ctx, g.store.GuardKey(g.scope, paymentID))
}
