package stripe

import (
	"context"
	"fmt"
	"time"

	"github.com/shubhavasar/storefront-backend/pkg/logger"
	"github.com/shubhavasar/storefront-backend/pkg/redis"
)

const idempotencyScope = "stripe-event"

// EventGuard is the fast-path duplicate filter in front of the database. It
// fails open: when redis is unavailable the event proceeds and the unique
// session index decides.
type EventGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	logg  *logger.Logger
}

func NewEventGuard(store redis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) *EventGuard {
	return &EventGuard{store: store, ttl: ttl, logg: logg}
}

// FirstDelivery claims the event id. False means the id was already seen.
func (g *EventGuard) FirstDelivery(ctx context.Context, eventID string) bool {
	if g == nil || g.store == nil || eventID == "" {
		return true
	}
	claimed, err := g.store.SetNX(ctx, g.store.IdempotencyKey(idempotencyScope, eventID), "1", g.ttl)
	if err != nil {
		if g.logg != nil {
			g.logg.Warn(ctx, fmt.Sprintf("idempotency check failed, processing anyway: %v", err))
		}
		return true
	}
	return claimed
}

// Release frees a claimed event id so the processor's retry can be handled
// after a dead-lettered failure.
func (g *EventGuard) Release(ctx context.Context, eventID string) {
	if g == nil || g.store == nil || eventID == "" {
		return
	}
	if err := g.store.Del(ctx, g.store.IdempotencyKey(idempotencyScope, eventID)); err != nil && g.logg != nil {
		g.logg.Warn(ctx, fmt.Sprintf("releasing idempotency key failed: %v", err))
	}
}
