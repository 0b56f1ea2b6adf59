package cart

import (
	"context"
	"encoding/json"
	"time"

	pkgerrors "github.com/shubhavasar/storefront-backend/pkg/errors"
	"github.com/shubhavasar/storefront-backend/pkg/redis"
	"github.com/shubhavasar/storefront-backend/pkg/types"
)

const snapshotTTL = 14 * 24 * time.Hour

// Store is the cache surface the cart needs (pkg/redis satisfies it).
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionID string) string
}

// Service keeps one cart snapshot per storefront session in redis. Every
// mutation loads the snapshot, applies one change and writes it back; the
// JSON snapshot is the only serialization boundary.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Snapshot is the stored cart state.
type Snapshot struct {
	Lines     []types.CartLine `json:"lines"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// Get loads the cart for a session. Missing snapshots are an empty cart.
func (s *Service) Get(ctx context.Context, sessionID string) (*Snapshot, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session id is required")
	}
	raw, err := s.store.Get(ctx, s.store.CartKey(sessionID))
	if err != nil {
		if redis.IsNil(err) {
			return &Snapshot{Lines: []types.CartLine{}}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	if raw == "" {
		return &Snapshot{Lines: []types.CartLine{}}, nil
	}

	var snapshot Snapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decoding cart snapshot")
	}
	if snapshot.Lines == nil {
		snapshot.Lines = []types.CartLine{}
	}
	return &snapshot, nil
}

// Add puts a line in the cart. An existing line for the same variant
// (product, color, size) absorbs the quantity instead of duplicating.
func (s *Service) Add(ctx context.Context, sessionID string, line types.CartLine) (*Snapshot, error) {
	if line.Qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	return s.mutate(ctx, sessionID, func(lines []types.CartLine) ([]types.CartLine, error) {
		for i := range lines {
			if lines[i].SameVariant(line) {
				lines[i].Qty += line.Qty
				return lines, nil
			}
		}
		return append(lines, line), nil
	})
}

// UpdateQuantity sets the quantity of an existing variant line. Quantities
// below 1 are rejected; removal is explicit via Remove.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID string, variant types.CartLine, qty int) (*Snapshot, error) {
	if qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	return s.mutate(ctx, sessionID, func(lines []types.CartLine) ([]types.CartLine, error) {
		for i := range lines {
			if lines[i].SameVariant(variant) {
				lines[i].Qty = qty
				return lines, nil
			}
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	})
}

// Remove deletes a variant line from the cart. Absent lines are a no-op.
func (s *Service) Remove(ctx context.Context, sessionID string, variant types.CartLine) (*Snapshot, error) {
	return s.mutate(ctx, sessionID, func(lines []types.CartLine) ([]types.CartLine, error) {
		kept := lines[:0]
		for _, existing := range lines {
			if !existing.SameVariant(variant) {
				kept = append(kept, existing)
			}
		}
		return kept, nil
	})
}

// Clear drops the whole snapshot.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart session id is required")
	}
	if err := s.store.Del(ctx, s.store.CartKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart")
	}
	return nil
}

func (s *Service) mutate(ctx context.Context, sessionID string, apply func([]types.CartLine) ([]types.CartLine, error)) (*Snapshot, error) {
	snapshot, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	lines, err := apply(snapshot.Lines)
	if err != nil {
		return nil, err
	}

	snapshot.Lines = lines
	snapshot.UpdatedAt = time.Now().UTC()

	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart snapshot")
	}
	if err := s.store.Set(ctx, s.store.CartKey(sessionID), string(encoded), snapshotTTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
	}
	return snapshot, nil
}
