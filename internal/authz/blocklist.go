package authz

import (
	"context"
	"time"

	"hushwall/internal/identity"
	"hushwall/internal/models"
	"hushwall/internal/observability"
)

// BlockStore is the slice of the blocklist repository the engine needs.
type BlockStore interface {
	ActiveExists(ctx context.Context, sessionID uint, accountID *uint, now time.Time) (bool, error)
}

// Engine is the blocklist gate. Every non-safe request passes through
// IsBlocked before the capability matrix is consulted.
type Engine struct {
	store BlockStore
	now   func() time.Time
}

// NewEngine creates a blocklist engine over the given store.
func NewEngine(store BlockStore) *Engine {
	return &Engine{store: store, now: time.Now}
}

// IsBlocked reports whether an active ban targets the caller's session or,
// when authenticated, the caller's account. A ban is active when its expiry
// is nil or in the future.
func (e *Engine) IsBlocked(ctx context.Context, id identity.Identity) (bool, error) {
	return e.store.ActiveExists(ctx, id.SessionID(), id.AccountID(), e.now())
}

// Authorize is the single permission entrypoint services call: safe actions
// skip the blocklist gate, everything else is default-deny for blocked
// callers, then the capability matrix decides. Denials give no hint about
// which gate refused.
func (e *Engine) Authorize(ctx context.Context, id identity.Identity, res Resource, act Action, obj Object) error {
	if !act.Safe() {
		blocked, err := e.IsBlocked(ctx, id)
		if err != nil {
			return err
		}
		if blocked {
			observability.PermissionDenials.WithLabelValues(res.String(), act.String()).Inc()
			return models.NewForbiddenError()
		}
	}
	if !Allowed(id.Role(), res, act, obj) {
		observability.PermissionDenials.WithLabelValues(res.String(), act.String()).Inc()
		return models.NewForbiddenError()
	}
	return nil
}
