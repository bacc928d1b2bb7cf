package feed

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ErrRollbackInFlight is returned by TryDo when a rollback for the same
// action id is already outstanding.
var ErrRollbackInFlight = errors.New("rollback already in flight for action")

// RollbackRegistry is the session-scoped single-flight guard for rollback
// requests, keyed by action id. It is shared by every mounted view, so two
// views showing the same action agree on its in-flight state and can never
// issue a duplicate rollback for it.
//
// The zero value is not usable; create one with NewRollbackRegistry and pass
// it to each view.
type RollbackRegistry struct {
	group singleflight.Group

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewRollbackRegistry creates an empty registry.
func NewRollbackRegistry() *RollbackRegistry {
	return &RollbackRegistry{inflight: make(map[string]struct{})}
}

// TryDo runs fn for the given action id unless a rollback for that id is
// already in flight, in which case it returns ErrRollbackInFlight without
// issuing anything. This is the UI entry point: the caller disables the
// affordance on ErrRollbackInFlight and re-enables it when the id clears.
func (r *RollbackRegistry) TryDo(ctx context.Context, actionID string, fn func(context.Context) error) error {
	if r.InFlight(actionID) {
		return ErrRollbackInFlight
	}
	return r.Do(ctx, actionID, fn)
}

// Do runs fn for the given action id, collapsing concurrent calls for the
// same id into a single execution whose result all callers share. The id is
// marked in flight for the duration and released on completion regardless of
// outcome; failure leaves no registry state behind, so the action can be
// retried immediately.
func (r *RollbackRegistry) Do(ctx context.Context, actionID string, fn func(context.Context) error) error {
	_, err, _ := r.group.Do(actionID, func() (any, error) {
		r.mark(actionID)
		defer r.release(actionID)
		return nil, fn(ctx)
	})
	return err
}

// InFlight reports whether a rollback for the given action id is
// outstanding.
func (r *RollbackRegistry) InFlight(actionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, busy := r.inflight[actionID]
	return busy
}

// Active returns any currently in-flight action id, for status display.
// The empty string means the registry is idle.
func (r *RollbackRegistry) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range r.inflight {
		return id
	}
	return ""
}

func (r *RollbackRegistry) mark(actionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inflight[actionID] = struct{}{}
}

func (r *RollbackRegistry) release(actionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, actionID)
}
