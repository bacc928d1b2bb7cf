package feed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRollbackRegistry(t *testing.T) {
	t.Run("TryDo rejects while same id in flight", func(t *testing.T) {
		r := NewRollbackRegistry()

		started := make(chan struct{})
		release := make(chan struct{})
		done := make(chan error, 1)

		go func() {
			done <- r.TryDo(context.Background(), "act-1", func(context.Context) error {
				close(started)
				<-release
				return nil
			})
		}()

		<-started
		err := r.TryDo(context.Background(), "act-1", func(context.Context) error {
			t.Error("second fn must not run while first is in flight")
			return nil
		})
		if !errors.Is(err, ErrRollbackInFlight) {
			t.Errorf("err = %v, want ErrRollbackInFlight", err)
		}

		close(release)
		if err := <-done; err != nil {
			t.Errorf("first TryDo = %v, want nil", err)
		}
	})

	t.Run("different ids do not block each other", func(t *testing.T) {
		r := NewRollbackRegistry()

		started := make(chan struct{})
		release := make(chan struct{})
		go func() {
			_ = r.TryDo(context.Background(), "act-1", func(context.Context) error {
				close(started)
				<-release
				return nil
			})
		}()
		<-started
		defer close(release)

		var ran bool
		if err := r.TryDo(context.Background(), "act-2", func(context.Context) error {
			ran = true
			return nil
		}); err != nil {
			t.Fatalf("TryDo(act-2) = %v", err)
		}
		if !ran {
			t.Error("act-2 fn should have run")
		}
	})

	t.Run("id released after failure for retry", func(t *testing.T) {
		r := NewRollbackRegistry()
		boom := errors.New("backend rejected")

		err := r.TryDo(context.Background(), "act-1", func(context.Context) error { return boom })
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v, want wrapped boom", err)
		}
		if r.InFlight("act-1") {
			t.Fatal("id must be released after failure")
		}

		// Retry succeeds.
		if err := r.TryDo(context.Background(), "act-1", func(context.Context) error { return nil }); err != nil {
			t.Errorf("retry = %v, want nil", err)
		}
	})

	t.Run("concurrent Do calls collapse to one execution", func(t *testing.T) {
		r := NewRollbackRegistry()

		var calls atomic.Int32
		started := make(chan struct{})
		gate := make(chan struct{})

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Do(context.Background(), "act-1", func(context.Context) error {
				calls.Add(1)
				close(started)
				<-gate
				return nil
			})
		}()

		// Join four more callers while the first execution is blocked.
		<-started
		for range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = r.Do(context.Background(), "act-1", func(context.Context) error {
					calls.Add(1)
					return nil
				})
			}()
		}
		// Give the joiners time to reach the in-flight key before release.
		time.Sleep(50 * time.Millisecond)
		close(gate)
		wg.Wait()

		if got := calls.Load(); got > 1 {
			t.Errorf("fn executed %d times for overlapping calls, want 1", got)
		}
	})

	t.Run("Active reports in-flight id", func(t *testing.T) {
		r := NewRollbackRegistry()
		if got := r.Active(); got != "" {
			t.Errorf("Active = %q, want empty when idle", got)
		}

		started := make(chan struct{})
		release := make(chan struct{})
		go func() {
			_ = r.Do(context.Background(), "act-9", func(context.Context) error {
				close(started)
				<-release
				return nil
			})
		}()
		<-started
		if got := r.Active(); got != "act-9" {
			t.Errorf("Active = %q, want act-9", got)
		}
		close(release)
	})
}
