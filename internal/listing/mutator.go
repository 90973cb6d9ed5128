package listing

import (
	"context"
	"errors"
	"fmt"
)

// ErrStale reports that a write went through but the refetch after it
// failed, so the list may not show the change yet
var ErrStale = errors.New("list refresh failed")

// Mutation is one create, update or delete against the remote source
type Mutation[T any] struct {
	// Name identifies the action in logs, e.g. "delete site"
	Name string

	// Input, when set, is checked with Validate before anything is sent
	Input any

	// Check runs extra caller-side rules after Input validates
	Check func() error

	// Do performs the remote call. After it succeeds the list is refetched.
	Do func(ctx context.Context) error

	// Apply, used instead of Do, returns the server's copy of a single item,
	// which is patched into the list in place of a refetch.
	Apply func(ctx context.Context) (T, error)
}

// Mutate validates m, runs it, and resynchronizes the list. A validation
// failure returns before any request is made and leaves every collection
// untouched; so does a remote failure. If only the refetch fails the error
// matches ErrStale.
func (c *Controller[T]) Mutate(ctx context.Context, m Mutation[T]) error {
	logger := c.logger.With("action", m.Name)

	if m.Input != nil {
		if err := Validate(m.Input); err != nil {
			logger.Debug("mutation rejected locally", "error", err)
			return err
		}
	}
	if m.Check != nil {
		if err := m.Check(); err != nil {
			logger.Debug("mutation rejected locally", "error", err)
			return err
		}
	}

	if m.Apply != nil {
		item, err := m.Apply(ctx)
		if err != nil {
			logger.Error("mutation failed", "error", err)
			return err
		}
		if !c.Patch(item) {
			return c.resync(ctx, m.Name)
		}
		logger.Info("mutation applied", "id", item.GetID())
		return nil
	}

	if m.Do == nil {
		return fmt.Errorf("mutation %q has nothing to run", m.Name)
	}
	if err := m.Do(ctx); err != nil {
		logger.Error("mutation failed", "error", err)
		return err
	}
	logger.Info("mutation succeeded")
	return c.resync(ctx, m.Name)
}

func (c *Controller[T]) resync(ctx context.Context, name string) error {
	if err := c.Fetch(ctx); err != nil {
		return fmt.Errorf("%s succeeded but %w: %w", name, ErrStale, err)
	}
	return nil
}
