package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// WriteTimeout bounds a write made through WriteContext.
const WriteTimeout = 5 * time.Second

// Common errors returned by the bridge
var (
	ErrNotFound = errors.New("key not found")
	ErrCorrupt  = errors.New("stored value is corrupt")
)

// Bridge is the persistent key/value store behind the session state.
// Implementations must treat Remove of an absent key as success.
type Bridge interface {
	// Get returns the raw value stored under key or ErrNotFound
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the value stored under key
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key
	Remove(ctx context.Context, key string) error
}

// WriteContext returns a context for mirroring state that has already
// changed in memory. It keeps the values of ctx but not its cancellation,
// so an aborted request still leaves the bridge in step.
func WriteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), WriteTimeout)
}

// GetJSON reads key and decodes it into T. The boolean reports whether the
// key was present. Undecodable data is reported as ErrCorrupt.
func GetJSON[T any](ctx context.Context, b Bridge, key string) (T, bool, error) {
	var zero T

	data, err := b.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("get %q: %w", key, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, true, fmt.Errorf("decode %q: %w: %v", key, ErrCorrupt, err)
	}
	return v, true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, b Bridge, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := b.Set(ctx, key, data); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

type scoped struct {
	prefix string
	next   Bridge
}

// Scoped returns a view of b where every key lives under the given
// namespace, so that fixed keys like "cart" stay private to one session.
func Scoped(b Bridge, namespace string) Bridge {
	return scoped{prefix: ScopedKey(namespace, ""), next: b}
}

// ScopedKey is the physical key used by Scoped for namespace and key.
func ScopedKey(namespace, key string) string {
	return fmt.Sprintf("session:%s:%s", namespace, key)
}

func (s scoped) Get(ctx context.Context, key string) ([]byte, error) {
	return s.next.Get(ctx, s.prefix+key)
}

func (s scoped) Set(ctx context.Context, key string, value []byte) error {
	return s.next.Set(ctx, s.prefix+key, value)
}

func (s scoped) Remove(ctx context.Context, key string) error {
	return s.next.Remove(ctx, s.prefix+key)
}
