// Package notify delivers transient user notifications (toasts).
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Severity string

const (
	SeverityDefault     Severity = "default"
	SeverityDestructive Severity = "destructive"
)

type Toast struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Severity    Severity  `json:"severity"`
	CreatedAt   time.Time `json:"created_at"`
}

// Notifier shows a toast. Delivery is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, t Toast)
}

// DefaultInboxSize bounds the number of undelivered toasts per session.
const DefaultInboxSize = 20

// Inbox buffers toasts until the client drains them. When full, the oldest
// toast is dropped.
type Inbox struct {
	mu     sync.Mutex
	toasts []Toast
	size   int
}

func NewInbox(size int) *Inbox {
	if size <= 0 {
		size = DefaultInboxSize
	}
	return &Inbox{size: size}
}

func (i *Inbox) Notify(_ context.Context, t Toast) {
	if t.Severity == "" {
		t.Severity = SeverityDefault
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	if len(i.toasts) == i.size {
		i.toasts = i.toasts[1:]
	}
	i.toasts = append(i.toasts, t)
}

// Drain returns the pending toasts oldest first and empties the inbox.
func (i *Inbox) Drain() []Toast {
	i.mu.Lock()
	defer i.mu.Unlock()

	out := i.toasts
	i.toasts = nil
	if out == nil {
		out = []Toast{}
	}
	return out
}

func (i *Inbox) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.toasts)
}

// LogNotifier writes toasts to a logger.
type LogNotifier struct {
	Logger *slog.Logger
}

func (l LogNotifier) Notify(ctx context.Context, t Toast) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	if t.Severity == SeverityDestructive {
		level = slog.LevelWarn
	}
	logger.Log(ctx, level, "toast", "title", t.Title, "description", t.Description, "severity", string(t.Severity))
}

// Multi fans a toast out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, t Toast) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, t)
		}
	}
}

type ctxKey struct{}

// WithNotifier scopes n into ctx, typically the inbox of the current session.
func WithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, ctxKey{}, n)
}

// FromContext returns the notifier scoped into ctx, or one that drops
// every toast.
func FromContext(ctx context.Context) Notifier {
	if n, ok := ctx.Value(ctxKey{}).(Notifier); ok && n != nil {
		return n
	}
	return Multi(nil)
}
