// Package notify is the channel for short user-facing messages (the
// converter's "toasts"): invalid input, offline rates and the like.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Severity mirrors toast variants.
type Severity string

const (
	SeverityInfo        Severity = "info"
	SeverityDestructive Severity = "destructive"
)

// Notice is a single user-visible message.
type Notice struct {
	Title    string    `json:"title"`
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
	RaisedAt time.Time `json:"raised_at"`
}

// Notifier delivers notices to whoever is rendering the converter.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Func adapts a plain function to Notifier.
type Func func(ctx context.Context, n Notice)

// Notify implements Notifier.
func (f Func) Notify(ctx context.Context, n Notice) {
	f(ctx, n)
}

// Discard drops every notice.
var Discard Notifier = Func(func(context.Context, Notice) {})

// Recorder buffers notices until they are drained.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{notices: make([]Notice, 0)}
}

// Notify implements Notifier.
func (r *Recorder) Notify(_ context.Context, n Notice) {
	if n.RaisedAt.IsZero() {
		n.RaisedAt = time.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns the buffered notices without clearing them.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Drain returns the buffered notices and clears the buffer.
func (r *Recorder) Drain() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notices
	r.notices = make([]Notice, 0)
	return out
}

// LogNotifier writes notices to a structured logger.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a notifier that logs through logger.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With("component", "notify")}
}

// Notify implements Notifier.
func (l *LogNotifier) Notify(ctx context.Context, n Notice) {
	level := slog.LevelInfo
	if n.Severity == SeverityDestructive {
		level = slog.LevelWarn
	}
	l.logger.Log(ctx, level, n.Title, "message", n.Message, "severity", n.Severity)
}

// Multi fans a notice out to every notifier in order.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, n Notice) {
	for _, target := range m {
		if target != nil {
			target.Notify(ctx, n)
		}
	}
}

var (
	_ Notifier = (*Recorder)(nil)
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = Multi(nil)
	_ Notifier = Func(nil)
)
