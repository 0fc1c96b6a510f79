// Package log holds slog helpers shared by the md5coll packages: a no-op
// logger for library defaults and a capturing handler for tests.
package log

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/jlrickert/cli-toolkit/mylog"
)

// nopHandler discards everything.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (n nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return n }
func (n nopHandler) WithGroup(string) slog.Handler           { return n }

// NewNopLogger returns a logger that discards all log events.
func NewNopLogger() *slog.Logger {
	return slog.New(nopHandler{})
}

var _ slog.Handler = nopHandler{}

///////////////////////////////////////////////////////////////////////////////
// Test handler
///////////////////////////////////////////////////////////////////////////////

// LoggedEntry is one captured record with its attributes flattened. Group
// names prefix keys with a dot.
type LoggedEntry struct {
	Time  time.Time
	Level slog.Level
	Msg   string
	Attrs map[string]any
}

// Int returns the attribute key as an int64 when it holds an integer.
func (e LoggedEntry) Int(key string) (int64, bool) {
	switch v := e.Attrs[key].(type) {
	case int64:
		return v, true
	case uint64:
		return int64(v), true
	default:
		return 0, false
	}
}

// testingT is the subset of *testing.T the handler uses.
type testingT interface {
	Logf(format string, args ...any)
}

type sink struct {
	mu      sync.Mutex
	entries []LoggedEntry
}

// TestHandler captures structured entries for assertions. Handlers derived
// through WithAttrs and WithGroup share the capture buffer.
type TestHandler struct {
	sink   *sink
	level  slog.Level
	attrs  []slog.Attr
	prefix string
	T      testingT
}

func NewTestHandler(t testingT, level slog.Level) *TestHandler {
	return &TestHandler{sink: &sink{}, level: level, T: t}
}

func (h *TestHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= h.level }

func (h *TestHandler) Handle(_ context.Context, r slog.Record) error {
	e := LoggedEntry{
		Time:  r.Time,
		Level: r.Level,
		Msg:   r.Message,
		Attrs: map[string]any{},
	}
	for _, a := range h.attrs {
		flatten(e.Attrs, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		flatten(e.Attrs, h.prefix, a)
		return true
	})

	h.sink.mu.Lock()
	h.sink.entries = append(h.sink.entries, e)
	h.sink.mu.Unlock()

	if h.T != nil {
		h.T.Logf("LOG %v %s %v", e.Level, e.Msg, e.Attrs)
	}
	return nil
}

func flatten(dst map[string]any, prefix string, a slog.Attr) {
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, g := range v.Group() {
			flatten(dst, p, g)
		}
		return
	}
	dst[prefix+a.Key] = v.Any()
}

func (h *TestHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = slices.Clone(h.attrs)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		c.attrs = append(c.attrs, a)
	}
	return &c
}

func (h *TestHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

// Entries returns a copy of everything captured so far.
func (h *TestHandler) Entries() []LoggedEntry {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	return slices.Clone(h.sink.entries)
}

// NewTestLogger returns a logger writing to a fresh TestHandler.
func NewTestLogger(t testingT, level slog.Level) (*slog.Logger, *TestHandler) {
	th := NewTestHandler(t, level)
	return slog.New(th), th
}

// TestContext returns ctx carrying a capturing logger, installed the same way
// the command layer installs its logger.
func TestContext(ctx context.Context, t testingT) (context.Context, *TestHandler) {
	lg, th := NewTestLogger(t, slog.LevelDebug)
	return mylog.WithLogger(ctx, lg), th
}

var _ slog.Handler = (*TestHandler)(nil)

///////////////////////////////////////////////////////////////////////////////
// Small helpers for tests
///////////////////////////////////////////////////////////////////////////////

// FindEntries copies entries that match pred.
func FindEntries(th *TestHandler, pred func(LoggedEntry) bool) []LoggedEntry {
	out := make([]LoggedEntry, 0)
	for _, e := range th.Entries() {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}

// WithMsg matches entries by message.
func WithMsg(msg string) func(LoggedEntry) bool {
	return func(e LoggedEntry) bool { return e.Msg == msg }
}

// RequireEntry fails the test unless an entry matching pred was captured.
func RequireEntry(t *testing.T, th *TestHandler, pred func(LoggedEntry) bool) LoggedEntry {
	t.Helper()
	found := FindEntries(th, pred)
	if len(found) == 0 {
		t.Fatalf("required log entry not found; captured %d entries: %#v", len(th.Entries()), th.Entries())
	}
	return found[0]
}
