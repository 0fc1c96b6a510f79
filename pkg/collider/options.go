package collider

import (
	"time"

	"github.com/jlrickert/md5coll/pkg/oracle"
)

const (
	// DefaultPad is the fill byte used when none is configured.
	DefaultPad byte = 0x00

	// DefaultRetryBudget bounds the oracle calls made for one divergence.
	DefaultRetryBudget = 64
)

type options struct {
	initial []byte
	pad     byte
	filter  Filter
	oracle  oracle.Oracle
	retries int
	timeout time.Duration
	verify  bool
}

// Option configures a Collider.
type Option func(*options)

// WithInitial seeds the first segment with data.
func WithInitial(data []byte) Option {
	return func(o *options) { o.initial = append(o.initial, data...) }
}

// WithInitialString seeds the first segment with the UTF-8 bytes of s.
func WithInitialString(s string) Option {
	return func(o *options) { o.initial = append(o.initial, s...) }
}

// WithPad sets the default fill byte for padding.
func WithPad(b byte) Option {
	return func(o *options) { o.pad = b }
}

// WithFilter sets the default block filter.
func WithFilter(f Filter) Option {
	return func(o *options) { o.filter = f }
}

// WithOracle sets the collision search used by Diverge.
func WithOracle(or oracle.Oracle) Option {
	return func(o *options) { o.oracle = or }
}

// WithRetryBudget bounds the oracle calls per divergence. Values below one
// select DefaultRetryBudget.
func WithRetryBudget(n int) Option {
	return func(o *options) { o.retries = n }
}

// WithTimeout bounds the wall-clock time of one divergence. Zero disables the
// limit; the caller's context still applies.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithVerify checks every oracle answer with oracle.Verify before recording
// it. A failing pair aborts the divergence.
func WithVerify(v bool) Option {
	return func(o *options) { o.verify = v }
}

type divergeOptions struct {
	pad    byte
	filter Filter
}

// DivergeOption overrides collider defaults for a single divergence.
type DivergeOption func(*divergeOptions)

// WithDivergePad overrides the fill byte used if padding is needed.
func WithDivergePad(b byte) DivergeOption {
	return func(o *divergeOptions) { o.pad = b }
}

// WithDivergeFilter overrides the block filter for one divergence.
func WithDivergeFilter(f Filter) DivergeOption {
	return func(o *divergeOptions) { o.filter = f }
}
