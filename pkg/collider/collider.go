// Package collider builds byte streams that keep one running MD5 state while
// recording divergence points: places where either of two 128-byte block
// sequences can be used without changing the hash of anything that follows.
//
// A Collider is an append-only timeline of literal segments and divergence
// pairs. Every divergence is searched from the chaining value the timeline
// has reached, so the construction is strictly sequential. A Collider is not
// safe for concurrent use.
package collider

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/jlrickert/md5coll/pkg/md5x"
	"github.com/jlrickert/md5coll/pkg/oracle"
	"golang.org/x/text/encoding"
)

// Collider tracks the running MD5 state of a stream built from literal
// segments and divergence pairs.
//
// segments always holds one more element than pairs; the last segment is the
// open one that Append extends. The digest follows branch 0 of every pair.
type Collider struct {
	segments [][]byte
	pairs    []oracle.Pair
	digest   *md5x.Digest
	opts     options
}

// New creates a Collider. Without WithOracle, Diverge reports
// oracle.ErrOracleUnavailable.
func New(opts ...Option) *Collider {
	o := options{pad: DefaultPad, filter: AllowAll, retries: DefaultRetryBudget}
	for _, opt := range opts {
		opt(&o)
	}
	if o.filter == nil {
		o.filter = AllowAll
	}
	if o.retries < 1 {
		o.retries = DefaultRetryBudget
	}

	c := &Collider{
		segments: [][]byte{nil},
		digest:   md5x.New(),
		opts:     o,
	}
	c.Append(o.initial)
	c.opts.initial = nil
	return c
}

// Append adds literal bytes to the open segment.
func (c *Collider) Append(data []byte) {
	if len(data) == 0 {
		return
	}
	last := len(c.segments) - 1
	c.segments[last] = append(c.segments[last], data...)
	c.digest.Update(data)
}

// AppendString adds the UTF-8 bytes of s.
func (c *Collider) AppendString(s string) {
	c.Append([]byte(s))
}

// AppendText encodes s with enc before appending it. A nil enc means UTF-8.
// When s cannot be encoded nothing is appended.
func (c *Collider) AppendText(s string, enc encoding.Encoding) error {
	if enc == nil {
		c.AppendString(s)
		return nil
	}
	b, err := enc.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return fmt.Errorf("encode text: %w", err)
	}
	c.Append(b)
	return nil
}

// PadToBlock pads with the default fill byte. See PadToBlockWith.
func (c *Collider) PadToBlock() int {
	return c.PadToBlockWith(c.opts.pad)
}

// PadToBlockWith appends fill until the length is a multiple of 64. It always
// adds between 1 and 64 bytes; an already aligned stream gets a whole block.
// It returns the number of bytes added.
func (c *Collider) PadToBlockWith(fill byte) int {
	need := PadLen(c.Len())
	c.Append(bytes.Repeat([]byte{fill}, need))
	return need
}

// PadLen is the number of bytes PadToBlock adds to a stream of length n.
func PadLen(n int) int {
	return md5x.BlockSize - n%md5x.BlockSize
}

// Diverge records a new divergence point, padding first when the stream is
// not block aligned. Padding stays in place even if the search fails.
func (c *Collider) Diverge(ctx context.Context, opts ...DivergeOption) (oracle.Pair, error) {
	o := c.divergeOptions(opts)
	if !c.Aligned() {
		c.PadToBlockWith(o.pad)
	}
	return c.diverge(ctx, o)
}

// SafeDiverge records a new divergence point but refuses to pad. It returns
// an *AlignmentError when the stream is not block aligned.
func (c *Collider) SafeDiverge(ctx context.Context, opts ...DivergeOption) (oracle.Pair, error) {
	if !c.Aligned() {
		return oracle.Pair{}, &AlignmentError{Len: c.Len()}
	}
	return c.diverge(ctx, c.divergeOptions(opts))
}

func (c *Collider) divergeOptions(opts []DivergeOption) divergeOptions {
	o := divergeOptions{pad: c.opts.pad, filter: c.opts.filter}
	for _, opt := range opts {
		opt(&o)
	}
	if o.filter == nil {
		o.filter = c.opts.filter
	}
	return o
}

func (c *Collider) diverge(ctx context.Context, o divergeOptions) (oracle.Pair, error) {
	lg := mylog.LoggerFromContext(ctx)
	if c.opts.oracle == nil {
		return oracle.Pair{}, oracle.NewUnavailableError("collider", fmt.Errorf("no oracle configured"))
	}

	if c.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.timeout)
		defer cancel()
	}

	cv := c.digest.ChainingValue()
	index := len(c.pairs)
	var lastErr error
	for attempt := 1; attempt <= c.opts.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return oracle.Pair{}, oracle.NewExhaustedError(attempt-1, err)
		}

		p, err := c.opts.oracle.Collide(ctx, cv)
		if err != nil {
			if oracle.IsUnavailable(err) {
				return oracle.Pair{}, err
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return oracle.Pair{}, oracle.NewExhaustedError(attempt, ctxErr)
			}
			lg.Warn("collision search failed", "divergence", index, "attempt", attempt, "err", err)
			lastErr = err
			continue
		}

		if c.opts.verify {
			if err := oracle.Verify(cv, p); err != nil {
				return oracle.Pair{}, err
			}
		}

		if !o.filter(p.B0[:]) || !o.filter(p.B1[:]) {
			lg.Debug("collision rejected by filter", "divergence", index, "attempt", attempt)
			lastErr = errFilterRejected
			continue
		}

		c.record(p)
		lg.Info("divergence recorded", "divergence", index, "attempts", attempt, "ihv", cv.Hex(), "len", c.Len())
		return p, nil
	}
	return oracle.Pair{}, oracle.NewExhaustedError(c.opts.retries, lastErr)
}

func (c *Collider) record(p oracle.Pair) {
	c.pairs = append(c.pairs, p)
	c.segments = append(c.segments, nil)
	c.digest.Update(p.B0[:])
}

// Filter is the default block filter divergences apply.
func (c *Collider) Filter() Filter { return c.opts.filter }

// LastDivergence returns the most recently recorded pair.
func (c *Collider) LastDivergence() (oracle.Pair, bool) {
	if len(c.pairs) == 0 {
		return oracle.Pair{}, false
	}
	return c.pairs[len(c.pairs)-1], true
}

// Divergences returns a copy of every recorded pair in order.
func (c *Collider) Divergences() []oracle.Pair {
	return append([]oracle.Pair(nil), c.pairs...)
}

// Len is the length of every output.
func (c *Collider) Len() int { return int(c.digest.Len()) }

// Aligned reports whether Len is a multiple of the block size.
func (c *Collider) Aligned() bool { return c.Len()%md5x.BlockSize == 0 }

// ChainingValue is the tracked chaining value after the last whole block.
func (c *Collider) ChainingValue() md5x.ChainingValue { return c.digest.ChainingValue() }

// Digest is the MD5 shared by every output, assuming the oracle kept its
// contract.
func (c *Collider) Digest() [md5x.Size]byte { return c.digest.Digest() }

// HexDigest is the lowercase hex form of Digest.
func (c *Collider) HexDigest() string { return c.digest.HexDigest() }
