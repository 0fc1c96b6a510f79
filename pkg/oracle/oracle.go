// Package oracle defines the boundary to an external collision search and
// ships a binding for the HashClash fastcoll tool.
//
// An Oracle receives the chaining value reached so far and returns two
// different 128-byte block sequences that compress to the same chaining value
// from it. The search itself is out of scope; this package only moves bytes
// across the boundary and can check the result.
package oracle

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jlrickert/md5coll/pkg/md5x"
)

// PairSize is the length of each collision candidate: two MD5 blocks.
const PairSize = 2 * md5x.BlockSize

// Pair is a pair of interchangeable block sequences. B0 is the branch the
// Collider tracks; B1 is its substitute.
type Pair struct {
	B0 [PairSize]byte
	B1 [PairSize]byte
}

// NewPair copies b0 and b1 into a Pair. Both must be PairSize bytes long.
func NewPair(b0, b1 []byte) (Pair, error) {
	var p Pair
	if len(b0) != PairSize || len(b1) != PairSize {
		return p, fmt.Errorf("oracle: collision blocks must be %d bytes, got %d and %d",
			PairSize, len(b0), len(b1))
	}
	copy(p.B0[:], b0)
	copy(p.B1[:], b1)
	return p, nil
}

// Branch returns B0 for i == 0 and B1 otherwise.
func (p Pair) Branch(i int) []byte {
	if i == 0 {
		return p.B0[:]
	}
	return p.B1[:]
}

// Contains reports whether either branch contains sub.
func (p Pair) Contains(sub []byte) bool {
	return bytes.Contains(p.B0[:], sub) || bytes.Contains(p.B1[:], sub)
}

// Oracle finds colliding block pairs. Implementations may block for a long
// time and should honor ctx cancellation.
type Oracle interface {
	Collide(ctx context.Context, cv md5x.ChainingValue) (Pair, error)
}

// Func adapts a plain function to the Oracle interface.
type Func func(ctx context.Context, cv md5x.ChainingValue) (Pair, error)

func (f Func) Collide(ctx context.Context, cv md5x.ChainingValue) (Pair, error) {
	return f(ctx, cv)
}

// Verify checks the oracle postcondition for p at cv: the branches differ and
// both reach the same chaining value.
func Verify(cv md5x.ChainingValue, p Pair) error {
	if p.B0 == p.B1 {
		return &ContractViolationError{ChainingValue: cv, Reason: "branches are identical"}
	}
	cv0 := md5x.CompressBlocks(cv, p.B0[:])
	cv1 := md5x.CompressBlocks(cv, p.B1[:])
	if cv0 != cv1 {
		return &ContractViolationError{
			ChainingValue: cv,
			Reason:        fmt.Sprintf("branches reach %s and %s", cv0, cv1),
		}
	}
	return nil
}

// Verified wraps o so every returned pair is checked with Verify.
func Verified(o Oracle) Oracle {
	return Func(func(ctx context.Context, cv md5x.ChainingValue) (Pair, error) {
		p, err := o.Collide(ctx, cv)
		if err != nil {
			return p, err
		}
		if err := Verify(cv, p); err != nil {
			return Pair{}, err
		}
		return p, nil
	})
}

var _ Oracle = Func(nil)
