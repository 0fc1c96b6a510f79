// Package payload builds ready-made collision families on top of the
// collider: a text multicollision, a self-checking good/evil Python script
// and good/evil variants of an existing binary with marker runs.
package payload

import (
	"errors"
	"fmt"

	"github.com/jlrickert/md5coll/pkg/collider"
	"github.com/jlrickert/md5coll/pkg/md5x"
)

var (
	// ErrMarkerNotFound indicates the input has no usable pair of marker runs.
	ErrMarkerNotFound = errors.New("payload: marker runs not found")

	// ErrTemplate indicates a malformed user template.
	ErrTemplate = errors.New("payload: invalid template")
)

// GoodEvil is a pair of same-length outputs with equal MD5 digests. Good
// takes branch 0 at the divergence; Evil takes branch 1.
type GoodEvil struct {
	Good   []byte
	Evil   []byte
	Digest string
}

func goodEvil(c *collider.Collider) (GoodEvil, error) {
	if c.Count() != 2 {
		return GoodEvil{}, fmt.Errorf("payload: expected one divergence, have %d outputs", c.Count())
	}
	good, err := c.Variant(0, collider.FirstIsMSB)
	if err != nil {
		return GoodEvil{}, err
	}
	evil, err := c.Variant(1, collider.FirstIsMSB)
	if err != nil {
		return GoodEvil{}, err
	}
	return GoodEvil{Good: good, Evil: evil, Digest: c.HexDigest()}, nil
}

// fillLen is the number of bytes that bring n up to a block boundary; zero
// when n is already aligned.
func fillLen(n int) int {
	return collider.PadLen(n) % md5x.BlockSize
}
