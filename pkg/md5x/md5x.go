// Package md5x is an MD5 implementation that exposes its internals. Besides
// the usual digest it reports the raw chaining value after every whole block
// consumed, which is the input collision searches start from.
//
// It is deliberately unoptimized; use crypto/md5 for bulk hashing.
package md5x

import (
	"encoding/binary"
	"encoding/hex"
	"hash"
)

// Digest is an incremental MD5 hasher. The zero value is not ready for use;
// call New or NewFrom.
type Digest struct {
	cv  ChainingValue
	buf [BlockSize]byte
	nx  int
	len uint64
}

// New returns a Digest starting from the standard initial value.
func New() *Digest {
	d := new(Digest)
	d.Reset()
	return d
}

// NewFrom returns a Digest that resumes from cv as if consumed bytes had
// already been written. consumed must be a multiple of BlockSize so that no
// buffered bytes are implied.
func NewFrom(cv ChainingValue, consumed uint64) *Digest {
	if consumed%BlockSize != 0 {
		panic("md5x: resume length must be block aligned")
	}
	return &Digest{cv: cv, len: consumed}
}

// Reset restores the standard initial value and discards buffered input.
func (d *Digest) Reset() {
	d.cv = IV
	d.nx = 0
	d.len = 0
}

func (d *Digest) Size() int { return Size }

func (d *Digest) BlockSize() int { return BlockSize }

// Write compresses every complete block and buffers the remainder. It never
// returns an error.
func (d *Digest) Write(p []byte) (int, error) {
	n := len(p)
	d.len += uint64(n)
	if d.nx > 0 {
		c := copy(d.buf[d.nx:], p)
		d.nx += c
		if d.nx == BlockSize {
			d.cv = Compress(d.cv, d.buf[:])
			d.nx = 0
		}
		p = p[c:]
	}
	for len(p) >= BlockSize {
		d.cv = Compress(d.cv, p[:BlockSize])
		p = p[BlockSize:]
	}
	if len(p) > 0 {
		d.nx = copy(d.buf[:], p)
	}
	return n, nil
}

// Update is Write without the return values.
func (d *Digest) Update(p []byte) {
	_, _ = d.Write(p)
}

// Sum appends the current digest to in without changing the hasher state.
func (d *Digest) Sum(in []byte) []byte {
	sum := d.Digest()
	return append(in, sum[:]...)
}

// Digest returns the MD5 of everything written so far. It works on a copy so
// further writes continue as if it had never been called.
func (d *Digest) Digest() [Size]byte {
	tmp := *d

	// 0x80 marker, zero fill to 56 mod 64, then the bit length.
	var pad [1 + 63 + 8]byte
	pad[0] = 0x80
	zeros := (55 - d.len) % BlockSize
	binary.LittleEndian.PutUint64(pad[1+zeros:], d.len<<3)
	tmp.Update(pad[:1+zeros+8])

	if tmp.nx != 0 {
		panic("md5x: padding left a partial block")
	}
	return tmp.cv.Bytes()
}

// HexDigest is the lowercase hex form of Digest.
func (d *Digest) HexDigest() string {
	sum := d.Digest()
	return hex.EncodeToString(sum[:])
}

// ChainingValue returns the raw state after the last complete block. Buffered
// bytes of a partial block are not reflected.
func (d *Digest) ChainingValue() ChainingValue { return d.cv }

// IHV returns ChainingValue serialized the same way as a digest.
func (d *Digest) IHV() [Size]byte { return d.cv.Bytes() }

// HexIHV is the lowercase hex form of IHV.
func (d *Digest) HexIHV() string { return d.cv.Hex() }

// Len is the total number of bytes written.
func (d *Digest) Len() uint64 { return d.len }

// Buffered is the number of bytes waiting for a complete block.
func (d *Digest) Buffered() int { return d.nx }

// Sum returns the MD5 digest of data.
func Sum(data []byte) [Size]byte {
	d := New()
	d.Update(data)
	return d.Digest()
}

// HexSum is the lowercase hex form of Sum.
func HexSum(data []byte) string {
	sum := Sum(data)
	return hex.EncodeToString(sum[:])
}

var _ hash.Hash = (*Digest)(nil)
