package md5x

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/bits"
)

const (
	// Size is the length of an MD5 digest and of a serialized chaining value.
	Size = 16

	// BlockSize is the MD5 compression unit in bytes.
	BlockSize = 64
)

// ChainingValue is the four-word internal MD5 state carried between block
// compressions. Word order is a, b, c, d as defined by RFC 1321.
type ChainingValue [4]uint32

// IV is the standard MD5 initial chaining value.
var IV = ChainingValue{0x67452301, 0xefcdab89, 0x98badcfe, 0x10325476}

// sine-derived additive constants, floor(abs(sin(i+1)) * 2^32).
var roundConstants = [64]uint32{
	0xd76aa478, 0xe8c7b756, 0x242070db, 0xc1bdceee,
	0xf57c0faf, 0x4787c62a, 0xa8304613, 0xfd469501,
	0x698098d8, 0x8b44f7af, 0xffff5bb1, 0x895cd7be,
	0x6b901122, 0xfd987193, 0xa679438e, 0x49b40821,
	0xf61e2562, 0xc040b340, 0x265e5a51, 0xe9b6c7aa,
	0xd62f105d, 0x02441453, 0xd8a1e681, 0xe7d3fbc8,
	0x21e1cde6, 0xc33707d6, 0xf4d50d87, 0x455a14ed,
	0xa9e3e905, 0xfcefa3f8, 0x676f02d9, 0x8d2a4c8a,
	0xfffa3942, 0x8771f681, 0x6d9d6122, 0xfde5380c,
	0xa4beea44, 0x4bdecfa9, 0xf6bb4b60, 0xbebfbc70,
	0x289b7ec6, 0xeaa127fa, 0xd4ef3085, 0x04881d05,
	0xd9d4d039, 0xe6db99e5, 0x1fa27cf8, 0xc4ac5665,
	0xf4292244, 0x432aff97, 0xab9423a7, 0xfc93a039,
	0x655b59c3, 0x8f0ccc92, 0xffeff47d, 0x85845dd1,
	0x6fa87e4f, 0xfe2ce6e0, 0xa3014314, 0x4e0811a1,
	0xf7537e82, 0xbd3af235, 0x2ad7d2bb, 0xeb86d391,
}

var rotations = [64]int{
	7, 12, 17, 22, 7, 12, 17, 22, 7, 12, 17, 22, 7, 12, 17, 22,
	5, 9, 14, 20, 5, 9, 14, 20, 5, 9, 14, 20, 5, 9, 14, 20,
	4, 11, 16, 23, 4, 11, 16, 23, 4, 11, 16, 23, 4, 11, 16, 23,
	6, 10, 15, 21, 6, 10, 15, 21, 6, 10, 15, 21, 6, 10, 15, 21,
}

// messageIndex[i] is the message word consumed by round i.
var messageIndex = func() [64]int {
	var idx [64]int
	for i := range 64 {
		switch i / 16 {
		case 0:
			idx[i] = i
		case 1:
			idx[i] = (1 + 5*i) % 16
		case 2:
			idx[i] = (5 + 3*i) % 16
		default:
			idx[i] = (7 * i) % 16
		}
	}
	return idx
}()

func roundFunc(i int, x, y, z uint32) uint32 {
	switch i / 16 {
	case 0:
		return (x & y) | (^x & z)
	case 1:
		return (x & z) | (y & ^z)
	case 2:
		return x ^ y ^ z
	default:
		return y ^ (x | ^z)
	}
}

// Compress runs the MD5 compression function over a single 64-byte block and
// returns the resulting chaining value. It panics if block is not exactly
// BlockSize bytes long.
func Compress(cv ChainingValue, block []byte) ChainingValue {
	if len(block) != BlockSize {
		panic(fmt.Sprintf("md5x: compress called with %d bytes", len(block)))
	}

	var m [16]uint32
	for i := range m {
		m[i] = binary.LittleEndian.Uint32(block[4*i:])
	}

	a, b, c, d := cv[0], cv[1], cv[2], cv[3]
	for i := range 64 {
		f := roundFunc(i, b, c, d) + a + roundConstants[i] + m[messageIndex[i]]
		a, d, c = d, c, b
		b = b + bits.RotateLeft32(f, rotations[i])
	}

	return ChainingValue{cv[0] + a, cv[1] + b, cv[2] + c, cv[3] + d}
}

// CompressBlocks folds Compress over every whole block in data. Trailing bytes
// that do not fill a block are ignored.
func CompressBlocks(cv ChainingValue, data []byte) ChainingValue {
	for len(data) >= BlockSize {
		cv = Compress(cv, data[:BlockSize])
		data = data[BlockSize:]
	}
	return cv
}

// Bytes serializes the chaining value little-endian per word.
func (cv ChainingValue) Bytes() [Size]byte {
	var out [Size]byte
	for i, w := range cv {
		binary.LittleEndian.PutUint32(out[4*i:], w)
	}
	return out
}

// Hex returns the lowercase hex form of Bytes.
func (cv ChainingValue) Hex() string {
	b := cv.Bytes()
	return hex.EncodeToString(b[:])
}

func (cv ChainingValue) String() string { return cv.Hex() }

// ChainingValueFromBytes decodes a 16-byte little-endian chaining value.
func ChainingValueFromBytes(b []byte) (ChainingValue, error) {
	if len(b) != Size {
		return ChainingValue{}, fmt.Errorf("md5x: chaining value must be %d bytes, got %d", Size, len(b))
	}
	var cv ChainingValue
	for i := range cv {
		cv[i] = binary.LittleEndian.Uint32(b[4*i:])
	}
	return cv, nil
}

// ParseChainingValue decodes the 32 character hex form produced by Hex.
func ParseChainingValue(s string) (ChainingValue, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return ChainingValue{}, fmt.Errorf("md5x: parse chaining value: %w", err)
	}
	return ChainingValueFromBytes(b)
}
