package md5x

import "github.com/jlrickert/cli-toolkit/toolkit"

// Hasher adapts the engine to toolkit.Hasher so it can be injected into a
// runtime or context with toolkit.WithHasher.
//
// Unlike toolkit.MD5Hasher the input is hashed verbatim; collision outputs
// are binary and trimming whitespace would change their digest.
type Hasher struct{}

// Hash returns the lowercase hex MD5 of data.
func (Hasher) Hash(data []byte) string {
	return HexSum(data)
}

var _ toolkit.Hasher = Hasher{}
