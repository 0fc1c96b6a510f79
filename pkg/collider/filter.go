package collider

import "bytes"

// Filter decides whether a collision candidate may be placed in the output.
// A divergence is only recorded when both branches pass.
type Filter func(block []byte) bool

// AllowAll accepts every candidate.
func AllowAll([]byte) bool { return true }

// DisallowSubstrings rejects candidates containing any of subs. Empty
// substrings are ignored.
func DisallowSubstrings(subs ...[]byte) Filter {
	bad := make([][]byte, 0, len(subs))
	for _, s := range subs {
		if len(s) > 0 {
			bad = append(bad, bytes.Clone(s))
		}
	}
	return func(block []byte) bool {
		for _, s := range bad {
			if bytes.Contains(block, s) {
				return false
			}
		}
		return true
	}
}

// DisallowBytes rejects candidates containing any of bs.
func DisallowBytes(bs ...byte) Filter {
	bad := bytes.Clone(bs)
	return func(block []byte) bool {
		for _, b := range bad {
			if bytes.IndexByte(block, b) >= 0 {
				return false
			}
		}
		return true
	}
}

// And accepts a candidate only when every non-nil filter does.
func And(filters ...Filter) Filter {
	return func(block []byte) bool {
		for _, f := range filters {
			if f != nil && !f(block) {
				return false
			}
		}
		return true
	}
}
