package collider

import (
	"errors"
	"fmt"
)

var (
	// ErrAlignment indicates a strict divergence was requested while the
	// content length is not a multiple of the MD5 block size.
	ErrAlignment = errors.New("collider: content not block aligned")

	// ErrVariantRange indicates a variant index beyond the number of
	// combinations recorded.
	ErrVariantRange = errors.New("collider: variant index out of range")

	// errFilterRejected marks a candidate pair discarded by the block filter.
	// It only surfaces as the cause of an exhausted divergence.
	errFilterRejected = errors.New("collider: candidate rejected by block filter")
)

// AlignmentError carries the unaligned length.
type AlignmentError struct {
	Len int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("content length %d is not a multiple of 64 (short by %d)", e.Len, 64-e.Len%64)
}

func (e *AlignmentError) Is(target error) bool {
	return target == ErrAlignment
}

func (e *AlignmentError) Unwrap() error { return ErrAlignment }

// IsAlignment reports whether err is (or wraps) an alignment failure.
func IsAlignment(err error) bool {
	return errors.Is(err, ErrAlignment)
}
