package oracle

import (
	"errors"
	"fmt"

	"github.com/jlrickert/md5coll/pkg/md5x"
)

// Sentinel errors used for simple equality-style checks.
var (
	// ErrOracleUnavailable indicates the collision search cannot be invoked at
	// all. Callers should not retry.
	ErrOracleUnavailable = errors.New("oracle: collision search unavailable")

	// ErrOracleExhausted indicates no acceptable pair was produced within the
	// configured attempt or time budget.
	ErrOracleExhausted = errors.New("oracle: no acceptable collision within budget")

	// ErrContractViolation indicates a returned pair does not collide or its
	// branches are identical.
	ErrContractViolation = errors.New("oracle: collision contract violated")
)

// UnavailableError carries the binary or capability that could not be used.
type UnavailableError struct {
	Path  string
	Cause error
}

func (e *UnavailableError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("collision search unavailable: %s", e.Path)
	}
	return fmt.Sprintf("collision search unavailable: %s: %v", e.Path, e.Cause)
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrOracleUnavailable
}

func (e *UnavailableError) Unwrap() error { return e.Cause }

// NewUnavailableError constructs a typed UnavailableError.
func NewUnavailableError(path string, cause error) error {
	return &UnavailableError{Path: path, Cause: cause}
}

// IsUnavailable reports whether err is (or wraps) an unavailable condition.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrOracleUnavailable)
}

// ExhaustedError reports how many oracle calls were made before giving up and
// the last failure, if any, that ended the search.
type ExhaustedError struct {
	Attempts int
	Cause    error
}

func (e *ExhaustedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("no acceptable collision after %d attempts", e.Attempts)
	}
	return fmt.Sprintf("no acceptable collision after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrOracleExhausted
}

func (e *ExhaustedError) Unwrap() error { return e.Cause }

// NewExhaustedError constructs a typed ExhaustedError.
func NewExhaustedError(attempts int, cause error) error {
	return &ExhaustedError{Attempts: attempts, Cause: cause}
}

// IsExhausted reports whether err is (or wraps) an exhausted condition.
func IsExhausted(err error) bool {
	return errors.Is(err, ErrOracleExhausted)
}

// ContractViolationError describes why a pair failed Verify.
type ContractViolationError struct {
	ChainingValue md5x.ChainingValue
	Reason        string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("collision contract violated at %s: %s", e.ChainingValue, e.Reason)
}

func (e *ContractViolationError) Is(target error) bool {
	return target == ErrContractViolation
}

func (e *ContractViolationError) Unwrap() error { return ErrContractViolation }

// IsContractViolation reports whether err is (or wraps) a contract violation.
func IsContractViolation(err error) bool {
	return errors.Is(err, ErrContractViolation)
}
