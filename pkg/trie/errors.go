package trie

import "github.com/cockroachdb/errors"

// Error taxonomy for the trie core: one struct per failure kind, built
// on cockroachdb/errors so values carry stack traces and compose with
// errors.Is/As. The Trie type's own methods never return these directly
// (its contract is the boolean results described in the package doc);
// pkg/driver is where they surface as Go errors.

// ErrEmptyKey is the sentinel for a zero-length key, which every
// operation rejects before it reaches the comparator.
var ErrEmptyKey = errors.New("revtrie: empty key")

// ErrKeyTooLong is the sentinel for a key at or beyond Options.MaxKey.
var ErrKeyTooLong = errors.New("revtrie: key exceeds MaxKey")

// ErrInvariantViolation marks a structural invariant the trie core
// believes can never be false. It is only ever used as the argument to
// AssertInvariant, which panics with it; pkg/driver does not recover
// that panic.
var ErrInvariantViolation = errors.New("revtrie: invariant violation")

// DuplicateKeyError reports that Insert rejected a key already bound to
// a non-zero value.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return "revtrie: key already bound: " + e.Key
}

// NotFoundError reports that Remove or Lookup found no binding for Key.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	return "revtrie: key not found: " + e.Key
}

// AllocationFailureError wraps a nodestore allocation failure with the
// key that triggered it, so pkg/driver can log which operation failed.
type AllocationFailureError struct {
	Key   string
	Cause error
}

func (e *AllocationFailureError) Error() string {
	return "revtrie: allocation failed for " + e.Key + ": " + e.Cause.Error()
}

func (e *AllocationFailureError) Unwrap() error {
	return e.Cause
}

// AssertInvariant panics with ErrInvariantViolation, annotated with msg,
// when cond is false. It is used at the few points in the trie core
// where a false condition means the lock-coupling protocol itself has a
// bug, not that the caller supplied bad input.
func AssertInvariant(cond bool, msg string) {
	if !cond {
		panic(errors.Wrap(ErrInvariantViolation, msg))
	}
}
