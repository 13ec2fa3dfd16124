// Package key implements the total order used by the reverse trie: keys
// are compared from their last byte toward their first, so that strings
// sharing a tail ("example.com", "www.example.com") share trie ancestry.
package key

import "github.com/cockroachdb/errors"

// Pad is the sentinel used to left-pad the shorter operand of Compare so
// that keys of differing length still have a well-defined total order.
const Pad = ' '

// Compare defines the sibling ordering for the trie. The shorter of a
// and b is conceptually left-padded with Pad up to len == L, then the
// two are compared byte-by-byte from index L-1 down to 0. It returns the
// sign of the first difference found (0 if none) and L.
//
// Compare panics if either operand is empty; callers must reject
// zero-length keys before reaching the comparator.
func Compare(a, b []byte) (sign int, matched int) {
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		panic(errors.AssertionFailedf("key.Compare: empty operand (len a=%d, len b=%d)", la, lb))
	}

	l := la
	if lb > l {
		l = lb
	}
	offA, offB := l-la, l-lb

	for i := l - 1; i >= 0; i-- {
		ca, cb := byteAt(a, offA, i), byteAt(b, offB, i)
		if ca != cb {
			return int(ca) - int(cb), l
		}
	}
	return 0, l
}

// SuffixMatch returns the sign of the first difference (scanning from the
// tail) over the last L = min(len(a), len(b)) bytes of a and b, along
// with L itself. sign == 0 means one key is a right-aligned suffix of
// the other over those L bytes.
//
// SuffixMatch panics if either operand is empty.
func SuffixMatch(a, b []byte) (sign int, matched int) {
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		panic(errors.AssertionFailedf("key.SuffixMatch: empty operand (len a=%d, len b=%d)", la, lb))
	}

	l := la
	if lb < l {
		l = lb
	}
	offA, offB := la-l, lb-l

	for i := l - 1; i >= 0; i-- {
		ca, cb := a[offA+i], b[offB+i]
		if ca != cb {
			return int(ca) - int(cb), l
		}
	}
	return 0, l
}

// CommonSuffixLen returns the length of the longest right-aligned run of
// equal bytes shared by a and b, scanning from the last byte of each
// toward the front and stopping at the first mismatch. The result is
// always in [0, min(len(a), len(b))].
//
// This is the primitive behind the trie's common-suffix-split case:
// repeatedly probing SuffixMatch at shrinking offsets until one
// succeeds is equivalent to (and here computed directly as) the length
// of the longest matching tail run.
func CommonSuffixLen(a, b []byte) int {
	l := len(a)
	if len(b) < l {
		l = len(b)
	}
	run := 0
	for run < l && a[len(a)-1-run] == b[len(b)-1-run] {
		run++
	}
	return run
}

// byteAt returns the byte at padded index i of a key whose real bytes
// start at offset off in the padded representation; indices below off
// read as Pad.
func byteAt(s []byte, off, i int) byte {
	if i < off {
		return Pad
	}
	return s[i-off]
}
