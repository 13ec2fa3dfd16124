package key

import "testing"

func TestCompare_EqualLength(t *testing.T) {
	sign, matched := Compare([]byte("abc"), []byte("abc"))
	if sign != 0 || matched != 3 {
		t.Fatalf("Compare(abc, abc) = (%d, %d), want (0, 3)", sign, matched)
	}
}

func TestCompare_TailDecides(t *testing.T) {
	// "ab" vs "bb": rightmost byte is compared first (b vs b -> equal),
	// then leftmost byte decides (a < b).
	sign, matched := Compare([]byte("ab"), []byte("bb"))
	if sign >= 0 || matched != 2 {
		t.Fatalf("Compare(ab, bb) = (%d, %d), want (<0, 2)", sign, matched)
	}
}

func TestCompare_PadsShorter(t *testing.T) {
	// "com" vs "ecom": padded to length 4, " com" vs "ecom" compared from
	// the tail; "com" == "com" for 3 bytes, then pad ' ' < 'e'.
	sign, matched := Compare([]byte("com"), []byte("ecom"))
	if sign >= 0 || matched != 4 {
		t.Fatalf("Compare(com, ecom) = (%d, %d), want (<0, 4)", sign, matched)
	}
}

func TestCompare_PanicsOnEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Compare with empty operand did not panic")
		}
	}()
	Compare(nil, []byte("a"))
}

func TestSuffixMatch_RightAlignedSuffix(t *testing.T) {
	sign, matched := SuffixMatch([]byte("butter"), []byte("ter"))
	if sign != 0 || matched != 3 {
		t.Fatalf("SuffixMatch(butter, ter) = (%d, %d), want (0, 3)", sign, matched)
	}
}

func TestSuffixMatch_NoOverlap(t *testing.T) {
	sign, matched := SuffixMatch([]byte("abc"), []byte("xyz"))
	if sign == 0 || matched != 3 {
		t.Fatalf("SuffixMatch(abc, xyz) = (%d, %d), want (!=0, 3)", sign, matched)
	}
}

func TestSuffixMatch_MatchedLenIsShorterOperand(t *testing.T) {
	// len("pincher") = 7, len("pinter") = 6: matched is bounded by the
	// shorter key even though the two differ partway through.
	sign, matched := SuffixMatch([]byte("pincher"), []byte("pinter"))
	if matched != 6 {
		t.Fatalf("SuffixMatch matched = %d, want 6", matched)
	}
	if sign == 0 {
		t.Fatalf("SuffixMatch(pincher, pinter) should differ within the shared length")
	}
}

func TestCommonSuffixLen_PartialTail(t *testing.T) {
	if got := CommonSuffixLen([]byte("axbc"), []byte("aybc")); got != 2 {
		t.Fatalf("CommonSuffixLen(axbc, aybc) = %d, want 2", got)
	}
}

func TestCommonSuffixLen_NoOverlap(t *testing.T) {
	if got := CommonSuffixLen([]byte("abc"), []byte("xyz")); got != 0 {
		t.Fatalf("CommonSuffixLen(abc, xyz) = %d, want 0", got)
	}
}

func TestCommonSuffixLen_BoundedByShorter(t *testing.T) {
	if got := CommonSuffixLen([]byte("com"), []byte("xcom")); got != 3 {
		t.Fatalf("CommonSuffixLen(com, xcom) = %d, want 3", got)
	}
}

func TestSuffixMatch_PanicsOnEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("SuffixMatch with empty operand did not panic")
		}
	}()
	SuffixMatch([]byte("a"), nil)
}
