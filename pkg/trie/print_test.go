package trie

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrint_ContainsEveryKeyAndChecksumLine(t *testing.T) {
	tr := newTestTrie()
	tr.Insert([]byte("com"), 1)
	tr.Insert([]byte("example.com"), 2)
	tr.Insert([]byte("org"), 3)

	var buf bytes.Buffer
	tr.Print(&buf)
	out := buf.String()

	for _, want := range []string{"com", "example.com", "org", "checksum:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("Print() output missing %q:\n%s", want, out)
		}
	}
}

func TestPrint_ChecksumStableAcrossIdenticalTrees(t *testing.T) {
	build := func() string {
		tr := newTestTrie()
		tr.Insert([]byte("com"), 1)
		tr.Insert([]byte("example.com"), 2)
		var buf bytes.Buffer
		tr.Print(&buf)
		out := buf.String()
		return out[strings.Index(out, "checksum:"):]
	}
	if build() != build() {
		t.Fatal("checksum line differs across two structurally identical tries")
	}
}

func TestPrint_EmptyTrie(t *testing.T) {
	tr := newTestTrie()
	var buf bytes.Buffer
	tr.Print(&buf) // must not panic on a nil root
	if !strings.Contains(buf.String(), "checksum:") {
		t.Fatal("Print() on empty trie missing checksum line")
	}
}
