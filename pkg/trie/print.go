package trie

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/kr/pretty"

	"github.com/bobboyms/revtrie/internal/nodestore"
)

// printNode is the shape Print dumps per node with kr/pretty: the raw
// tree pointers are deliberately omitted (they're meaningless outside
// the lock-coupling protocol that produced them) in favor of the
// reconstructed full key and value, which is what a human debugging a
// dump actually wants to see.
type printNode struct {
	Key      string
	Value    uint32
	HasChild bool
	HasNext  bool
}

// Print writes a diagnostic dump of the trie to w: one kr/pretty-formatted
// line per node in a left-child, then-right-sibling walk, followed by a
// checksum (xxhash over every node's reconstructed full key and value,
// in walk order) that tests can compare across runs instead of diffing
// printed text, and the tail of the in-memory journal if one is
// configured.
//
// Print takes capacityMu only for the capacityMu -> rootMu bootstrap,
// then holds rootMu for its whole duration (Lookup releases rootMu once
// the root node is locked); it never mutates the tree.
func (t *Trie) Print(w io.Writer) {
	t.capacityMu.Lock()
	t.rootMu.Lock()
	t.capacityMu.Unlock()
	defer t.rootMu.Unlock()

	h := xxhash.New()
	t.walkLocked(t.root, nil, func(n *printNode) {
		fmt.Fprintf(w, "%# v\n", pretty.Formatter(n))
		h.WriteString(n.Key)
		var vbuf [4]byte
		vbuf[0], vbuf[1], vbuf[2], vbuf[3] = byte(n.Value), byte(n.Value>>8), byte(n.Value>>16), byte(n.Value>>24)
		h.Write(vbuf[:])
	})
	fmt.Fprintf(w, "checksum: %x\n", h.Sum64())

	if t.opts.Journal != nil {
		for _, e := range t.opts.Journal.Entries() {
			fmt.Fprintf(w, "journal #%d kind=%d key=%q value=%d crc32=%08x\n",
				e.Seq, e.Kind, e.Key, e.Value, e.CRC32)
		}
	}
}

// walkLocked performs a locked left-child-first, then-right-sibling
// traversal starting at n, reconstructing each node's full key from
// prefix (the concatenation of ancestor key fragments reachable via
// Child edges). It acquires and releases each node's own lock in turn.
// Holding rootMu keeps Remove and new descents out, but an Insert that
// already released rootMu can still be mutating nodes below the root,
// so each node is read under its own lock.
func (t *Trie) walkLocked(n *nodestore.Node, prefix []byte, visit func(*printNode)) {
	if n == nil {
		return
	}
	n.Lock()
	full := append(append([]byte(nil), n.Key...), prefix...)
	visit(&printNode{
		Key:      string(full),
		Value:    n.Value,
		HasChild: n.Child != nil,
		HasNext:  n.Next != nil,
	})
	child, next := n.Child, n.Next
	n.Unlock()

	t.walkLocked(child, full, visit)
	t.walkLocked(next, prefix, visit)
}
