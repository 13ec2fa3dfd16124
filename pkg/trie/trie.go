// Package trie implements a concurrent, compressed, reverse-ordered
// trie: keys are compared from their last byte toward their first, so
// "example.com" and "www.example.com" share ancestry in the tree. All
// public operations take a boolean-contract shape (no Go errors cross
// this API); pkg/driver layers error reporting, tracing and metrics on
// top of it.
//
// Concurrency is hand-over-hand (latch-crabbing): a descent never holds
// more than a small, bounded number of node locks at once, always
// acquired in a strict capacityMu -> rootMu -> parent -> child /
// left -> right order. See capacity.go for the eviction controller that
// shares capacityMu with Insert/Remove.
package trie

import (
	"sync"

	"github.com/bobboyms/revtrie/internal/nodestore"
	"github.com/bobboyms/revtrie/pkg/key"
)

// defaultMaxKey and defaultMaxCount are the fallback bounds; callers
// needing different limits set them via Options.
const (
	defaultMaxKey   = 256
	defaultMaxCount = 1 << 20
)

// Options configures a Trie at construction time. The zero value is
// usable: MaxKey and MaxCount fall back to their defaults, and capacity
// is enforced only when the caller invokes EnforceCapacity explicitly
// (inline mode).
type Options struct {
	// MaxKey bounds key length; Insert rejects keys of length >= MaxKey.
	MaxKey int

	// MaxCount is the soft node-count ceiling the capacity controller
	// enforces.
	MaxCount int

	// DedicatedAgent starts a background goroutine that waits on a
	// condition variable and evicts nodes as soon as MaxCount is
	// crossed, instead of requiring the caller to invoke
	// EnforceCapacity after every Insert.
	DedicatedAgent bool

	// Metrics, when non-nil, receives counters for every Lookup, Insert
	// and Remove, and eviction timings. See metrics.go.
	Metrics *Metrics

	// Journal, when non-nil, records every mutating operation for
	// later inspection. See journal.go.
	Journal *Journal
}

func (o Options) maxKey() int {
	if o.MaxKey > 0 {
		return o.MaxKey
	}
	return defaultMaxKey
}

func (o Options) maxCount() int {
	if o.MaxCount > 0 {
		return o.MaxCount
	}
	return defaultMaxCount
}

// Trie is a concurrent reverse compressed trie mapping byte-string keys
// to 32-bit values. The zero value is not usable; construct with New.
type Trie struct {
	opts Options

	store *nodestore.Store

	rootMu sync.Mutex
	root   *nodestore.Node

	capacityMu   sync.Mutex
	capacityCond *sync.Cond
	agentRunning bool
	shuttingDown bool
}

// New constructs an empty Trie. If opts.DedicatedAgent is set, a
// background capacity-enforcement goroutine is started immediately and
// must be stopped with ShutdownCapacityAgent.
func New(opts Options) *Trie {
	t := &Trie{
		opts:  opts,
		store: nodestore.New(),
	}
	t.capacityCond = sync.NewCond(&t.capacityMu)
	if opts.DedicatedAgent {
		t.agentRunning = true
		go t.runAgent()
	}
	return t
}

// Count returns the number of live nodes currently allocated, structural
// and value-bearing alike.
func (t *Trie) Count() int {
	return t.store.Count()
}

// Lookup reports the value bound to key and whether a binding exists.
// It never blocks on the capacity controller beyond the brief
// capacityMu/rootMu bootstrap handoff shared with Insert and Remove.
func (t *Trie) Lookup(s []byte) (uint32, bool) {
	v, ok := t.lookup(s)
	t.opts.Metrics.observeOp("lookup", ok)
	return v, ok
}

func (t *Trie) lookup(s []byte) (uint32, bool) {
	if len(s) == 0 {
		return 0, false
	}

	t.capacityMu.Lock()
	t.rootMu.Lock()
	t.capacityMu.Unlock()

	if t.root == nil {
		t.rootMu.Unlock()
		return 0, false
	}

	cur := t.root
	cur.Lock()
	t.rootMu.Unlock()

	for {
		sign, l := key.SuffixMatch(cur.Key, s)
		if sign == 0 {
			switch {
			case len(cur.Key) > l:
				cur.Unlock()
				return 0, false
			case len(s) > l:
				child := cur.Child
				if child == nil {
					cur.Unlock()
					return 0, false
				}
				child.Lock()
				cur.Unlock()
				cur = child
				s = s[:len(s)-l]
				continue
			default:
				v := cur.Value
				cur.Unlock()
				return v, v != 0
			}
		}

		cmp, _ := key.Compare(cur.Key, s)
		if cmp < 0 {
			next := cur.Next
			if next == nil {
				cur.Unlock()
				return 0, false
			}
			next.Lock()
			cur.Unlock()
			cur = next
			continue
		}

		cur.Unlock()
		return 0, false
	}
}

// Insert binds key to value, returning false if key is empty, too long,
// or already bound to a non-zero value. On success it notifies the
// dedicated capacity agent (if running) that node count may have
// crossed MaxCount; inline callers invoke EnforceCapacity themselves.
func (t *Trie) Insert(s []byte, v uint32) bool {
	ok := t.insert(s, v)
	t.opts.Metrics.observeOp("insert", ok)
	return ok
}

func (t *Trie) insert(s []byte, v uint32) bool {
	if len(s) == 0 || len(s) >= t.opts.maxKey() {
		return false
	}

	full := s

	t.capacityMu.Lock()
	t.rootMu.Lock()
	t.capacityMu.Unlock()

	if t.root == nil {
		n, err := t.store.New(s, v)
		if err != nil {
			t.rootMu.Unlock()
			return false
		}
		t.root = n
		t.rootMu.Unlock()
		t.afterMutate()
		t.recordJournal(EntryInsert, s, v)
		return true
	}

	cur := t.root
	cur.Lock()

	guardingRoot := true
	var pred *nodestore.Node
	predIsParent := false

	relink := func(nn *nodestore.Node) {
		switch {
		case guardingRoot:
			t.root = nn
		case predIsParent:
			pred.Child = nn
		default:
			pred.Next = nn
		}
	}
	unlockPred := func() {
		if guardingRoot {
			t.rootMu.Unlock()
		} else {
			pred.Unlock()
		}
	}
	advance := func(next *nodestore.Node, asParent bool) {
		next.Lock()
		unlockPred()
		pred = cur
		predIsParent = asParent
		guardingRoot = false
	}

	for {
		sign, l := key.SuffixMatch(cur.Key, s)
		if sign == 0 {
			switch {
			case len(cur.Key) > l:
				// split-above: s is a strict suffix of cur.Key; cur
				// becomes the child of a fresh node carrying s.
				nn, err := t.store.New(s, v)
				if err != nil {
					unlockPred()
					cur.Unlock()
					return false
				}
				cur.Key = cur.Key[:len(cur.Key)-l]
				nn.Next = cur.Next
				cur.Next = nil
				nn.Child = cur
				relink(nn)
				unlockPred()
				cur.Unlock()
				t.afterMutate()
				t.recordJournal(EntryInsert, full, v)
				return true

			case len(s) > l:
				// descend-child: cur.Key is a strict suffix of s.
				if cur.Child == nil {
					leaf, err := t.store.New(s[:len(s)-l], v)
					if err != nil {
						unlockPred()
						cur.Unlock()
						return false
					}
					cur.Child = leaf
					unlockPred()
					cur.Unlock()
					t.afterMutate()
					t.recordJournal(EntryInsert, full, v)
					return true
				}
				child := cur.Child
				advance(child, true)
				s = s[:len(s)-l]
				cur = child
				continue

			default:
				// exact match.
				if cur.Value != 0 {
					unlockPred()
					cur.Unlock()
					return false
				}
				cur.Value = v
				unlockPred()
				cur.Unlock()
				t.afterMutate()
				t.recordJournal(EntryInsert, full, v)
				return true
			}
		}

		if l2 := key.CommonSuffixLen(cur.Key, s); l2 > 0 {
			// common-suffix-split: neither key is a suffix of the
			// other, but they share a non-empty tail shorter than L.
			offset := len(s) - l2
			nn, err := t.store.New(s[offset:], 0)
			if err != nil {
				unlockPred()
				cur.Unlock()
				return false
			}
			nn.Lock()
			cur.Key = cur.Key[:len(cur.Key)-l2]
			nn.Next = cur.Next
			cur.Next = nil
			nn.Child = cur
			relink(nn)
			unlockPred()

			pred = nn
			predIsParent = true
			guardingRoot = false
			s = s[:offset]
			continue
		}

		cmp, _ := key.Compare(cur.Key, s)
		if cmp < 0 {
			if cur.Next == nil {
				leaf, err := t.store.New(s, v)
				if err != nil {
					unlockPred()
					cur.Unlock()
					return false
				}
				cur.Next = leaf
				unlockPred()
				cur.Unlock()
				t.afterMutate()
				t.recordJournal(EntryInsert, full, v)
				return true
			}
			next := cur.Next
			advance(next, false)
			cur = next
			continue
		}

		// cmp > 0: s sorts before cur among siblings.
		leaf, err := t.store.New(s, v)
		if err != nil {
			unlockPred()
			cur.Unlock()
			return false
		}
		leaf.Next = cur
		relink(leaf)
		unlockPred()
		cur.Unlock()
		t.afterMutate()
		t.recordJournal(EntryInsert, full, v)
		return true
	}
}

// removeResult replaces a poison-pointer sentinel: unwind logic checks
// a caller-held node reference directly instead of dereferencing a
// sentinel value.
type removeResult int

const (
	outcomeNotFound removeResult = iota
	outcomeChanged
)

// Remove clears the binding for key, returning whether one existed.
// Unlike Insert and Lookup, it holds rootMu for the full descent rather
// than releasing it once the root-level node is locked: the post-order
// unwind can splice a new node into t.root itself, and an early release
// would let a concurrent Lookup acquire rootMu and dereference t.root
// while that swap is in progress.
func (t *Trie) Remove(s []byte) bool {
	ok := t.removeByKey(s)
	t.opts.Metrics.observeOp("remove", ok)
	return ok
}

func (t *Trie) removeByKey(s []byte) bool {
	if len(s) == 0 {
		return false
	}

	t.capacityMu.Lock()
	t.rootMu.Lock()
	t.capacityMu.Unlock()

	if t.root == nil {
		t.rootMu.Unlock()
		return false
	}

	root := t.root
	root.Lock()
	res := t.remove(root, true, s)
	t.rootMu.Unlock()

	if res == outcomeChanged {
		t.recordJournal(EntryDelete, s, 0)
		return true
	}
	return false
}

// remove descends into an already-locked n, unlocking it on every exit
// path, and reports whether a binding was cleared anywhere in n's
// subtree. isRoot is true only for the outermost call, the only frame
// where n can be the trie's current root and so eligible for the
// root-replacement special case.
func (t *Trie) remove(n *nodestore.Node, isRoot bool, s []byte) removeResult {
	sign, l := key.SuffixMatch(n.Key, s)
	if sign == 0 {
		switch {
		case len(n.Key) > l:
			n.Unlock()
			return outcomeNotFound

		case len(s) > l:
			child := n.Child
			if child == nil {
				n.Unlock()
				return outcomeNotFound
			}
			child.Lock()
			res := t.remove(child, false, s[:len(s)-l])
			if res != outcomeChanged {
				n.Unlock()
				return outcomeNotFound
			}
			if child.Structural() {
				n.Child = child.Next
				t.store.Release(child)
			}
			t.finishRemoveUnwind(n, isRoot)
			return outcomeChanged

		default:
			if n.Value == 0 {
				n.Unlock()
				return outcomeNotFound
			}
			n.Value = 0
			t.finishRemoveUnwind(n, isRoot)
			return outcomeChanged
		}
	}

	cmp, _ := key.Compare(n.Key, s)
	if cmp < 0 {
		next := n.Next
		if next == nil {
			n.Unlock()
			return outcomeNotFound
		}
		next.Lock()
		res := t.remove(next, false, s)
		if res != outcomeChanged {
			n.Unlock()
			return outcomeNotFound
		}
		if next.Structural() {
			n.Next = next.Next
			t.store.Release(next)
		}
		n.Unlock()
		return outcomeChanged
	}

	n.Unlock()
	return outcomeNotFound
}

// finishRemoveUnwind handles the shared tail of both remove cases that
// can legally clear n itself: if n is the root and has become garbage,
// splice root.Next into root's place and release n; otherwise just
// unlock n.
func (t *Trie) finishRemoveUnwind(n *nodestore.Node, isRoot bool) {
	if isRoot && n.Structural() {
		next := n.Next
		if next != nil {
			next.Lock()
		}
		t.root = next
		n.Unlock()
		t.store.Release(n)
		if next != nil {
			next.Unlock()
		}
		return
	}
	n.Unlock()
}
