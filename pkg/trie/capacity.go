package trie

// afterMutate runs after every successful Insert. In dedicated-agent
// mode it wakes the capacity goroutine once the soft ceiling is
// crossed; in inline mode enforcement is the caller's responsibility
// via EnforceCapacity.
func (t *Trie) afterMutate() {
	if !t.opts.DedicatedAgent {
		return
	}
	if t.store.Count() < t.opts.maxCount() {
		return
	}
	t.capacityMu.Lock()
	t.capacityCond.Signal()
	t.capacityMu.Unlock()
}

// EnforceCapacity evicts nodes under capacityMu until Count() falls to
// or below MaxCount, or DropOne reports there is nothing left to evict.
// Safe to call with DedicatedAgent set, though in that mode the
// background goroutine normally gets there first.
func (t *Trie) EnforceCapacity() {
	t.capacityMu.Lock()
	defer t.capacityMu.Unlock()
	for t.store.Count() > t.opts.maxCount() {
		if !t.evictOneLocked() {
			return
		}
	}
}

// runAgent is the dedicated capacity goroutine: wait for a signal that
// the ceiling may have been crossed, evict down to MaxCount, then wait
// again. It re-checks its own wait condition after every wake instead
// of evicting once per signal, so a burst of inserts between wakes
// still gets fully drained. Loops for the trie's entire lifetime until
// ShutdownCapacityAgent sets shuttingDown.
func (t *Trie) runAgent() {
	t.capacityMu.Lock()
	defer t.capacityMu.Unlock()
	for {
		for !t.shuttingDown && t.store.Count() <= t.opts.maxCount() {
			t.capacityCond.Wait()
		}
		if t.shuttingDown {
			t.agentRunning = false
			return
		}
		for t.store.Count() > t.opts.maxCount() {
			if !t.evictOneLocked() {
				break
			}
		}
	}
}

// ShutdownCapacityAgent stops the dedicated capacity goroutine, if one
// is running. It is safe to call on a Trie built without
// Options.DedicatedAgent.
func (t *Trie) ShutdownCapacityAgent() {
	t.capacityMu.Lock()
	t.shuttingDown = true
	t.capacityCond.Signal()
	t.capacityMu.Unlock()
}

// DropOne evicts a single node chosen by an arbitrary but terminating
// policy (the leftmost-child spine), decrementing node count by at
// least one: ancestors left with no value and no children are freed
// along with the evicted leaf. It returns false only when the trie is
// empty.
func (t *Trie) DropOne() bool {
	t.capacityMu.Lock()
	defer t.capacityMu.Unlock()
	return t.evictOneLocked()
}

// evictOneLocked is DropOne's body, split out so EnforceCapacity and
// runAgent (which already hold capacityMu) can call it without
// recursively locking a non-reentrant mutex. It times itself into
// Options.Metrics.EvictionDuration when metrics are enabled.
func (t *Trie) evictOneLocked() bool {
	return t.opts.Metrics.observeEviction(t.dropOneLocked)
}

func (t *Trie) dropOneLocked() bool {
	t.rootMu.Lock()

	fullKey, ok := t.leftmostFullKeyLocked()
	if !ok {
		t.rootMu.Unlock()
		return false
	}

	root := t.root
	AssertInvariant(root != nil, "dropOneLocked: leftmostFullKeyLocked succeeded with a nil root")
	root.Lock()
	res := t.remove(root, true, fullKey)
	t.rootMu.Unlock()

	return res == outcomeChanged
}

// leftmostFullKeyLocked reconstructs the full key stored at the end of
// the leftmost-child spine by locking down that spine hand-over-hand
// and concatenating each node's key fragment, outermost last. The
// caller must already hold rootMu and keeps holding it after this
// returns; leftmostFullKeyLocked only ever locks and unlocks the spine
// nodes themselves.
func (t *Trie) leftmostFullKeyLocked() ([]byte, bool) {
	if t.root == nil {
		return nil, false
	}

	cur := t.root
	cur.Lock()
	var full []byte
	for {
		full = append(append([]byte(nil), cur.Key...), full...)
		if cur.Child == nil {
			cur.Unlock()
			return full, true
		}
		child := cur.Child
		child.Lock()
		cur.Unlock()
		cur = child
	}
}
