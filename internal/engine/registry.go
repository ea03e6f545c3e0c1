package engine

import "sync"

// registry is the per-side Pending Registry of spec.md §4.2: an
// ordered list of outstanding commands awaiting responses on one
// side, with collision checking by response-prefix (invariant I1).
//
// It is read from a receiver callback and written from a submitter
// goroutine concurrently, so every operation below takes the lock;
// matches takes a snapshot copy so a concurrent insert/remove during
// iteration can't race or panic, per spec.md §4.2's "copy-on-write or
// mutex-guarded vector" note.
type registry struct {
	mu      sync.Mutex
	entries []pending
}

func newRegistry() *registry {
	return &registry{}
}

// conflicts reports whether a and b's response prefixes overlap: one
// is a byte-wise prefix of the other over min(len(a), len(b)) bytes.
func conflicts(a, b []byte) bool {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// admit reports whether cmd's response prefix can be added without
// violating I1 against any entry currently in the registry.
func (r *registry) admit(cmd pending) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.entries {
		if conflicts(cmd.ResponsePrefix(), existing.ResponsePrefix()) {
			return false
		}
	}
	return true
}

// insert appends cmd to the ordered list. Callers must have already
// called admit successfully; insert does not re-check I1. Atomicity
// of the admit-then-insert sequence across a Submit's full target set
// (spec.md §4.3) is the caller's responsibility — engine.Submit holds
// its own mutex across both calls on every target registry, since a
// single registry's lock can't span the other registry in a BOTH
// submission.
func (r *registry) insert(cmd pending) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, cmd)
}

// matches returns, in insertion order, every entry whose response
// prefix is a byte-wise prefix of data.
func (r *registry) matches(data []byte) []pending {
	r.mu.Lock()
	snapshot := make([]pending, len(r.entries))
	copy(snapshot, r.entries)
	r.mu.Unlock()

	var out []pending
	for _, cmd := range snapshot {
		prefix := cmd.ResponsePrefix()
		if len(data) >= len(prefix) && bytesHavePrefix(data, prefix) {
			out = append(out, cmd)
		}
	}
	return out
}

func bytesHavePrefix(data, prefix []byte) bool {
	for i, b := range prefix {
		if data[i] != b {
			return false
		}
	}
	return true
}

// remove deletes cmd by identity. It is idempotent: removing an entry
// that already left the registry (resolved, timed out, or removed by
// a concurrent disconnect) is a no-op, which is required for I2 to
// hold under a match racing a timer fire.
func (r *registry) remove(cmd pending) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, entry := range r.entries {
		if entry == cmd {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return
		}
	}
}

// drain removes and returns every entry, for use when a side
// transitions out of StateInitialized and every pending command on it
// must fail with SideDisconnected.
func (r *registry) drain() []pending {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.entries
	r.entries = nil
	return out
}

// len reports the number of live entries, for tests and diagnostics.
func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
