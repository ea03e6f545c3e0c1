package engine

import (
	"testing"
	"time"
)

type fakePending struct {
	side    Side
	prefix  []byte
	done    bool
	failed  error
	resolved []byte
}

func (f *fakePending) Side() Side              { return f.side }
func (f *fakePending) ResponsePrefix() []byte  { return f.prefix }
func (f *fakePending) Packets() [][]byte       { return nil }
func (f *fakePending) Deadline() time.Time     { return time.Time{} }
func (f *fakePending) setTimer(t *time.Timer)  {}
func (f *fakePending) resolve(data []byte) error {
	f.done = true
	f.resolved = data
	return nil
}
func (f *fakePending) fail(err error) {
	f.done = true
	f.failed = err
}

func TestRegistryAdmitRejectsOverlappingPrefix(t *testing.T) {
	r := newRegistry()
	a := &fakePending{side: Left, prefix: []byte{0x01}}
	b := &fakePending{side: Left, prefix: []byte{0x01, 0x02}}

	if !r.admit(a) {
		t.Fatal("expected first command to be admitted")
	}
	r.insert(a)

	if r.admit(b) {
		t.Fatal("expected overlapping-prefix command to be rejected")
	}
}

func TestRegistryAdmitAllowsDisjointPrefix(t *testing.T) {
	r := newRegistry()
	a := &fakePending{side: Left, prefix: []byte{0x01}}
	b := &fakePending{side: Left, prefix: []byte{0x02}}

	r.insert(a)
	if !r.admit(b) {
		t.Fatal("expected disjoint-prefix command to be admitted")
	}
}

func TestRegistryMatchesByPrefix(t *testing.T) {
	r := newRegistry()
	a := &fakePending{side: Left, prefix: []byte{0xC9, 0x01}}
	r.insert(a)

	matched := r.matches([]byte{0xC9, 0x01, 0xFF})
	if len(matched) != 1 {
		t.Fatalf("expected 1 match, got %d", len(matched))
	}

	none := r.matches([]byte{0xC9, 0x02})
	if len(none) != 0 {
		t.Fatalf("expected 0 matches, got %d", len(none))
	}
}

func TestRegistryRemoveIsIdempotent(t *testing.T) {
	r := newRegistry()
	a := &fakePending{side: Left, prefix: []byte{0x01}}
	r.insert(a)

	r.remove(a)
	if r.len() != 0 {
		t.Fatalf("expected registry empty after remove, got %d", r.len())
	}

	r.remove(a) // second remove must be a no-op, not a panic
	if r.len() != 0 {
		t.Fatalf("expected registry still empty, got %d", r.len())
	}
}

func TestRegistryDrainEmptiesRegistry(t *testing.T) {
	r := newRegistry()
	r.insert(&fakePending{side: Left, prefix: []byte{0x01}})
	r.insert(&fakePending{side: Left, prefix: []byte{0x02}})

	drained := r.drain()
	if len(drained) != 2 {
		t.Fatalf("expected 2 drained entries, got %d", len(drained))
	}
	if r.len() != 0 {
		t.Fatalf("expected registry empty after drain, got %d", r.len())
	}
}
