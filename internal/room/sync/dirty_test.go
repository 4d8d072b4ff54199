package sync

import "testing"

func TestDirtySetDeduplicates(t *testing.T) {
	d := NewDirtySet()
	d.Mark(1)
	d.Mark(2)
	d.Mark(1)

	if got, want := d.Len(), 2; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	if got, want := d.Ids(), []uint32{1, 2}; !equalUint32(got, want) {
		t.Fatalf("Ids() = %v, want %v", got, want)
	}
}

func TestDirtySetClearReleasesIds(t *testing.T) {
	d := NewDirtySet()
	d.Mark(5)
	d.Clear()

	if got := d.Len(); got != 0 {
		t.Fatalf("Len() after Clear() = %d, want 0", got)
	}

	d.Mark(5)
	if got := d.Len(); got != 1 {
		t.Fatalf("remarking after Clear() should succeed: Len() = %d, want 1", got)
	}
}

func TestDirtySetPreservesInsertionOrder(t *testing.T) {
	d := NewDirtySet()
	for _, id := range []uint32{3, 1, 4, 1, 5, 9, 4} {
		d.Mark(id)
	}
	want := []uint32{3, 1, 4, 5, 9}
	if got := d.Ids(); !equalUint32(got, want) {
		t.Fatalf("Ids() = %v, want %v", got, want)
	}
}

func equalUint32(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
