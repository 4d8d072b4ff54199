// Package sync turns per-tick scene mutations into the wire-facing
// snapshot/delta cadence: a de-duplicating dirty-id tracker plus the
// dynamic pacing decision from spec §4.9. Grounded on
// original_source/server/src/game/managers/game_manager_sync.cpp
// (dirty marking, PositionChanged, full-vs-delta fill) and
// game_manager_tick_dispatch.cpp (the scale algorithm), ported to
// idiomatic Go value types. The room package holds the actual wire
// message construction, since that needs the entity types it owns; this
// package only supplies the generic, independently testable primitives.
package sync

// DirtySet is a de-duplicating FIFO of entity ids: Mark is a no-op if the
// id is already queued, keeping insertion amortized O(1) and each id
// appearing at most once per drain, per spec's invariant.
type DirtySet struct {
	ids    []uint32
	queued map[uint32]bool
}

// NewDirtySet builds an empty set.
func NewDirtySet() *DirtySet {
	return &DirtySet{queued: make(map[uint32]bool)}
}

// Mark enqueues id if it isn't already pending.
func (d *DirtySet) Mark(id uint32) {
	if d.queued[id] {
		return
	}
	d.queued[id] = true
	d.ids = append(d.ids, id)
}

// Ids returns the currently queued ids without clearing them.
func (d *DirtySet) Ids() []uint32 { return d.ids }

// Len reports how many ids are currently queued.
func (d *DirtySet) Len() int { return len(d.ids) }

// Clear empties the set, releasing every id's queued flag.
func (d *DirtySet) Clear() {
	d.ids = d.ids[:0]
	clear(d.queued)
}
