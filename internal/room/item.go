package room

import (
	"github.com/udisondev/lawnmower-room/internal/config"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

// ItemRuntime is one dropped item, per spec §3.
type ItemRuntime struct {
	ID       uint32
	TypeID   int32
	Effect   config.ItemEffect
	Value    float32
	Position wire.Vec2
	Picked   bool

	ForceSyncLeft int32

	dirty       bool
	dirtyQueued bool
	removed     bool

	lastSyncPosition wire.Vec2
	lastSyncPicked   bool
}
