package room

import "github.com/udisondev/lawnmower-room/internal/wire"

// kEnemyCollisionRadius and kPlayerCollisionRadius are the fixed body
// radii used by continuous hit detection and melee range, sourced
// exactly from original_source's game_manager_combat.cpp.
const (
	kEnemyCollisionRadius  = 16.0
	kPlayerCollisionRadius = 18.0
)

// ProjectileRuntime is one in-flight shot, per spec §3.
type ProjectileRuntime struct {
	ID       uint32
	OwnerID  uint32
	Position wire.Vec2
	Dir      wire.Vec2
	Rotation float32
	Speed    float32
	Damage   int32
	HasBuff  bool
	Friendly bool
	Remaining float64
	Radius   float32
}
