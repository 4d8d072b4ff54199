package room

import (
	"github.com/udisondev/lawnmower-room/internal/room/nav"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

// kEnemySpawnForceSyncCount guarantees a spawned enemy survives at least
// two sends as a full record, insulating clients from packet loss
// around spawn (spec §4.6 step 6).
const kEnemySpawnForceSyncCount = 2

// kEnemyReplanInterval and kEnemyWaypointReachRadius are the AI
// movement constants from spec §4.7, sourced exactly from
// original_source's game_manager_enemy.cpp.
const (
	kEnemyReplanInterval        = 0.25
	kEnemyWaypointReachRadius   = 12.0
	kEnemyDespawnDelaySeconds   = 3.0
	kEnemyMaxWaypointsPerTick   = 4
)

// EnemyRuntime is one living or recently-dead enemy, per spec §3.
type EnemyRuntime struct {
	ID     uint32
	TypeID int32

	Position wire.Vec2
	Health   int32
	MaxHealth int32
	IsAlive  bool
	WaveID   int32

	Attacking      bool
	AttackTargetID uint32
	AttackCooldown float64

	Path       []nav.Cell
	PathCursor int
	ReplanTimer float64
	TargetID    uint32
	TargetRefreshTimer float64

	ForceSyncLeft int32
	DeadElapsed   float64

	KillerPlayerID uint32

	dirty       bool
	dirtyQueued bool

	lastSyncPosition wire.Vec2
	lastSyncHealth   int32
	lastSyncIsAlive  bool
}

// ApplyDamage subtracts dmg, clamping to [0,max_health] and maintaining
// the alive<=>health>0 invariant.
func (e *EnemyRuntime) ApplyDamage(dmg int32, attackerID uint32) {
	e.Health = clampi32(e.Health-dmg, 0, e.MaxHealth)
	if e.Health == 0 && e.IsAlive {
		e.IsAlive = false
		e.KillerPlayerID = attackerID
	}
}
