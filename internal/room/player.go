package room

import (
	"math"

	"github.com/udisondev/lawnmower-room/internal/config"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

const historyRingCap = 256

// historyEntry is one bounded-ring sample of a player's authoritative
// state, used to validate/replay reconciliation.
type historyEntry struct {
	tick          uint64
	position      wire.Vec2
	rotation      float32
	health        int32
	isAlive       bool
	lastInputSeq  uint32
}

// UpgradeStage is the stage of the scene-wide upgrade state machine
// (spec §4.11). A scene holds one stage, together with the id of the
// player the current upgrade belongs to.
type UpgradeStage int32

const (
	UpgradeNone UpgradeStage = iota
	UpgradeRequestSent
	UpgradeOptionsSent
	UpgradeWaitingSelect
)

// PlayerRuntime is one connected/disconnected player's authoritative
// simulation state, per spec §3.
type PlayerRuntime struct {
	ID   uint32
	Name string

	Connected      bool
	DisconnectedAt float64 // scene.Elapsed at disconnect, 0 if connected

	Position wire.Vec2
	Rotation float32

	Health    int32
	MaxHealth int32
	IsAlive   bool

	Attack          uint32
	AttackSpeed     uint32
	CriticalHitRate uint32
	MoveSpeed       float32

	Level             int32
	Exp               uint32
	ExpToNext         uint32
	PendingUpgradeCount int32
	RefreshRemaining  int32
	RoleID            uint32
	HasBuff           bool
	BuffID            uint32

	DamageDealt int64
	Kills       int32

	pendingInputs  []wire.PlayerInput
	LastInputSeq   uint32
	seenFirstInput bool
	wantsAttacking bool

	history    [historyRingCap]historyEntry
	historyLen int
	historyPos int

	fireCooldown    float64
	attackDirCache  wire.Vec2
	attackDirStale  bool
	lockedTargetID  uint32
	targetRefreshT  float64

	lowFreqDirty  bool
	highFreqDirty bool
	dirtyQueued   bool

	lastSyncPosition     wire.Vec2
	lastSyncRotation     float32
	lastSyncIsAlive      bool
	lastSyncInputSeq     uint32
}

func newPlayerRuntime(id uint32, name string, role config.PlayerRoleConfig, pos wire.Vec2, rotation float32, upgradeRefreshLimit int32) *PlayerRuntime {
	maxHealth := role.MaxHealth
	if maxHealth <= 0 {
		maxHealth = 100
	}
	p := &PlayerRuntime{
		ID: id, Name: name,
		Connected: true,
		Position:  pos,
		Rotation:  rotation,
		Health:    maxHealth,
		MaxHealth: maxHealth,
		IsAlive:   true,
		Attack:    role.Attack,
		AttackSpeed: maxu32(1, role.AttackSpeed),
		CriticalHitRate: role.CriticalHitRate,
		MoveSpeed: role.MoveSpeed,
		Level:     1,
		ExpToNext: 100,
		RoleID:    role.RoleID,
		RefreshRemaining: upgradeRefreshLimit,
	}
	p.lastSyncPosition = pos
	p.lastSyncRotation = rotation
	p.lastSyncIsAlive = true
	return p
}

func maxu32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// pushHistory records one tick's authoritative snapshot into the bounded
// ring, overwriting the oldest entry once full.
func (p *PlayerRuntime) pushHistory(tick uint64) {
	p.history[p.historyPos] = historyEntry{
		tick: tick, position: p.Position, rotation: p.Rotation,
		health: p.Health, isAlive: p.IsAlive, lastInputSeq: p.LastInputSeq,
	}
	p.historyPos = (p.historyPos + 1) % historyRingCap
	if p.historyLen < historyRingCap {
		p.historyLen++
	}
}

// QueueInput appends an input for later draining by the tick loop.
// Inputs whose sequence regresses the last accepted sequence are dropped
// to preserve monotonicity.
func (p *PlayerRuntime) QueueInput(in wire.PlayerInput) {
	if in.Seq < p.LastInputSeq && p.LastInputSeq-in.Seq < 1<<31 {
		return
	}
	p.pendingInputs = append(p.pendingInputs, in)
}

// FlushPendingInputs discards all queued-but-undrained inputs, used when
// entering upgrade pause or on disconnect.
func (p *PlayerRuntime) FlushPendingInputs() {
	p.pendingInputs = p.pendingInputs[:0]
}

const (
	directionEpsilonSq   = 1e-6
	maxDirectionLengthSq = 1.21
)

// applyMovement applies one input's direction*speed*dt to position,
// clamping into the map, and sets rotation from atan2 when the direction
// is valid. Invalid vectors are consumed for bookkeeping only.
func (p *PlayerRuntime) applyMovement(dir wire.Vec2, dt float64, mapW, mapH int32) {
	lenSq := float64(dir.X*dir.X + dir.Y*dir.Y)
	if lenSq < directionEpsilonSq || lenSq > maxDirectionLengthSq {
		return
	}
	dist := float64(p.MoveSpeed) * dt
	p.Position.X = clampf(p.Position.X+dir.X*float32(dist), 0, float32(mapW))
	p.Position.Y = clampf(p.Position.Y+dir.Y*float32(dist), 0, float32(mapH))
	p.Rotation = float32(math.Atan2(float64(dir.Y), float64(dir.X)) * 180 / math.Pi)
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampi32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ApplyDamage subtracts dmg from health, clamping to [0,max_health] and
// maintaining the alive<=>health>0 invariant.
func (p *PlayerRuntime) ApplyDamage(dmg int32) {
	p.Health = clampi32(p.Health-dmg, 0, p.MaxHealth)
	if p.Health == 0 {
		p.IsAlive = false
	}
}

// Heal adds value to health, clamped to max_health.
func (p *PlayerRuntime) Heal(value float32) {
	p.Health = clampi32(p.Health+int32(value), 0, p.MaxHealth)
}

// GrantExp runs the level-up loop: one kill may grant multiple levels.
// Returns the number of levels gained.
func (p *PlayerRuntime) GrantExp(amount uint32) int32 {
	p.Exp += amount
	gained := int32(0)
	for p.Exp >= p.ExpToNext {
		p.Exp -= p.ExpToNext
		p.Level++
		gained++
		next := int64(float64(p.ExpToNext)*1.25) + 25
		if next < 1 {
			next = 1
		}
		p.ExpToNext = uint32(next)
		p.PendingUpgradeCount++
	}
	return gained
}
