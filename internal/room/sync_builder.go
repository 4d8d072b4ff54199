package room

import (
	"math"

	"github.com/udisondev/lawnmower-room/internal/wire"
)

// deltaPositionEpsilon is the minimum position/rotation change worth a
// delta entry; smaller jitter is treated as unchanged.
const deltaPositionEpsilon = 1e-4

func positionChanged(cur, last wire.Vec2) bool {
	return math.Abs(float64(cur.X-last.X)) > deltaPositionEpsilon ||
		math.Abs(float64(cur.Y-last.Y)) > deltaPositionEpsilon
}

func (s *Scene) fillPlayerHighFreq(p *PlayerRuntime) wire.PlayerState {
	return wire.PlayerState{
		PlayerID: p.ID, Position: p.Position, Rotation: p.Rotation, IsAlive: p.IsAlive,
		LastProcessedInputSeq: p.LastInputSeq,
	}
}

func (s *Scene) fillPlayerFull(p *PlayerRuntime) wire.PlayerState {
	return wire.PlayerState{
		PlayerID: p.ID, Name: p.Name, Position: p.Position, Rotation: p.Rotation,
		Health: p.Health, MaxHealth: p.MaxHealth, IsAlive: p.IsAlive,
		Attack: int32(p.Attack), AttackSpeed: float32(p.AttackSpeed), CriticalHitRate: int32(p.CriticalHitRate),
		MoveSpeed: p.MoveSpeed, Level: p.Level, Exp: int64(p.Exp),
		PendingUpgradeCount: p.PendingUpgradeCount, RoleID: int32(p.RoleID),
		LastProcessedInputSeq: p.LastInputSeq,
	}
}

func (s *Scene) updatePlayerLastSync(p *PlayerRuntime) {
	p.lastSyncPosition = p.Position
	p.lastSyncRotation = p.Rotation
	p.lastSyncIsAlive = p.IsAlive
	p.lastSyncInputSeq = p.LastInputSeq
}

func (s *Scene) fillEnemyFull(e *EnemyRuntime) wire.EnemyState {
	return wire.EnemyState{
		EnemyID: e.ID, TypeID: e.TypeID, Position: e.Position,
		Health: e.Health, MaxHealth: e.MaxHealth, IsAlive: e.IsAlive, WaveID: e.WaveID,
	}
}

func (s *Scene) updateEnemyLastSync(e *EnemyRuntime) {
	e.lastSyncPosition = e.Position
	e.lastSyncHealth = e.Health
	e.lastSyncIsAlive = e.IsAlive
}

func (s *Scene) fillItemFull(it *ItemRuntime) wire.ItemState {
	return wire.ItemState{ItemID: it.ID, TypeID: it.TypeID, Position: it.Position, IsPicked: it.Picked}
}

func (s *Scene) updateItemLastSync(it *ItemRuntime) {
	it.lastSyncPosition = it.Position
	it.lastSyncPicked = it.Picked
}

// syncBuildResult carries the two possible outbound payloads out of
// buildSyncPayloads; either or both may end up empty.
type syncBuildResult struct {
	builtSync  bool
	builtDelta bool
	sync       wire.GameStateSync
	delta      wire.GameStateDeltaSync
}

// buildSyncPayloads is BuildSyncPayloadsLocked. On a forced full sync it
// emits every entity as a full record and clears every dirty tracker.
// Otherwise it walks each dirty-id list once: a low-freq-dirty player or
// a force-syncing enemy still goes out as a full record on the sync
// channel, a force-syncing item becomes a delta entry carrying all three
// item fields, and everything else becomes a masked delta entry. A
// force-synced enemy that still has force-sync budget left is
// re-queued for the next pass so it survives packet loss around its
// spawn or death.
func (s *Scene) buildSyncPayloads(forceFullSync bool) syncBuildResult {
	var out syncBuildResult
	out.sync.Tick = s.Tick
	out.sync.ServerTimeMs = nowMs()
	out.delta.Tick = s.Tick
	out.delta.ServerTimeMs = nowMs()

	if forceFullSync {
		out.sync.IsFullSnapshot = true
		for _, p := range s.players {
			out.sync.Players = append(out.sync.Players, s.fillPlayerFull(p))
			s.updatePlayerLastSync(p)
			p.highFreqDirty = false
			p.lowFreqDirty = false
		}
		for _, e := range s.enemies {
			out.sync.Enemies = append(out.sync.Enemies, s.fillEnemyFull(e))
			s.updateEnemyLastSync(e)
			if e.ForceSyncLeft > 0 {
				e.ForceSyncLeft--
			}
		}
		for _, it := range s.items {
			out.sync.Items = append(out.sync.Items, s.fillItemFull(it))
			s.updateItemLastSync(it)
			it.ForceSyncLeft = 0
		}
		out.builtSync = true
		s.lastFullSent = s.Tick
		s.dirtyPlayers.Clear()
		s.dirtyEnemies.Clear()
		s.dirtyItems.Clear()
		s.lowFreqPlayers.Clear()
		return out
	}

	var nextDirtyEnemies []uint32

	for _, id := range s.dirtyPlayers.Ids() {
		p, ok := s.players[id]
		if !ok {
			continue
		}
		if p.lowFreqDirty {
			out.sync.Players = append(out.sync.Players, s.fillPlayerFull(p))
			out.builtSync = true
			s.updatePlayerLastSync(p)
			p.highFreqDirty = false
			p.lowFreqDirty = false
			continue
		}
		var mask uint32
		if positionChanged(p.Position, p.lastSyncPosition) {
			mask |= wire.PlayerDeltaPosition
		}
		if math.Abs(float64(p.Rotation-p.lastSyncRotation)) > deltaPositionEpsilon {
			mask |= wire.PlayerDeltaRotation
		}
		if p.IsAlive != p.lastSyncIsAlive {
			mask |= wire.PlayerDeltaIsAlive
		}
		if p.LastInputSeq != p.lastSyncInputSeq {
			mask |= wire.PlayerDeltaLastProcessedInputSeq
		}
		p.highFreqDirty = false
		if mask == 0 {
			continue
		}
		d := wire.PlayerDelta{PlayerID: id, Mask: mask}
		if mask&wire.PlayerDeltaPosition != 0 {
			d.Position = p.Position
		}
		if mask&wire.PlayerDeltaRotation != 0 {
			d.Rotation = p.Rotation
		}
		if mask&wire.PlayerDeltaIsAlive != 0 {
			d.IsAlive = p.IsAlive
		}
		if mask&wire.PlayerDeltaLastProcessedInputSeq != 0 {
			d.LastProcessedInputSeq = p.LastInputSeq
		}
		out.delta.Players = append(out.delta.Players, d)
		out.builtDelta = true
		s.updatePlayerLastSync(p)
	}

	for _, id := range s.dirtyEnemies.Ids() {
		e, ok := s.enemies[id]
		if !ok {
			continue
		}
		if e.ForceSyncLeft > 0 {
			out.sync.Enemies = append(out.sync.Enemies, s.fillEnemyFull(e))
			out.builtSync = true
			s.updateEnemyLastSync(e)
			e.ForceSyncLeft--
			if e.ForceSyncLeft > 0 {
				nextDirtyEnemies = append(nextDirtyEnemies, id)
			}
			continue
		}
		var mask uint32
		if positionChanged(e.Position, e.lastSyncPosition) {
			mask |= wire.EnemyDeltaPosition
		}
		if e.Health != e.lastSyncHealth {
			mask |= wire.EnemyDeltaHealth
		}
		if e.IsAlive != e.lastSyncIsAlive {
			mask |= wire.EnemyDeltaIsAlive
		}
		if mask == 0 {
			continue
		}
		d := wire.EnemyDelta{EnemyID: id, Mask: mask}
		if mask&wire.EnemyDeltaPosition != 0 {
			d.Position = e.Position
		}
		if mask&wire.EnemyDeltaHealth != 0 {
			d.Health = e.Health
		}
		if mask&wire.EnemyDeltaIsAlive != 0 {
			d.IsAlive = e.IsAlive
		}
		out.delta.Enemies = append(out.delta.Enemies, d)
		out.builtDelta = true
		s.updateEnemyLastSync(e)
	}

	for _, id := range s.dirtyItems.Ids() {
		it, ok := s.items[id]
		if !ok {
			continue
		}
		var mask uint32
		if it.ForceSyncLeft > 0 {
			mask = wire.ItemDeltaPosition | wire.ItemDeltaIsPicked | wire.ItemDeltaType
		} else {
			if positionChanged(it.Position, it.lastSyncPosition) {
				mask |= wire.ItemDeltaPosition
			}
			if it.Picked != it.lastSyncPicked {
				mask |= wire.ItemDeltaIsPicked
			}
		}
		if mask == 0 {
			continue
		}
		d := wire.ItemDelta{ItemID: id, Mask: mask}
		if mask&wire.ItemDeltaPosition != 0 {
			d.Position = it.Position
		}
		if mask&wire.ItemDeltaIsPicked != 0 {
			d.IsPicked = it.Picked
		}
		if mask&wire.ItemDeltaType != 0 {
			d.TypeID = it.TypeID
		}
		out.delta.Items = append(out.delta.Items, d)
		out.builtDelta = true
		s.updateItemLastSync(it)
		if it.ForceSyncLeft > 0 {
			it.ForceSyncLeft--
		}
	}

	s.dirtyPlayers.Clear()
	s.dirtyItems.Clear()
	s.dirtyEnemies.Clear()
	for _, id := range nextDirtyEnemies {
		s.dirtyEnemies.Mark(id)
	}

	return out
}

// BuildFullSnapshot forces an immediate full sync, used to resync every
// client the instant a reconnect or a scene-wide pause ends.
func (s *Scene) BuildFullSnapshot() wire.GameStateSync {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildSyncPayloads(true).sync
}
