package room

import (
	"math"

	"github.com/udisondev/lawnmower-room/internal/room/events"
	"github.com/udisondev/lawnmower-room/internal/room/nav"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

// kHitGridMinEnemies is the enemy-count threshold above which projectile
// hit testing buckets enemies into a spatial grid instead of testing
// every projectile against every enemy.
const kHitGridMinEnemies = 16

type enemyHitGrid struct {
	enabled  bool
	cellsX   int
	cellsY   int
	cellSize float32
	cells    [][]*EnemyRuntime
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minf32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxf32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func (s *Scene) buildEnemyHitGrid() enemyHitGrid {
	var g enemyHitGrid
	g.enabled = len(s.enemies) >= kHitGridMinEnemies && len(s.projectiles) > 0
	if !g.enabled {
		return g
	}
	g.cellSize = nav.KCellSize
	mapW := float32(s.cfg.Server.MapWidth)
	mapH := float32(s.cfg.Server.MapHeight)
	g.cellsX = int(math.Ceil(float64(mapW / g.cellSize)))
	if g.cellsX < 1 {
		g.cellsX = 1
	}
	g.cellsY = int(math.Ceil(float64(mapH / g.cellSize)))
	if g.cellsY < 1 {
		g.cellsY = 1
	}
	g.cells = make([][]*EnemyRuntime, g.cellsX*g.cellsY)
	maxCX, maxCY := g.cellsX-1, g.cellsY-1
	for _, e := range s.enemies {
		if !e.IsAlive {
			continue
		}
		cx := clampInt(int(e.Position.X/g.cellSize), 0, maxCX)
		cy := clampInt(int(e.Position.Y/g.cellSize), 0, maxCY)
		idx := cy*g.cellsX + cx
		g.cells[idx] = append(g.cells[idx], e)
	}
	return g
}

// segmentCircleOverlap is the continuous swept hit test: does segment
// a->b pass within radius of circle center c. Returns the parametric t
// along the segment of the closest approach when it does.
func segmentCircleOverlap(ax, ay, bx, by, cx, cy, radius float32) (float32, bool) {
	dx := bx - ax
	dy := by - ay
	lenSq := dx*dx + dy*dy
	t := float32(0)
	if lenSq > 1e-6 {
		t = ((cx-ax)*dx + (cy-ay)*dy) / lenSq
		t = clampf(t, 0, 1)
	}
	closestX := ax + dx*t
	closestY := ay + dy*t
	ddx := closestX - cx
	ddy := closestY - cy
	distSq := ddx*ddx + ddy*ddy
	if distSq <= radius*radius {
		return t, true
	}
	return 0, false
}

func (s *Scene) findProjectileHit(params combatParams, grid enemyHitGrid, prevX, prevY, nextX, nextY float32) (*EnemyRuntime, float32, bool) {
	combinedRadius := params.projectileRadius + kEnemyCollisionRadius
	var hitEnemy *EnemyRuntime
	bestT := float32(math.MaxFloat32)
	test := func(e *EnemyRuntime) {
		if !e.IsAlive {
			return
		}
		t, ok := segmentCircleOverlap(prevX, prevY, nextX, nextY, e.Position.X, e.Position.Y, combinedRadius)
		if !ok || t >= bestT {
			return
		}
		bestT = t
		hitEnemy = e
	}

	if grid.enabled {
		minX := minf32(prevX, nextX) - combinedRadius
		maxX := maxf32(prevX, nextX) + combinedRadius
		minY := minf32(prevY, nextY) - combinedRadius
		maxY := maxf32(prevY, nextY) + combinedRadius
		maxCX, maxCY := grid.cellsX-1, grid.cellsY-1
		minCX := clampInt(int(minX/grid.cellSize), 0, maxCX)
		maxCXr := clampInt(int(maxX/grid.cellSize), 0, maxCX)
		minCY := clampInt(int(minY/grid.cellSize), 0, maxCY)
		maxCYr := clampInt(int(maxY/grid.cellSize), 0, maxCY)
		for cy := minCY; cy <= maxCYr; cy++ {
			for cx := minCX; cx <= maxCXr; cx++ {
				for _, e := range grid.cells[cy*grid.cellsX+cx] {
					test(e)
				}
			}
		}
	} else {
		for _, e := range s.enemies {
			test(e)
		}
	}
	return hitEnemy, bestT, hitEnemy != nil
}

func (s *Scene) grantExpForCombat(p *PlayerRuntime, expReward uint32) {
	if expReward == 0 {
		return
	}
	beforeLevel := p.Level
	gained := p.GrantExp(expReward)
	s.MarkPlayerDirty(p.ID, true)
	for i := int32(0); i < gained; i++ {
		s.bundle.AddLevelUp(events.NewItem(wire.MsgPlayerLevelUp, wire.PlayerLevelUp{
			Tick: s.Tick, ServerTimeMs: nowMs(), PlayerID: p.ID, NewLevel: beforeLevel + i + 1,
		}))
	}
}

func (s *Scene) applyProjectileHit(proj *ProjectileRuntime, hit *EnemyRuntime, killed *[]uint32) {
	dealt := proj.Damage
	if dealt > hit.Health {
		dealt = hit.Health
	}
	if dealt < 0 {
		dealt = 0
	}
	hit.Health -= proj.Damage
	if hit.Health < 0 {
		hit.Health = 0
	}
	s.MarkEnemyDirty(hit.ID)

	if owner, ok := s.players[proj.OwnerID]; ok {
		owner.DamageDealt += int64(dealt)
	}
	if hit.Health > 0 {
		return
	}

	hit.IsAlive = false
	hit.KillerPlayerID = proj.OwnerID
	hit.DeadElapsed = 0
	if hit.ForceSyncLeft < kEnemySpawnForceSyncCount {
		hit.ForceSyncLeft = kEnemySpawnForceSyncCount
	}
	s.MarkEnemyDirty(hit.ID)

	if hit.Attacking || hit.AttackTargetID != 0 {
		hit.Attacking = false
		hit.AttackTargetID = 0
		s.bundle.AddAttackState(events.NewItem(wire.MsgEnemyAttackStateSync, wire.EnemyAttackStateSync{
			Tick: s.Tick, ServerTimeMs: nowMs(), EnemyID: hit.ID, Attacking: false, TargetID: 0,
		}))
	}

	*killed = append(*killed, hit.ID)
	s.bundle.AddDeath(events.NewItem(wire.MsgEnemyDied, wire.EnemyDied{
		Tick: s.Tick, ServerTimeMs: nowMs(), EnemyID: hit.ID, KillerID: proj.OwnerID,
	}))

	if owner, ok := s.players[proj.OwnerID]; ok {
		owner.Kills++
		typeCfg, _ := s.cfg.Enemies.Find(hit.TypeID)
		s.grantExpForCombat(owner, typeCfg.ExpReward)
	}
}

// processProjectileHitStage is ProcessProjectileHitStage: advance every
// projectile along its straight-line path, checking expiry first, then
// the swept segment against enemies, then map bounds. A projectile that
// expires on the same tick it would otherwise land a hit despawns
// EXPIRED with no damage. Returns the ids of enemies killed this tick
// for the drop stage.
func (s *Scene) processProjectileHitStage(dt float64, params combatParams) []uint32 {
	mapW := float32(s.cfg.Server.MapWidth)
	mapH := float32(s.cfg.Server.MapHeight)
	grid := s.buildEnemyHitGrid()
	var killed []uint32

	for id, proj := range s.projectiles {
		proj.Remaining -= dt
		prevX, prevY := proj.Position.X, proj.Position.Y
		step := float32(math.Max(0, dt))
		nextX := prevX + proj.Dir.X*proj.Speed*step
		nextY := prevY + proj.Dir.Y*proj.Speed*step
		proj.Position.X = nextX
		proj.Position.Y = nextY

		despawn := false
		reason := wire.DespawnExpired

		if proj.Remaining <= 0 {
			despawn = true
			reason = wire.DespawnExpired
		} else if hit, hitT, ok := s.findProjectileHit(params, grid, prevX, prevY, nextX, nextY); ok {
			despawn = true
			reason = wire.DespawnHit
			proj.Position.X = prevX + (nextX-prevX)*hitT
			proj.Position.Y = prevY + (nextY-prevY)*hitT
			s.applyProjectileHit(proj, hit, &killed)
		} else if proj.Position.X < 0 || proj.Position.Y < 0 || proj.Position.X > mapW || proj.Position.Y > mapH {
			despawn = true
			reason = wire.DespawnOutOfBounds
		}

		if despawn {
			s.bundle.AddDespawn(id, events.NewItem(wire.MsgProjectileDespawn, wire.ProjectileDespawn{
				Tick: s.Tick, ServerTimeMs: nowMs(), ProjectileID: id, Reason: reason, HitPosition: proj.Position,
			}))
			delete(s.projectiles, id)
		}
	}
	return killed
}
