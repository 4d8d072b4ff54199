package room

import (
	"math"

	"github.com/udisondev/lawnmower-room/internal/wire"
)

// runAI implements step 7: pick the nearest alive connected player as
// target, replan a path to them on a fixed cadence or on target change,
// and advance up to kEnemyMaxWaypointsPerTick waypoints toward the goal.
func (s *Scene) runAI(dt float64) {
	for _, e := range s.enemies {
		if e.AttackCooldown > 0 {
			e.AttackCooldown -= dt
			if e.AttackCooldown < 0 {
				e.AttackCooldown = 0
			}
		}
		if !e.IsAlive {
			continue
		}
		typeCfg, _ := s.cfg.Enemies.Find(e.TypeID)

		target, targetPos, found := s.nearestAlivePlayer(e.Position)
		if !found {
			continue
		}
		if target != e.TargetID {
			e.TargetID = target
			e.Path = nil
			e.PathCursor = 0
			e.ReplanTimer = 0
		}

		e.ReplanTimer -= dt
		if e.ReplanTimer <= 0 || e.PathCursor >= len(e.Path) {
			start := s.navGrid.WorldToCell(e.Position.X, e.Position.Y)
			goal := s.navGrid.WorldToCell(targetPos.X, targetPos.Y)
			e.Path = s.navGrid.FindPath(start, goal)
			e.PathCursor = 0
			e.ReplanTimer = kEnemyReplanInterval
		}

		s.advanceEnemyAlongPath(e, typeCfg.MoveSpeed, dt)
	}
}

func (s *Scene) nearestAlivePlayer(from wire.Vec2) (uint32, wire.Vec2, bool) {
	var bestID uint32
	var bestPos wire.Vec2
	bestDistSq := math.MaxFloat64
	found := false
	for _, p := range s.players {
		if !p.Connected || !p.IsAlive {
			continue
		}
		dx := float64(p.Position.X - from.X)
		dy := float64(p.Position.Y - from.Y)
		d := dx*dx + dy*dy
		if !found || d < bestDistSq {
			bestDistSq = d
			bestID = p.ID
			bestPos = p.Position
			found = true
		}
	}
	return bestID, bestPos, found
}

func (s *Scene) advanceEnemyAlongPath(e *EnemyRuntime, moveSpeed float32, dt float64) {
	if len(e.Path) == 0 || e.PathCursor >= len(e.Path) {
		return
	}
	moved := 0
	for moved < kEnemyMaxWaypointsPerTick && e.PathCursor < len(e.Path) {
		wp := e.Path[e.PathCursor]
		wx, wy := s.navGrid.CellToWorldCenter(wp)
		dx := float64(wx - e.Position.X)
		dy := float64(wy - e.Position.Y)
		distSq := dx*dx + dy*dy
		if distSq <= kEnemyWaypointReachRadius*kEnemyWaypointReachRadius {
			e.PathCursor++
			moved++
			continue
		}

		dist := math.Sqrt(distSq)
		step := float64(moveSpeed) * dt
		if step >= dist {
			e.Position.X = wx
			e.Position.Y = wy
			e.PathCursor++
		} else {
			e.Position.X += float32(dx / dist * step)
			e.Position.Y += float32(dy / dist * step)
		}
		s.MarkEnemyDirty(e.ID)
		break
	}
}
