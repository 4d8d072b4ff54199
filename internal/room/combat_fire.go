package room

import (
	"math"

	"github.com/udisondev/lawnmower-room/internal/room/events"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

// Fallback fire-rate bounds when a room's projectile config leaves an
// attack speed derived interval out of sane range. Sourced from
// original_source's config_.projectile_attack_min/max_interval_seconds,
// which server_config.json has no analogue for in this port.
const (
	kMinAttackIntervalSeconds = 0.05
	kMaxAttackIntervalSeconds = 2.0

	kPlayerTargetRefreshIntervalSeconds = 0.2
	kProjectileMouthOffsetSide          = 36.0
	kProjectileMouthOffsetUp            = 18.0
)

// combatParams is BuildCombatTickParams: the per-tick constants every
// combat stage reads, resolved once instead of re-derived per entity.
type combatParams struct {
	projectileSpeed  float32
	projectileRadius float32
	projectileTTL    float64
	maxShotsPerTick  int32
	allowCatchup     bool
}

func (s *Scene) buildCombatParams(dt float64) combatParams {
	cfg := s.cfg.Server
	speed := cfg.ProjectileSpeed
	if speed <= 0 {
		speed = 420
	}
	radius := cfg.ProjectileRadius
	if radius <= 0 {
		radius = 6
	}
	ttl := cfg.ProjectileTTLSeconds
	if ttl <= 0 {
		ttl = 2.5
	}
	maxShots := cfg.ProjectileMaxShotsPerTick
	if maxShots <= 0 {
		maxShots = 4
	}
	return combatParams{
		projectileSpeed:  speed,
		projectileRadius: radius,
		projectileTTL:    ttl,
		maxShotsPerTick:  maxShots,
		allowCatchup:     dt <= s.tickIntervalSeconds*1.5,
	}
}

func rotationFromDir(dx, dy float32) float32 {
	if math.Abs(float64(dx)) < 1e-6 && math.Abs(float64(dy)) < 1e-6 {
		return 0
	}
	return float32(math.Atan2(float64(dy), float64(dx)) * 180 / math.Pi)
}

func rotationDir(rotationDeg float32) (float32, float32) {
	rad := float64(rotationDeg) * math.Pi / 180
	return float32(math.Cos(rad)), float32(math.Sin(rad))
}

func computeProjectileOrigin(p *PlayerRuntime, facingX float32) (float32, float32) {
	side := float32(kProjectileMouthOffsetSide)
	if facingX < 0 {
		side = -side
	}
	return p.Position.X + side, p.Position.Y + kProjectileMouthOffsetUp
}

func (s *Scene) findNearestEnemyForFire(p *PlayerRuntime) uint32 {
	var bestID uint32
	bestDistSq := math.MaxFloat64
	for id, e := range s.enemies {
		if !e.IsAlive {
			continue
		}
		dx := float64(e.Position.X - p.Position.X)
		dy := float64(e.Position.Y - p.Position.Y)
		d := dx*dx + dy*dy
		if d < bestDistSq {
			bestDistSq = d
			bestID = id
		}
	}
	return bestID
}

// resolveLockedTarget implements the sticky-target-with-periodic-refresh
// rule: keep firing at the same enemy while it's alive, only re-picking
// the nearest target every kPlayerTargetRefreshIntervalSeconds.
func (s *Scene) resolveLockedTarget(p *PlayerRuntime, dt float64) (*EnemyRuntime, bool) {
	p.targetRefreshT += dt
	var target *EnemyRuntime
	if p.lockedTargetID != 0 {
		if e, ok := s.enemies[p.lockedTargetID]; ok && e.IsAlive {
			target = e
		} else {
			p.lockedTargetID = 0
		}
	}
	if target == nil || p.targetRefreshT >= kPlayerTargetRefreshIntervalSeconds {
		p.targetRefreshT = 0
		if nearest := s.findNearestEnemyForFire(p); nearest != 0 {
			p.lockedTargetID = nearest
			target = s.enemies[nearest]
		} else {
			p.lockedTargetID = 0
			target = nil
		}
	}
	if target == nil {
		return nil, false
	}
	return target, true
}

// resolveProjectileDirection implements the direction fallback chain:
// target direction, else cached last-attack direction, else the
// player's facing rotation. The cache is refreshed whenever a real
// target direction is available.
func (s *Scene) resolveProjectileDirection(p *PlayerRuntime, target *EnemyRuntime) (float32, float32, float32) {
	facingX := target.Position.X - p.Position.X
	facingY := target.Position.Y - p.Position.Y
	facingLenSq := float64(facingX*facingX + facingY*facingY)
	if facingLenSq <= 1e-6 {
		if !p.attackDirStale {
			facingX, facingY = p.attackDirCache.X, p.attackDirCache.Y
		} else {
			facingX, facingY = rotationDir(p.Rotation)
		}
	} else {
		inv := float32(1 / math.Sqrt(facingLenSq))
		facingX *= inv
		facingY *= inv
	}

	originX, originY := computeProjectileOrigin(p, facingX)
	dirX := target.Position.X - originX
	dirY := target.Position.Y - originY
	lenSq := float64(dirX*dirX + dirY*dirY)
	if lenSq <= 1e-6 {
		dirX, dirY = facingX, facingY
	} else {
		inv := float32(1 / math.Sqrt(lenSq))
		dirX *= inv
		dirY *= inv
	}

	p.attackDirCache = wire.Vec2{X: dirX, Y: dirY}
	p.attackDirStale = false
	return dirX, dirY, rotationFromDir(dirX, dirY)
}

func playerAttackInterval(attackSpeed uint32) float64 {
	if attackSpeed == 0 {
		return clampf64(1, kMinAttackIntervalSeconds, kMaxAttackIntervalSeconds)
	}
	return clampf64(1/float64(attackSpeed), kMinAttackIntervalSeconds, kMaxAttackIntervalSeconds)
}

func (s *Scene) computeProjectileDamage(p *PlayerRuntime) int32 {
	dmg := int32(p.Attack)
	if dmg < 1 {
		dmg = 1
	}
	if p.HasBuff {
		dmg = int32(math.Round(float64(dmg) * 1.2))
	}
	if p.CriticalHitRate > 0 {
		chance := clampf64(float64(p.CriticalHitRate)/1000.0, 0, 1)
		if s.rng.Float64() < chance {
			dmg *= 2
		}
	}
	return dmg
}

func (s *Scene) spawnProjectileForFire(ownerID uint32, p *PlayerRuntime, params combatParams, damage int32, dirX, dirY, rotation float32) {
	if damage <= 0 {
		return
	}
	startX, startY := computeProjectileOrigin(p, dirX)
	id := s.nextProjectileID
	s.nextProjectileID++

	s.projectiles[id] = &ProjectileRuntime{
		ID: id, OwnerID: ownerID,
		Position:  wire.Vec2{X: startX, Y: startY},
		Dir:       wire.Vec2{X: dirX, Y: dirY},
		Rotation:  rotation,
		Speed:     params.projectileSpeed,
		Damage:    damage,
		HasBuff:   p.HasBuff,
		Friendly:  true,
		Remaining: params.projectileTTL,
		Radius:    params.projectileRadius,
	}

	s.bundle.AddSpawn(id, events.NewItem(wire.MsgProjectileSpawn, wire.ProjectileSpawn{
		Tick: s.Tick, ServerTimeMs: nowMs(), ProjectileID: id, OwnerID: ownerID,
		Position: wire.Vec2{X: startX, Y: startY}, Dir: wire.Vec2{X: dirX, Y: dirY},
		Speed: params.projectileSpeed, IsFriendly: true,
	}))
}

// processPlayerFireStage is ProcessPlayerFireStage: for every player who
// wants to attack, resolve their target and direction, then fire while
// their cooldown allows it: up to min(maxShotsPerTick, 2) shots on a
// tick whose dt is within 1.5 tick intervals, and a single shot on a
// longer (laggy) tick.
func (s *Scene) processPlayerFireStage(dt float64, params combatParams) {
	for ownerID, p := range s.players {
		if !p.IsAlive || !p.wantsAttacking {
			p.lockedTargetID = 0
			p.targetRefreshT = 0
			continue
		}
		target, ok := s.resolveLockedTarget(p, dt)
		if !ok {
			continue
		}
		dirX, dirY, rotation := s.resolveProjectileDirection(p, target)
		interval := playerAttackInterval(p.AttackSpeed)

		maxShots := int32(1)
		if params.allowCatchup {
			maxShots = params.maxShotsPerTick
			if maxShots > 2 {
				maxShots = 2
			}
		}

		for fired := int32(0); p.fireCooldown <= 1e-6 && fired < maxShots; fired++ {
			p.fireCooldown += interval
			damage := s.computeProjectileDamage(p)
			s.spawnProjectileForFire(ownerID, p, params, damage, dirX, dirY, rotation)
		}
	}
}
