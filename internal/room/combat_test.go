package room

import (
	"math"
	"testing"

	"github.com/udisondev/lawnmower-room/internal/wire"
)

func spawnTestEnemy(s *Scene, id uint32, x, y float32, health int32) *EnemyRuntime {
	e := &EnemyRuntime{ID: id, TypeID: 1, Position: wire.Vec2{X: x, Y: y}, Health: health, MaxHealth: health, IsAlive: true}
	s.enemies[id] = e
	return e
}

func TestPlayerFireStageSpawnsProjectileTowardNearestEnemy(t *testing.T) {
	s, _, _, _ := newTestScene(t, 1)
	p := s.players[1]
	p.Position = wire.Vec2{X: 100, Y: 100}
	p.wantsAttacking = true
	spawnTestEnemy(s, 1, 200, 100, 30)

	params := s.buildCombatParams(0.016)
	s.processPlayerFireStage(0.016, params)

	if len(s.projectiles) != 1 {
		t.Fatalf("expected exactly one projectile spawned, got %d", len(s.projectiles))
	}
	for _, proj := range s.projectiles {
		lenSq := float64(proj.Dir.X*proj.Dir.X + proj.Dir.Y*proj.Dir.Y)
		if math.Abs(lenSq-1) > 1e-3 {
			t.Fatalf("projectile direction must be unit length, got lenSq=%v", lenSq)
		}
		if !proj.Friendly || proj.OwnerID != p.ID {
			t.Fatalf("expected a friendly projectile owned by the firing player")
		}
	}
}

func TestPlayerFireStageNoopWithoutAliveEnemy(t *testing.T) {
	s, _, _, _ := newTestScene(t, 1)
	s.players[1].wantsAttacking = true
	params := s.buildCombatParams(0.016)
	s.processPlayerFireStage(0.016, params)
	if len(s.projectiles) != 0 {
		t.Fatalf("expected no projectile without a live target")
	}
}

func TestProjectileHitKillsEnemyAndGrantsExp(t *testing.T) {
	s, _, _, _ := newTestScene(t, 1)
	owner := s.players[1]
	owner.Attack = 1000
	e := spawnTestEnemy(s, 1, 110, 100, 30)

	s.projectiles[1] = &ProjectileRuntime{
		ID: 1, OwnerID: owner.ID,
		Position: wire.Vec2{X: 100, Y: 100}, Dir: wire.Vec2{X: 1, Y: 0},
		Speed: 1000, Damage: 1000, Friendly: true, Remaining: 1, Radius: 6,
	}

	params := s.buildCombatParams(0.016)
	killed := s.processProjectileHitStage(0.016, params)

	if len(killed) != 1 || killed[0] != e.ID {
		t.Fatalf("expected enemy %d to be reported killed, got %v", e.ID, killed)
	}
	if e.IsAlive {
		t.Fatalf("expected enemy to be dead after lethal hit")
	}
	if e.Health != 0 {
		t.Fatalf("expected enemy health clamped to 0, got %d", e.Health)
	}
	if len(s.projectiles) != 0 {
		t.Fatalf("expected projectile to despawn on hit")
	}
	if owner.Kills != 1 {
		t.Fatalf("expected owner kill count to increment")
	}
	if owner.Exp == 0 && owner.Level == 1 {
		t.Fatalf("expected owner to gain experience from the kill")
	}
}

func TestProjectileExpiresAfterTTL(t *testing.T) {
	s, _, _, _ := newTestScene(t, 1)
	s.projectiles[1] = &ProjectileRuntime{
		ID: 1, OwnerID: 1, Position: wire.Vec2{X: 100, Y: 100}, Dir: wire.Vec2{X: 1, Y: 0},
		Speed: 10, Damage: 1, Friendly: true, Remaining: 0.001, Radius: 6,
	}
	params := s.buildCombatParams(0.016)
	s.processProjectileHitStage(0.016, params)
	if len(s.projectiles) != 0 {
		t.Fatalf("expected expired projectile to despawn")
	}
}

func TestProjectileDespawnsOutOfBounds(t *testing.T) {
	s, _, _, _ := newTestScene(t, 1)
	mapW := float32(s.cfg.Server.MapWidth)
	s.projectiles[1] = &ProjectileRuntime{
		ID: 1, OwnerID: 1, Position: wire.Vec2{X: mapW - 1, Y: 0}, Dir: wire.Vec2{X: 1, Y: 0},
		Speed: 10000, Damage: 1, Friendly: true, Remaining: 10, Radius: 6,
	}
	params := s.buildCombatParams(0.016)
	s.processProjectileHitStage(0.016, params)
	if len(s.projectiles) != 0 {
		t.Fatalf("expected out-of-bounds projectile to despawn")
	}
}

func TestEnemyMeleeDamagesPlayerWithinEnterRadius(t *testing.T) {
	s, _, _, _ := newTestScene(t, 1)
	p := s.players[1]
	p.Position = wire.Vec2{X: 100, Y: 100}
	e := spawnTestEnemy(s, 1, 110, 100, 30)

	s.processEnemyMeleeStage()
	if !e.Attacking || e.AttackTargetID != p.ID {
		t.Fatalf("expected enemy to lock onto the nearby player")
	}
	if p.Health == p.MaxHealth {
		t.Fatalf("expected melee damage to be applied on first contact")
	}
}

func TestEnemyMeleeIgnoresPlayersOutsideEnterRadius(t *testing.T) {
	s, _, _, _ := newTestScene(t, 1)
	p := s.players[1]
	p.Position = wire.Vec2{X: 100, Y: 100}
	e := spawnTestEnemy(s, 1, 5000, 5000, 30)

	s.processEnemyMeleeStage()
	if e.Attacking {
		t.Fatalf("expected enemy to remain idle when no player is in range")
	}
	if p.Health != p.MaxHealth {
		t.Fatalf("expected no damage to a player far outside enter radius")
	}
}

func TestProjectileExpiryTakesPriorityOverSameTickHit(t *testing.T) {
	s, _, _, _ := newTestScene(t, 1)
	e := spawnTestEnemy(s, 1, 105, 100, 30)
	s.projectiles[1] = &ProjectileRuntime{
		ID: 1, OwnerID: 1, Position: wire.Vec2{X: 100, Y: 100}, Dir: wire.Vec2{X: 1, Y: 0},
		Speed: 1000, Damage: 1000, Friendly: true, Remaining: 0.001, Radius: 6,
	}
	params := s.buildCombatParams(0.016)
	killed := s.processProjectileHitStage(0.016, params)
	if len(killed) != 0 {
		t.Fatalf("expected no kill credit when the projectile expires before the hit test, got %v", killed)
	}
	if e.Health != e.MaxHealth || !e.IsAlive {
		t.Fatalf("expected the overlapping enemy to take no damage, got health=%d alive=%v", e.Health, e.IsAlive)
	}
	if len(s.projectiles) != 0 {
		t.Fatalf("expected the expired projectile to despawn")
	}
}

func TestProjectileHitLerpsPositionToInterpolatedHitPoint(t *testing.T) {
	s, _, _, _ := newTestScene(t, 1)
	owner := s.players[1]
	owner.Attack = 1000
	spawnTestEnemy(s, 1, 110, 100, 30)

	proj := &ProjectileRuntime{
		ID: 1, OwnerID: owner.ID,
		Position: wire.Vec2{X: 100, Y: 100}, Dir: wire.Vec2{X: 1, Y: 0},
		Speed: 1000, Damage: 1000, Friendly: true, Remaining: 1, Radius: 6,
	}
	s.projectiles[1] = proj

	params := s.buildCombatParams(0.016)
	s.processProjectileHitStage(0.016, params)

	if len(s.projectiles) != 0 {
		t.Fatalf("expected projectile to despawn on hit")
	}
	// the full, un-lerped step would land at x=116 (100 + 1000*0.016);
	// the enemy sits at x=110, directly on the swept segment, so the
	// hit point must land at the enemy's x, well short of the full step.
	if math.Abs(float64(proj.Position.X-110)) > 0.5 {
		t.Fatalf("expected hit position lerped to the enemy's position (~110), got x=%v", proj.Position.X)
	}
	if proj.Position.X >= 116 {
		t.Fatalf("expected hit position short of the unclamped full-step position, got x=%v", proj.Position.X)
	}
}

func TestGrantExpForCombatEmitsLevelUpPerLevelGained(t *testing.T) {
	s, _, _, _ := newTestScene(t, 1)
	p := s.players[1]
	p.ExpToNext = 10
	s.grantExpForCombat(p, 1000)
	if p.Level < 2 {
		t.Fatalf("expected at least one level gained, got level %d", p.Level)
	}
	if len(s.bundle.LevelUps) == 0 {
		t.Fatalf("expected at least one PlayerLevelUp event bundled")
	}
}
