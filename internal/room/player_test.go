package room

import (
	"math"
	"testing"

	"github.com/udisondev/lawnmower-room/internal/config"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

func testRole() config.PlayerRoleConfig {
	return config.PlayerRoleConfig{MaxHealth: 100, Attack: 10, AttackSpeed: 1, MoveSpeed: 150}
}

func TestApplyMovementClampsToMapBounds(t *testing.T) {
	p := newPlayerRuntime(1, "p", testRole(), wire.Vec2{X: 5, Y: 5}, 0, 0)
	p.applyMovement(wire.Vec2{X: -1, Y: -1}, 10, 2000, 2000)
	if p.Position.X != 0 || p.Position.Y != 0 {
		t.Fatalf("expected position clamped to (0,0), got %+v", p.Position)
	}
}

func TestApplyMovementSetsRotationFromDirection(t *testing.T) {
	p := newPlayerRuntime(1, "p", testRole(), wire.Vec2{X: 1000, Y: 1000}, 0, 0)
	p.applyMovement(wire.Vec2{X: 0, Y: 1}, 0.01, 2000, 2000)
	if math.Abs(float64(p.Rotation-90)) > 1e-3 {
		t.Fatalf("expected rotation ~90, got %v", p.Rotation)
	}
}

func TestApplyMovementIgnoresInvalidDirectionMagnitudes(t *testing.T) {
	p := newPlayerRuntime(1, "p", testRole(), wire.Vec2{X: 1000, Y: 1000}, 45, 0)
	before := p.Position
	p.applyMovement(wire.Vec2{X: 0.0005, Y: 0}, 1, 2000, 2000) // lenSq < 1e-6
	if p.Position != before || p.Rotation != 45 {
		t.Fatalf("sub-threshold direction must be consumed as a no-op")
	}
	p.applyMovement(wire.Vec2{X: 2, Y: 2}, 1, 2000, 2000) // lenSq = 8 > 1.21
	if p.Position != before || p.Rotation != 45 {
		t.Fatalf("over-threshold direction must be consumed as a no-op")
	}
}

func TestApplyDamageMaintainsAliveInvariant(t *testing.T) {
	p := newPlayerRuntime(1, "p", testRole(), wire.Vec2{}, 0, 0)
	p.ApplyDamage(50)
	if p.Health != 50 || !p.IsAlive {
		t.Fatalf("expected 50 hp and alive, got health=%d alive=%v", p.Health, p.IsAlive)
	}
	p.ApplyDamage(1000)
	if p.Health != 0 || p.IsAlive {
		t.Fatalf("expected 0 hp and dead, got health=%d alive=%v", p.Health, p.IsAlive)
	}
	p.ApplyDamage(10)
	if p.Health != 0 {
		t.Fatalf("health must not go negative, got %d", p.Health)
	}
}

func TestHealClampsToMaxHealth(t *testing.T) {
	p := newPlayerRuntime(1, "p", testRole(), wire.Vec2{}, 0, 0)
	p.ApplyDamage(90)
	p.Heal(1000)
	if p.Health != p.MaxHealth {
		t.Fatalf("expected heal to clamp at max health %d, got %d", p.MaxHealth, p.Health)
	}
}

func TestGrantExpCanGrantMultipleLevelsInOneCall(t *testing.T) {
	p := newPlayerRuntime(1, "p", testRole(), wire.Vec2{}, 0, 0)
	p.ExpToNext = 10
	gained := p.GrantExp(1000)
	if gained < 2 {
		t.Fatalf("expected at least two levels from a large exp grant, got %d", gained)
	}
	if p.PendingUpgradeCount != gained {
		t.Fatalf("expected one pending upgrade credit per level gained")
	}
}

func TestQueueInputDropsRegressingSequence(t *testing.T) {
	p := newPlayerRuntime(1, "p", testRole(), wire.Vec2{}, 0, 0)
	p.LastInputSeq = 10
	p.QueueInput(wire.PlayerInput{Seq: 5})
	if len(p.pendingInputs) != 0 {
		t.Fatalf("input regressing last_input_seq must be dropped")
	}
	p.QueueInput(wire.PlayerInput{Seq: 11})
	if len(p.pendingInputs) != 1 {
		t.Fatalf("input exceeding last_input_seq must be queued")
	}
}

func TestFlushPendingInputsEmptiesQueue(t *testing.T) {
	p := newPlayerRuntime(1, "p", testRole(), wire.Vec2{}, 0, 0)
	p.QueueInput(wire.PlayerInput{Seq: 1})
	p.FlushPendingInputs()
	if len(p.pendingInputs) != 0 {
		t.Fatalf("expected pending inputs to be cleared")
	}
}
