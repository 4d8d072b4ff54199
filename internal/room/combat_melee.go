package room

import (
	"math"

	"github.com/udisondev/lawnmower-room/internal/config"
	"github.com/udisondev/lawnmower-room/internal/room/events"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

const (
	kDefaultEnemyAttackIntervalSeconds = 0.8
	kMinEnemyAttackIntervalSeconds     = 0.05
	kMaxEnemyAttackIntervalSeconds     = 10.0
)

// resolveEnemyAttackRadii defaults enter/exit radii to the player+enemy
// collision radii when the type config leaves them unset, and guarantees
// exit >= enter so the hysteresis band is never inverted.
func resolveEnemyAttackRadii(t config.EnemyTypeConfig) (float32, float32) {
	enter := t.AttackEnterRadius
	exit := t.AttackExitRadius
	if enter <= 0 {
		enter = kPlayerCollisionRadius + kEnemyCollisionRadius
	}
	if exit <= 0 {
		exit = enter
	}
	if exit < enter {
		exit = enter
	}
	return enter, exit
}

// selectEnemyMeleeTarget implements the hysteresis-banded sticky target:
// keep the current target as long as it's within the wider exit radius,
// otherwise pick the nearest player within the tighter enter radius.
func (s *Scene) selectEnemyMeleeTarget(e *EnemyRuntime, enterSq, exitSq float32) uint32 {
	if e.Attacking && e.AttackTargetID != 0 {
		if p, ok := s.players[e.AttackTargetID]; ok && p.IsAlive {
			dx := p.Position.X - e.Position.X
			dy := p.Position.Y - e.Position.Y
			if dx*dx+dy*dy <= exitSq {
				return e.AttackTargetID
			}
		}
	}
	var targetID uint32
	bestDistSq := float32(math.MaxFloat32)
	for id, p := range s.players {
		if !p.IsAlive {
			continue
		}
		dx := p.Position.X - e.Position.X
		dy := p.Position.Y - e.Position.Y
		d := dx*dx + dy*dy
		if d > enterSq || d >= bestDistSq {
			continue
		}
		bestDistSq = d
		targetID = id
	}
	return targetID
}

// pushEnemyAttackState emits EnemyAttackStateSync only on an actual
// state change, per spec §4.10's dedup rule for this event type.
func (s *Scene) pushEnemyAttackState(e *EnemyRuntime, attacking bool, targetID uint32) {
	if e.Attacking == attacking && e.AttackTargetID == targetID {
		return
	}
	e.Attacking = attacking
	e.AttackTargetID = targetID
	s.bundle.AddAttackState(events.NewItem(wire.MsgEnemyAttackStateSync, wire.EnemyAttackStateSync{
		Tick: s.Tick, ServerTimeMs: nowMs(), EnemyID: e.ID, Attacking: attacking, TargetID: targetID,
	}))
}

// tryApplyEnemyMeleeDamage applies damage and resets the cooldown only
// once it has fully expired; the cooldown resets even when the type's
// configured damage is zero, since the cooldown and the hurt event are
// independent concerns.
func (s *Scene) tryApplyEnemyMeleeDamage(e *EnemyRuntime, targetID uint32, t config.EnemyTypeConfig) {
	p, ok := s.players[targetID]
	if !ok || !p.IsAlive || e.AttackCooldown > 1e-6 {
		return
	}

	interval := clampf64(t.AttackIntervalSeconds, kMinEnemyAttackIntervalSeconds, kMaxEnemyAttackIntervalSeconds)
	if t.AttackIntervalSeconds <= 0 {
		interval = kDefaultEnemyAttackIntervalSeconds
	}
	e.AttackCooldown = interval

	damage := t.Damage
	if damage <= 0 {
		return
	}
	dealt := damage
	if dealt > p.Health {
		dealt = p.Health
	}
	p.ApplyDamage(damage)
	s.MarkPlayerDirty(p.ID, true)
	s.bundle.AddHurt(events.NewItem(wire.MsgPlayerHurt, wire.PlayerHurt{
		Tick: s.Tick, ServerTimeMs: nowMs(), PlayerID: targetID, AttackerID: e.ID,
		Damage: dealt, HealthAfter: p.Health,
	}))
	if !p.IsAlive {
		p.wantsAttacking = false
	}
}

// processEnemyMeleeStage is ProcessEnemyMeleeStage: every alive enemy
// re-evaluates its melee target with hysteresis, announces attack-state
// transitions, and applies cooldown-gated damage.
func (s *Scene) processEnemyMeleeStage() {
	for _, e := range s.enemies {
		if !e.IsAlive {
			continue
		}
		typeCfg, _ := s.cfg.Enemies.Find(e.TypeID)
		enter, exit := resolveEnemyAttackRadii(typeCfg)
		enterSq, exitSq := enter*enter, exit*exit

		targetID := s.selectEnemyMeleeTarget(e, enterSq, exitSq)
		if targetID == 0 {
			s.pushEnemyAttackState(e, false, 0)
			continue
		}
		s.pushEnemyAttackState(e, true, targetID)
		s.tryApplyEnemyMeleeDamage(e, targetID, typeCfg)
	}
}
