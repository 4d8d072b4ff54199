package room

import (
	"testing"

	"github.com/udisondev/lawnmower-room/internal/config"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

func TestBeginUpgradePausesAndFlushesAllPlayers(t *testing.T) {
	s, _, _, _ := newTestScene(t, 2)
	s.players[1].QueueInput(wire.PlayerInput{Seq: 1})
	s.players[2].QueueInput(wire.PlayerInput{Seq: 1})
	s.players[1].wantsAttacking = true
	s.players[2].wantsAttacking = true

	req, ok := s.BeginUpgrade(1, "LEVEL_UP")
	if !ok || req.PlayerID != 1 || req.Reason != "LEVEL_UP" {
		t.Fatalf("unexpected BeginUpgrade result: %+v ok=%v", req, ok)
	}
	if !s.Paused {
		t.Fatalf("BeginUpgrade must pause the scene")
	}
	if s.upgradeStage != UpgradeRequestSent {
		t.Fatalf("expected stage RequestSent, got %v", s.upgradeStage)
	}
	for id, p := range s.players {
		if len(p.pendingInputs) != 0 {
			t.Fatalf("player %d still has queued inputs after BeginUpgrade", id)
		}
		if p.wantsAttacking {
			t.Fatalf("player %d still wants to attack after BeginUpgrade", id)
		}
	}
}

func TestUpgradeFullCycleResumesSceneOnLastSelection(t *testing.T) {
	s, _, _, _ := newTestScene(t, 1)
	s.players[1].PendingUpgradeCount = 1

	req, ok := s.TryBeginPendingUpgrade()
	if !ok || req.PlayerID != 1 {
		t.Fatalf("expected pending upgrade to be offered to player 1")
	}

	opts, ok := s.HandleUpgradeRequestAck(1)
	if !ok || len(opts.Options) != 3 {
		t.Fatalf("expected 3 upgrade options, got %d ok=%v", len(opts.Options), ok)
	}
	if s.upgradeStage != UpgradeOptionsSent {
		t.Fatalf("expected stage OptionsSent, got %v", s.upgradeStage)
	}

	if !s.HandleUpgradeOptionsAck(1) {
		t.Fatalf("expected options ack to succeed")
	}
	if s.upgradeStage != UpgradeWaitingSelect {
		t.Fatalf("expected stage WaitingSelect, got %v", s.upgradeStage)
	}

	result, ok := s.HandleUpgradeSelect(1, 0)
	if !ok || !result.Ack.Success {
		t.Fatalf("expected select to succeed")
	}
	if !result.Resumed {
		t.Fatalf("expected the scene to resume once no upgrades remain pending")
	}
	if s.Paused {
		t.Fatalf("scene should be unpaused after the final upgrade selection")
	}
	if s.upgradeStage != UpgradeNone {
		t.Fatalf("expected stage to reset to None, got %v", s.upgradeStage)
	}
}

func TestUpgradeSelectChainsToNextPendingLevel(t *testing.T) {
	s, _, _, _ := newTestScene(t, 1)
	s.players[1].PendingUpgradeCount = 2

	s.TryBeginPendingUpgrade()
	s.HandleUpgradeRequestAck(1)
	s.HandleUpgradeOptionsAck(1)
	result, ok := s.HandleUpgradeSelect(1, 0)
	if !ok {
		t.Fatalf("expected first select to succeed")
	}
	if result.Resumed {
		t.Fatalf("scene must not resume while a pending upgrade remains")
	}
	if result.NextRequest == nil || result.NextRequest.PlayerID != 1 {
		t.Fatalf("expected a chained upgrade request for player 1")
	}
	if s.upgradeStage != UpgradeRequestSent {
		t.Fatalf("expected stage to loop back to RequestSent, got %v", s.upgradeStage)
	}
}

func TestUpgradeHandlersIgnoreWrongStageOrPlayer(t *testing.T) {
	s, _, _, _ := newTestScene(t, 2)
	s.players[1].PendingUpgradeCount = 1
	s.TryBeginPendingUpgrade()

	if _, ok := s.HandleUpgradeRequestAck(2); ok {
		t.Fatalf("ack from the wrong player must be ignored")
	}
	if ok := s.HandleUpgradeOptionsAck(1); ok {
		t.Fatalf("options ack must be ignored before the options stage")
	}
	if _, ok := s.HandleUpgradeSelect(1, 0); ok {
		t.Fatalf("select must be ignored before WaitingSelect")
	}
}

func TestApplyUpgradeEffectClampsResultingStat(t *testing.T) {
	p := newPlayerRuntime(1, "p", testRole(), wire.Vec2{}, 0, 0)
	p.AttackSpeed = 1
	applyUpgradeEffect(p, config.UpgradeEffectConfig{Type: config.UpgradeAttackSpeed, Value: -100})
	if p.AttackSpeed != 1 {
		t.Fatalf("attack speed must clamp to its floor of 1, got %d", p.AttackSpeed)
	}
}

func TestApplyUpgradeEffectClampsHealthDownWithMaxHealth(t *testing.T) {
	p := newPlayerRuntime(1, "p", testRole(), wire.Vec2{}, 0, 0)
	p.Health = p.MaxHealth
	applyUpgradeEffect(p, config.UpgradeEffectConfig{Type: config.UpgradeMaxHealth, Value: -50})
	if p.Health > p.MaxHealth {
		t.Fatalf("current health must be clamped down alongside max health, got health=%d max=%d", p.Health, p.MaxHealth)
	}
}
