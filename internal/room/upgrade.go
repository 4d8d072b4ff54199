package room

import (
	"log/slog"
	"math"

	"github.com/udisondev/lawnmower-room/internal/config"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

const kUpgradeOptionCount = 3

// BeginUpgrade is BeginUpgradeLocked: pauses the whole scene and moves
// playerID's upgrade stage to RequestSent. Every player's queued input
// is flushed and their attack intent cleared, not just the upgrading
// player's, so nothing sneaks a move or a shot in while the room waits.
func (s *Scene) BeginUpgrade(playerID uint32, reason string) (wire.UpgradeRequest, bool) {
	s.Paused = true
	s.upgradePlayerID = playerID
	s.upgradeStage = UpgradeRequestSent
	s.upgradeReason = reason
	s.upgradeOptions = nil
	for _, p := range s.players {
		p.FlushPendingInputs()
		p.wantsAttacking = false
	}
	return wire.UpgradeRequest{PlayerID: playerID, Reason: reason}, true
}

func (s *Scene) resetUpgrade() {
	s.Paused = false
	s.upgradePlayerID = 0
	s.upgradeStage = UpgradeNone
	s.upgradeReason = ""
	s.upgradeOptions = nil
}

// buildUpgradeOptions is BuildUpgradeOptionsLocked: sample
// kUpgradeOptionCount effects without replacement, weighted by each
// candidate's configured weight, refilling the candidate pool from the
// full effect list whenever it runs dry before reaching the count.
func (s *Scene) buildUpgradeOptions() {
	s.upgradeOptions = nil
	pool := s.cfg.Upgrade.Effects
	if len(pool) == 0 {
		return
	}
	candidates := make([]int, len(pool))
	for i := range pool {
		candidates[i] = i
	}
	for len(s.upgradeOptions) < kUpgradeOptionCount {
		if len(candidates) == 0 {
			candidates = make([]int, len(pool))
			for i := range pool {
				candidates[i] = i
			}
		}
		var totalWeight float64
		for _, idx := range candidates {
			w := pool[idx].Weight
			if w < 1 {
				w = 1
			}
			totalWeight += w
		}
		if totalWeight <= 0 {
			break
		}
		roll := s.rng.Float64() * totalWeight
		chosenPos := 0
		for ; chosenPos < len(candidates)-1; chosenPos++ {
			w := pool[candidates[chosenPos]].Weight
			if w < 1 {
				w = 1
			}
			if roll < w {
				break
			}
			roll -= w
		}
		s.upgradeOptions = append(s.upgradeOptions, pool[candidates[chosenPos]])
		candidates = append(candidates[:chosenPos], candidates[chosenPos+1:]...)
	}
}

func clampi64(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// applyUpgradeEffect is ApplyUpgradeEffect: each kind clamps the
// resulting stat (not just the delta) to the per-kind ranges of
// config.ClampEffectValue.
func applyUpgradeEffect(p *PlayerRuntime, effect config.UpgradeEffectConfig) {
	delta := int64(math.Round(float64(effect.Value)))
	switch effect.Type {
	case config.UpgradeMoveSpeed:
		p.MoveSpeed = config.ClampEffectValue(effect.Type, p.MoveSpeed+effect.Value)
	case config.UpgradeAttack:
		p.Attack = uint32(clampi64(int64(p.Attack)+delta, 0, 100000))
	case config.UpgradeAttackSpeed:
		p.AttackSpeed = uint32(clampi64(int64(p.AttackSpeed)+delta, 1, 1000))
	case config.UpgradeMaxHealth:
		next := clampi64(int64(p.MaxHealth)+delta, 1, 100000)
		p.MaxHealth = int32(next)
		if int64(p.Health) > next {
			p.Health = int32(next)
		}
	case config.UpgradeCriticalRate:
		p.CriticalHitRate = uint32(clampi64(int64(p.CriticalHitRate)+delta, 0, 10000))
	}
}

// TryBeginPendingUpgrade is TryBeginPendingUpgradeLocked: once per tick,
// if no upgrade is in progress, offer one to the first player (by
// iteration order) with a pending level-up credit.
func (s *Scene) TryBeginPendingUpgrade() (wire.UpgradeRequest, bool) {
	if s.upgradeStage != UpgradeNone {
		return wire.UpgradeRequest{}, false
	}
	var candidate uint32
	for id, p := range s.players {
		if p.PendingUpgradeCount > 0 {
			candidate = id
			break
		}
	}
	if candidate == 0 {
		return wire.UpgradeRequest{}, false
	}
	return s.BeginUpgrade(candidate, "LEVEL_UP")
}

// HandleUpgradeRequestAck is HandleUpgradeRequestAck: the offered
// player acknowledged receipt of the pause; build and send their
// options, advancing to OptionsSent.
func (s *Scene) HandleUpgradeRequestAck(playerID uint32) (wire.UpgradeOptions, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upgradeStage != UpgradeRequestSent || s.upgradePlayerID != playerID {
		slog.Debug("room: ignoring UpgradeRequestAck stage/sender mismatch",
			"room", s.RoomID, "player", playerID, "stage", s.upgradeStage, "expected_player", s.upgradePlayerID)
		return wire.UpgradeOptions{}, false
	}
	p, ok := s.players[playerID]
	if !ok {
		return wire.UpgradeOptions{}, false
	}
	s.buildUpgradeOptions()
	if len(s.upgradeOptions) == 0 {
		s.resetUpgrade()
		return wire.UpgradeOptions{}, false
	}
	s.upgradeStage = UpgradeOptionsSent

	opts := make([]wire.UpgradeOption, len(s.upgradeOptions))
	for i, e := range s.upgradeOptions {
		opts[i] = wire.UpgradeOption{Index: int32(i), Effect: wire.UpgradeEffect{Type: string(e.Type), Level: e.Level, Value: e.Value}}
	}
	return wire.UpgradeOptions{PlayerID: playerID, RefreshRemaining: p.RefreshRemaining, Options: opts}, true
}

// HandleUpgradeOptionsAck is HandleUpgradeOptionsAck: the client
// confirms it rendered the options; advance to WaitingSelect.
func (s *Scene) HandleUpgradeOptionsAck(playerID uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upgradeStage != UpgradeOptionsSent || s.upgradePlayerID != playerID {
		slog.Debug("room: ignoring UpgradeOptionsAck stage/sender mismatch",
			"room", s.RoomID, "player", playerID, "stage", s.upgradeStage, "expected_player", s.upgradePlayerID)
		return false
	}
	s.upgradeStage = UpgradeWaitingSelect
	return true
}

// UpgradeSelectResult carries HandleUpgradeSelect's side effects back
// to the caller for dispatch after the scene mutex is released.
type UpgradeSelectResult struct {
	Ack         wire.UpgradeSelectAck
	NextRequest *wire.UpgradeRequest
	Resumed     bool
}

// HandleUpgradeSelect is HandleUpgradeSelect: apply the chosen effect,
// then either chain into the next pending level's upgrade offer or, if
// none remain, resume the scene and signal the caller to broadcast a
// full resync.
func (s *Scene) HandleUpgradeSelect(playerID uint32, optionIndex int32) (UpgradeSelectResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upgradeStage != UpgradeWaitingSelect || s.upgradePlayerID != playerID {
		slog.Debug("room: ignoring UpgradeSelect stage/sender mismatch",
			"room", s.RoomID, "player", playerID, "stage", s.upgradeStage, "expected_player", s.upgradePlayerID)
		return UpgradeSelectResult{}, false
	}
	if optionIndex < 0 || int(optionIndex) >= len(s.upgradeOptions) {
		slog.Debug("room: ignoring UpgradeSelect out-of-range option",
			"room", s.RoomID, "player", playerID, "option_index", optionIndex, "option_count", len(s.upgradeOptions))
		return UpgradeSelectResult{}, false
	}
	p, ok := s.players[playerID]
	if !ok {
		return UpgradeSelectResult{}, false
	}

	applyUpgradeEffect(p, s.upgradeOptions[optionIndex])
	s.MarkPlayerDirty(playerID, true)
	if p.PendingUpgradeCount > 0 {
		p.PendingUpgradeCount--
	}

	result := UpgradeSelectResult{Ack: wire.UpgradeSelectAck{Success: true}}
	if p.PendingUpgradeCount > 0 {
		if req, ok := s.BeginUpgrade(playerID, "LEVEL_UP"); ok {
			result.NextRequest = &req
		}
	} else {
		s.resetUpgrade()
		result.Resumed = true
	}
	return result, true
}

// HandleUpgradeRefreshRequest is HandleUpgradeRefreshRequest: spend one
// of the player's refresh credits to reroll the current option set.
func (s *Scene) HandleUpgradeRefreshRequest(playerID uint32) (wire.UpgradeRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upgradeStage == UpgradeNone || s.upgradePlayerID != playerID {
		slog.Debug("room: ignoring UpgradeRefreshRequest stage/sender mismatch",
			"room", s.RoomID, "player", playerID, "stage", s.upgradeStage, "expected_player", s.upgradePlayerID)
		return wire.UpgradeRequest{}, false
	}
	p, ok := s.players[playerID]
	if !ok || p.RefreshRemaining <= 0 {
		slog.Debug("room: ignoring UpgradeRefreshRequest with no refresh credit",
			"room", s.RoomID, "player", playerID)
		return wire.UpgradeRequest{}, false
	}
	p.RefreshRemaining--
	return s.BeginUpgrade(playerID, "REFRESH")
}
