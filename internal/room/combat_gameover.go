package room

import (
	"github.com/udisondev/lawnmower-room/internal/room/events"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

func (s *Scene) countAlivePlayers() int {
	n := 0
	for _, p := range s.players {
		if p.IsAlive {
			n++
		}
	}
	return n
}

func (s *Scene) buildGameOverMessage() wire.GameOver {
	players := make([]wire.PlayerSummary, 0, len(s.players))
	for id, p := range s.players {
		players = append(players, wire.PlayerSummary{
			PlayerID: id, Name: p.Name, Level: p.Level, Kills: p.Kills, DamageDealt: p.DamageDealt,
		})
	}
	survive := s.Elapsed
	if survive < 0 {
		survive = 0
	}
	return wire.GameOver{
		Tick: s.Tick, ServerTimeMs: nowMs(), Victory: false,
		SurviveTime: int32(survive), Players: players,
	}
}

// updateGameOverForCombat is UpdateGameOverForCombatStage: once every
// player in the room has died, the match ends in defeat. Victory
// conditions aren't modeled (this room has no win state, only attrition).
func (s *Scene) updateGameOverForCombat() bool {
	if len(s.players) == 0 || s.countAlivePlayers() != 0 {
		return false
	}
	s.GameOver = true
	s.bundle.SetGameOver(events.NewItem(wire.MsgGameOver, s.buildGameOverMessage()))
	return true
}
