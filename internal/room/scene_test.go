package room

import (
	"testing"
	"time"

	"github.com/udisondev/lawnmower-room/internal/config"
	"github.com/udisondev/lawnmower-room/internal/roomreg"
	"github.com/udisondev/lawnmower-room/internal/session"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

type fakeFanout struct {
	expired   []uint32
	finished  []uint32
}

func (f *fakeFanout) ForEachSession(roomID uint32, fn func(*session.Session)) {}
func (f *fakeFanout) MarkPlayerDisconnected(playerID uint32, at time.Time)    {}
func (f *fakeFanout) ExpireDisconnected(roomID uint32, graceSeconds float64, now time.Time) []uint32 {
	out := f.expired
	f.expired = nil
	return out
}
func (f *fakeFanout) FinishGame(roomID uint32) { f.finished = append(f.finished, roomID) }

type fakeBroadcaster struct {
	stateCalls, deltaCalls int
	recipients             int
}

func (b *fakeBroadcaster) BroadcastState(roomID uint32, e wire.Envelope) int {
	b.stateCalls++
	return b.recipients
}
func (b *fakeBroadcaster) BroadcastDeltaState(roomID uint32, e wire.Envelope) int {
	b.deltaCalls++
	return b.recipients
}
func (b *fakeBroadcaster) Forget(playerID uint32) {}

type fakeMetrics struct {
	samples   []TickSample
	summaries []MatchSummary
}

func (m *fakeMetrics) RecordSample(roomID uint32, sample TickSample)   { m.samples = append(m.samples, sample) }
func (m *fakeMetrics) RecordMatchEnd(roomID uint32, s MatchSummary)    { m.summaries = append(m.summaries, s) }

func testSceneConfig() SceneConfig {
	return SceneConfig{
		Server:  config.DefaultServerConfig(),
		Roles:   config.DefaultPlayerRolesConfig(),
		Enemies: config.DefaultEnemyTypesConfig(),
		Items:   config.DefaultItemsConfig(),
		Upgrade: config.DefaultUpgradeConfig(),
	}
}

func newTestScene(t *testing.T, playerCount int) (*Scene, *fakeFanout, *fakeBroadcaster, *fakeMetrics) {
	t.Helper()
	snap := roomreg.RoomSnapshot{RoomID: 1}
	for i := 0; i < playerCount; i++ {
		snap.Players = append(snap.Players, roomreg.SnapshotPlayer{PlayerID: uint32(i + 1), Name: "p"})
	}
	fanout := &fakeFanout{}
	net := &fakeBroadcaster{recipients: 1}
	metrics := &fakeMetrics{}
	s := NewSceneFromRoomSnapshot(snap, testSceneConfig(), fanout, net, metrics)
	return s, fanout, net, metrics
}

func TestNewSceneFromRoomSnapshotPlacesPlayersInBounds(t *testing.T) {
	s, _, _, _ := newTestScene(t, 3)
	if len(s.players) != 3 {
		t.Fatalf("expected 3 players, got %d", len(s.players))
	}
	for id, p := range s.players {
		if p.Position.X < 0 || p.Position.X > float32(s.cfg.Server.MapWidth) {
			t.Fatalf("player %d x out of bounds: %v", id, p.Position.X)
		}
		if p.Position.Y < 0 || p.Position.Y > float32(s.cfg.Server.MapHeight) {
			t.Fatalf("player %d y out of bounds: %v", id, p.Position.Y)
		}
		if !p.IsAlive || p.Health != p.MaxHealth {
			t.Fatalf("player %d should start alive at full health", id)
		}
	}
}

func TestMarkDirtyDedupesQueuedIDs(t *testing.T) {
	s, _, _, _ := newTestScene(t, 1)
	s.MarkPlayerDirty(1, false)
	s.MarkPlayerDirty(1, false)
	s.MarkPlayerDirty(1, true)
	if s.dirtyPlayers.Len() != 1 {
		t.Fatalf("expected dirty id to appear once, got %d entries", s.dirtyPlayers.Len())
	}
	if s.lowFreqPlayers.Len() != 1 || !s.players[1].lowFreqDirty {
		t.Fatalf("expected low-freq dirty flag to be queued")
	}
}

func TestMarkDirtyIgnoresUnknownIDs(t *testing.T) {
	s, _, _, _ := newTestScene(t, 1)
	s.MarkPlayerDirty(999, false)
	s.MarkEnemyDirty(999)
	s.MarkItemDirty(999)
	if s.dirtyPlayers.Len() != 0 || s.dirtyEnemies.Len() != 0 || s.dirtyItems.Len() != 0 {
		t.Fatalf("unknown ids must not be marked dirty")
	}
}

func TestHandlePlayerInputDroppedWhilePaused(t *testing.T) {
	s, _, _, _ := newTestScene(t, 1)
	s.Paused = true
	s.HandlePlayerInput(wire.PlayerInput{PlayerID: 1, Seq: 1, WantsAttacking: true})
	if len(s.players[1].pendingInputs) != 0 {
		t.Fatalf("input must be dropped while scene is paused")
	}
}

func TestHandlePlayerInputQueuesForKnownPlayer(t *testing.T) {
	s, _, _, _ := newTestScene(t, 1)
	s.HandlePlayerInput(wire.PlayerInput{PlayerID: 1, Seq: 1})
	if len(s.players[1].pendingInputs) != 1 {
		t.Fatalf("expected input to be queued")
	}
}

func TestStepPausedShortCircuitSkipsSimulation(t *testing.T) {
	s, _, _, metrics := newTestScene(t, 1)
	s.Paused = true
	before := s.Tick
	s.Step(time.Now())
	if s.Tick != before {
		t.Fatalf("paused tick must not advance the tick counter")
	}
	if len(metrics.samples) != 1 || !metrics.samples[0].Paused {
		t.Fatalf("expected one paused metrics sample")
	}
}

func TestStepActiveAdvancesTickAndElapsed(t *testing.T) {
	s, _, _, _ := newTestScene(t, 1)
	s.Step(time.Now())
	if s.Tick != 1 {
		t.Fatalf("expected tick to advance to 1, got %d", s.Tick)
	}
	if s.Elapsed <= 0 {
		t.Fatalf("expected elapsed time to advance")
	}
}

func TestStepExpiresDisconnectedPlayers(t *testing.T) {
	s, fanout, net, _ := newTestScene(t, 2)
	fanout.expired = []uint32{2}
	s.Step(time.Now())
	if _, ok := s.players[2]; ok {
		t.Fatalf("expected expired player to be removed")
	}
	if _, ok := s.players[1]; !ok {
		t.Fatalf("player 1 should remain")
	}
	_ = net
}

func TestGameOverStopsSimulationAndFinishesRoom(t *testing.T) {
	s, fanout, _, metrics := newTestScene(t, 1)
	s.players[1].ApplyDamage(s.players[1].MaxHealth)
	if s.players[1].IsAlive {
		t.Fatalf("player should be dead after lethal damage")
	}
	s.Step(time.Now())
	if !s.GameOver {
		t.Fatalf("expected game over once no player is alive")
	}
	if len(fanout.finished) != 1 || fanout.finished[0] != s.RoomID {
		t.Fatalf("expected FinishGame to be called once for the room")
	}
	if len(metrics.summaries) != 1 {
		t.Fatalf("expected one match-end summary to be recorded")
	}

	beforeTick := s.Tick
	s.Step(time.Now())
	if s.Tick != beforeTick {
		t.Fatalf("scene must not simulate further ticks after game over")
	}
}
