// Package room is the Scene Engine: the per-room fixed-tick simulation
// (input drain, movement, enemy AI, combat, items, upgrades, game-over)
// plus the sync/event pacing that turns scene mutations into wire
// traffic. The teacher repo has no tick-scoped-scene analogue (Lineage
// II's World/Region is persistent); this is built in the teacher's
// locking idiom (a single coarse mutex, ForEach*-style iteration) and
// grounded algorithmically on
// original_source/server/src/game/managers/game_manager_*.cpp.
package room

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/udisondev/lawnmower-room/internal/config"
	"github.com/udisondev/lawnmower-room/internal/datagram"
	"github.com/udisondev/lawnmower-room/internal/room/events"
	"github.com/udisondev/lawnmower-room/internal/room/nav"
	syncpkg "github.com/udisondev/lawnmower-room/internal/room/sync"
	"github.com/udisondev/lawnmower-room/internal/roomreg"
	"github.com/udisondev/lawnmower-room/internal/session"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

// SceneConfig is the immutable-per-match configuration snapshot a Scene
// carries, assembled from the five JSON config files at creation time.
type SceneConfig struct {
	Server  config.ServerConfig
	Roles   config.PlayerRolesConfig
	Enemies config.EnemyTypesConfig
	Items   config.ItemsConfig
	Upgrade config.UpgradeConfig
}

// Broadcaster is the subset of the datagram server a Scene needs.
type Broadcaster interface {
	BroadcastState(roomID uint32, e wire.Envelope) int
	BroadcastDeltaState(roomID uint32, e wire.Envelope) int
	Forget(playerID uint32)
}

// SessionFanout is the subset of the room registry a Scene needs to
// unicast reliable events/snapshots to every live session in its room.
type SessionFanout interface {
	ForEachSession(roomID uint32, fn func(*session.Session))
	MarkPlayerDisconnected(playerID uint32, at time.Time)
	ExpireDisconnected(roomID uint32, graceSeconds float64, now time.Time) []uint32
	FinishGame(roomID uint32)
}

// MetricsSink receives per-tick samples and the end-of-match summary.
type MetricsSink interface {
	RecordSample(roomID uint32, sample TickSample)
	RecordMatchEnd(roomID uint32, summary MatchSummary)
}

// Scene is one active room's authoritative simulation state.
type Scene struct {
	mu sync.Mutex

	RoomID uint32
	cfg    SceneConfig

	fanout SessionFanout
	net    Broadcaster
	metrics MetricsSink

	Tick    uint64
	Elapsed float64
	Paused  bool
	WaveID  int32

	GameOver bool

	rng *rng

	players     map[uint32]*PlayerRuntime
	enemies     map[uint32]*EnemyRuntime
	projectiles map[uint32]*ProjectileRuntime
	items       map[uint32]*ItemRuntime

	nextEnemyID, nextProjectileID, nextItemID uint32

	spawnElapsed float64

	navGrid *nav.Grid

	dirtyPlayers     *syncpkg.DirtySet
	dirtyEnemies     *syncpkg.DirtySet
	dirtyItems       *syncpkg.DirtySet
	lowFreqPlayers   *syncpkg.DirtySet

	pacer *syncpkg.Pacer

	lastDeltaSent   float64
	lastFullSent    uint64

	tickIntervalSeconds float64
	lastTickTime        time.Time

	upgradeStage    UpgradeStage
	upgradePlayerID uint32
	upgradeOptions  []config.UpgradeEffectConfig
	upgradeReason   string

	perf perfAccumulator

	bundle *events.Bundle

	stopCh chan struct{}
	stopOnce sync.Once
}

type perfAccumulator struct {
	ticks       int64
	sumTickMs   float64
	maxTickMs   float64
	samples     []TickSample
}

// NewSceneFromRoomSnapshot builds a Scene ready to run from a room
// registry snapshot (spec §4.5's TryStartGame side effect).
func NewSceneFromRoomSnapshot(snap roomreg.RoomSnapshot, cfg SceneConfig, fanout SessionFanout, net Broadcaster, metrics MetricsSink) *Scene {
	s := &Scene{
		RoomID: snap.RoomID,
		cfg:    cfg,
		fanout: fanout,
		net:    net,
		metrics: metrics,

		WaveID: 1,

		players:     make(map[uint32]*PlayerRuntime),
		enemies:     make(map[uint32]*EnemyRuntime),
		projectiles: make(map[uint32]*ProjectileRuntime),
		items:       make(map[uint32]*ItemRuntime),

		nextEnemyID: 1, nextProjectileID: 1, nextItemID: 1,

		dirtyPlayers:   syncpkg.NewDirtySet(),
		dirtyEnemies:   syncpkg.NewDirtySet(),
		dirtyItems:     syncpkg.NewDirtySet(),
		lowFreqPlayers: syncpkg.NewDirtySet(),

		bundle: events.NewBundle(),

		stopCh: make(chan struct{}),
	}

	s.rng = newRNG(snap.RoomID ^ uint32(time.Now().UnixNano()))
	s.navGrid = nav.NewGrid(cfg.Server.MapWidth, cfg.Server.MapHeight)
	tickRate := cfg.Server.TickRate
	if tickRate <= 0 {
		tickRate = 20
	}
	s.tickIntervalSeconds = 1.0 / float64(tickRate)
	s.pacer = syncpkg.NewPacer(syncpkg.PacerConfig{
		StateSyncRate:         cfg.Server.StateSyncRate,
		IdleLightSeconds:      cfg.Server.SyncIdleLightSeconds,
		IdleHeavySeconds:      cfg.Server.SyncIdleHeavySeconds,
		ScaleLight:            cfg.Server.SyncScaleLight,
		ScaleMedium:           cfg.Server.SyncScaleMedium,
		ScaleIdle:             cfg.Server.SyncScaleIdle,
		FullSyncIntervalTicks: 180,
	})

	s.placePlayers(snap)
	return s
}

func (s *Scene) placePlayers(snap roomreg.RoomSnapshot) {
	count := len(snap.Players)
	if count == 0 {
		return
	}
	centerX := float32(s.cfg.Server.MapWidth) / 2
	centerY := float32(s.cfg.Server.MapHeight) / 2
	const spawnRadius = 120.0

	role, hasRole := s.cfg.Roles.Resolve(0)
	if !hasRole {
		role = config.PlayerRoleConfig{MaxHealth: 100, Attack: 10, AttackSpeed: 1, MoveSpeed: 150}
	}

	for i, p := range snap.Players {
		angle := 2 * math.Pi * float64(i) / float64(count)
		x := centerX + float32(math.Cos(angle))*spawnRadius
		y := centerY + float32(math.Sin(angle))*spawnRadius
		pos := wire.Vec2{X: clampf(x, 0, float32(s.cfg.Server.MapWidth)), Y: clampf(y, 0, float32(s.cfg.Server.MapHeight))}
		rotation := float32(angle * 180 / math.Pi)

		name := p.Name
		if name == "" {
			name = "玩家"
		}
		runtime := newPlayerRuntime(p.PlayerID, name, role, pos, rotation, s.cfg.Upgrade.RefreshLimit)
		s.players[p.PlayerID] = runtime
	}
}

// MarkPlayerDirty marks playerID dirty, additionally flagging the
// low-frequency snapshot channel when lowFreq is true (spec §4.9).
func (s *Scene) MarkPlayerDirty(playerID uint32, lowFreq bool) {
	p, ok := s.players[playerID]
	if !ok {
		return
	}
	p.highFreqDirty = true
	if lowFreq {
		p.lowFreqDirty = true
		s.lowFreqPlayers.Mark(playerID)
	}
	s.dirtyPlayers.Mark(playerID)
}

// MarkEnemyDirty marks enemyID dirty for the next sync pass.
func (s *Scene) MarkEnemyDirty(enemyID uint32) {
	if _, ok := s.enemies[enemyID]; !ok {
		return
	}
	s.dirtyEnemies.Mark(enemyID)
}

// MarkItemDirty marks itemID dirty for the next sync pass.
func (s *Scene) MarkItemDirty(itemID uint32) {
	if _, ok := s.items[itemID]; !ok {
		return
	}
	s.dirtyItems.Mark(itemID)
}

// HandlePlayerInput enqueues in for playerID's next drain; called from
// the datagram/session ingress paths. Dropped silently if the player
// isn't tracked by this scene.
func (s *Scene) HandlePlayerInput(in wire.PlayerInput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.players[in.PlayerID]
	if !ok {
		return
	}
	if s.Paused {
		return
	}
	p.QueueInput(in)
}

// Lock/Unlock expose the scene mutex to callers outside the package
// without leaking internal fields.
func (s *Scene) Lock()   { s.mu.Lock() }
func (s *Scene) Unlock() { s.mu.Unlock() }

// TickInterval returns the fixed wall-clock period between simulation
// steps, used by the tick-driving goroutine to configure its ticker.
func (s *Scene) TickInterval() time.Duration {
	return time.Duration(s.tickIntervalSeconds * float64(time.Second))
}

// Stop closes the channel returned by Done; idempotent.
func (s *Scene) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

func logDebug(enabled bool, msg string, args ...any) {
	if enabled {
		slog.Debug(msg, args...)
	}
}
