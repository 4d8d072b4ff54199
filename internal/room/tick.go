package room

import (
	"sort"
	"time"

	"github.com/udisondev/lawnmower-room/internal/room/events"
	syncpkg "github.com/udisondev/lawnmower-room/internal/room/sync"
	"github.com/udisondev/lawnmower-room/internal/session"
	"github.com/udisondev/lawnmower-room/internal/wire"
)

// kMaxTickDeltaSeconds bounds both the wall-clock tick delta and the
// per-tick input-draining budget, matching original_source's
// kMaxTickDeltaSeconds (both happen to be 0.1s).
const kMaxTickDeltaSeconds = 0.1

func nowMs() int64 { return time.Now().UnixMilli() }

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}

// tickStepResult is everything computed while the scene mutex was held,
// handed to finalizeTick after it's released.
type tickStepResult struct {
	expiredPlayers []uint32
	pausedOnly     bool
	gameOverNow    bool
	wantSync       bool
	sync           syncBuildResult
}

// Step runs one fixed-rate simulation step. It is ProcessSceneTick: the
// scene mutex is held for input drain through sync-payload construction,
// then released before FinalizeSceneTick's event dispatch, game-over
// finalization, and sync broadcast — so no session write ever happens
// while holding the scene lock. Named Step (not Tick) because Tick is
// already the scene's tick-counter field.
func (s *Scene) Step(now time.Time) {
	perfStart := time.Now()

	s.mu.Lock()
	if s.GameOver {
		s.mu.Unlock()
		return
	}

	dt := s.computeTickDelta(now)
	expired := s.fanout.ExpireDisconnected(s.RoomID, s.cfg.Server.ReconnectGraceSeconds, now)

	result := tickStepResult{expiredPlayers: expired}

	if s.Paused {
		s.recordPerfSample(msSince(perfStart), true)
		result.pausedOnly = true
		s.mu.Unlock()
		s.finalizeTick(result)
		return
	}

	s.simulateFrame(dt)
	result.sync, result.wantSync = s.buildSceneSyncAndPerf(dt, perfStart)
	result.gameOverNow = s.GameOver
	s.mu.Unlock()

	s.finalizeTick(result)
}

// computeTickDelta is ComputeTickDeltaSecondsLocked: the wall-clock
// elapsed time since the previous tick, clamped to [0, kMaxTickDeltaSeconds]
// and falling back to the nominal tick interval on the first tick or a
// degenerate (zero or negative) reading.
func (s *Scene) computeTickDelta(now time.Time) float64 {
	var elapsed time.Duration
	if s.lastTickTime.IsZero() {
		elapsed = time.Duration(s.tickIntervalSeconds * float64(time.Second))
	} else {
		elapsed = now.Sub(s.lastTickTime)
	}
	s.lastTickTime = now

	seconds := elapsed.Seconds()
	if seconds > kMaxTickDeltaSeconds {
		seconds = kMaxTickDeltaSeconds
	}
	if seconds <= 0 {
		seconds = s.tickIntervalSeconds
	}
	return seconds
}

// simulateFrame is SimulateSceneFrameLocked: the fixed mutation order
// for one active tick — inputs, elapsed time, AI, despawns, spawns,
// pickups, combat, upgrade triggers, then history recording.
func (s *Scene) simulateFrame(dt float64) {
	s.processPlayerInputs(dt)
	s.Elapsed += dt
	s.runAI(dt)
	s.reapDeadEnemies(dt)
	s.spawnWave(dt)
	s.pickupItems()
	s.processCombatAndProjectiles(dt)

	if req, ok := s.TryBeginPendingUpgrade(); ok {
		s.bundle.AddUpgradeRequest(events.NewItem(wire.MsgUpgradeRequest, req))
	}

	for _, p := range s.players {
		p.pushHistory(s.Tick)
	}
}

// processPlayerInputs is ProcessPlayerInputsLocked: every player's fire
// cooldown ticks down unconditionally, disconnected players have their
// queue and attack intent cleared so nothing fires in their absence,
// then the queued inputs for connected players are drained.
func (s *Scene) processPlayerInputs(dt float64) {
	for _, p := range s.players {
		p.fireCooldown -= dt
		if !p.Connected {
			p.FlushPendingInputs()
			p.wantsAttacking = false
			p.attackDirStale = true
		}
	}
	s.drainInputs(kMaxTickDeltaSeconds)
}

// buildSceneSyncAndPerf is BuildSceneSyncAndPerfLocked: classify this
// tick's activity, advance the pacer, decide whether a sync is due and
// whether it must be a forced full snapshot, build payloads only when
// something is actually due to go out, then record the perf sample.
func (s *Scene) buildSceneSyncAndPerf(dt float64, perfStart time.Time) (syncBuildResult, bool) {
	hasDirtyPlayers := s.dirtyPlayers.Len() > 0
	hasDirtyEnemies := s.dirtyEnemies.Len() > 0
	hasDirtyItems := s.dirtyItems.Len() > 0
	hasPriority := s.bundle.HasPriorityActivity() || hasDirtyPlayers

	activity := syncpkg.ActivityIdle
	switch {
	case hasPriority:
		activity = syncpkg.ActivityPriority
	case hasDirtyEnemies || hasDirtyItems:
		activity = syncpkg.ActivityEntitiesOnly
	}
	s.pacer.Observe(dt, activity)

	s.Tick++
	shouldSync := s.Elapsed-s.lastDeltaSent >= s.pacer.DeltaInterval(activity)
	forceFullSync := s.pacer.ShouldFullSync(s.Tick)
	hasDirty := hasDirtyPlayers || hasDirtyEnemies || hasDirtyItems
	need := (shouldSync || forceFullSync) && (forceFullSync || hasDirty)

	var res syncBuildResult
	if need {
		res = s.buildSyncPayloads(forceFullSync)
		s.lastDeltaSent = s.Elapsed
	}
	s.recordPerfSample(msSince(perfStart), false)
	return res, need
}

func (s *Scene) recordPerfSample(tickMs float64, paused bool) {
	sample := TickSample{
		Tick: s.Tick, TickDurationMs: tickMs,
		PlayerCount: len(s.players), EnemyCount: len(s.enemies),
		ProjectileCount: len(s.projectiles), ItemCount: len(s.items),
		DirtyPlayers: s.dirtyPlayers.Len(), DirtyEnemies: s.dirtyEnemies.Len(), DirtyItems: s.dirtyItems.Len(),
		Paused: paused,
	}
	s.perf.ticks++
	s.perf.sumTickMs += tickMs
	if tickMs > s.perf.maxTickMs {
		s.perf.maxTickMs = tickMs
	}
	s.perf.samples = append(s.perf.samples, sample)
	if s.metrics != nil {
		s.metrics.RecordSample(s.RoomID, sample)
	}
}

// finalizeTick is FinalizeSceneTick: everything that must happen after
// the scene mutex is released — expired-player cleanup, event dispatch,
// finishing the room on game-over, and the sync broadcast itself.
func (s *Scene) finalizeTick(result tickStepResult) {
	s.cleanupExpiredPlayers(result.expiredPlayers)
	if result.pausedOnly {
		return
	}

	s.mu.Lock()
	bundle := s.bundle
	s.bundle = events.NewBundle()
	s.mu.Unlock()

	events.Dispatch(bundle, s.RoomID, s.fanout)

	if result.gameOverNow {
		s.fanout.FinishGame(s.RoomID)
		if s.metrics != nil {
			s.metrics.RecordMatchEnd(s.RoomID, s.buildMatchSummary())
		}
	}

	if result.wantSync {
		s.dispatchSync(result.sync)
	}
}

func (s *Scene) cleanupExpiredPlayers(ids []uint32) {
	if len(ids) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.players, id)
		s.net.Forget(id)
	}
}

func (s *Scene) buildMatchSummary() MatchSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.perf
	summary := MatchSummary{
		RoomID: s.RoomID, TickCount: p.ticks, SurviveSeconds: s.Elapsed,
		MaxTickMs: p.maxTickMs, MinTickMs: minTickMs(p.samples), P95TickMs: p95TickMs(p.samples),
		Samples: p.samples,
	}
	if p.ticks > 0 {
		summary.AvgTickMs = p.sumTickMs / float64(p.ticks)
	}
	return summary
}

func minTickMs(samples []TickSample) float64 {
	if len(samples) == 0 {
		return 0
	}
	m := samples[0].TickDurationMs
	for _, s := range samples[1:] {
		if s.TickDurationMs < m {
			m = s.TickDurationMs
		}
	}
	return m
}

func p95TickMs(samples []TickSample) float64 {
	if len(samples) == 0 {
		return 0
	}
	sorted := make([]float64, len(samples))
	for i, sm := range samples {
		sorted[i] = sm.TickDurationMs
	}
	sort.Float64s(sorted)
	idx := int(float64(len(sorted)) * 0.95)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func syncHasPayload(sync wire.GameStateSync) bool {
	return len(sync.Players) > 0 || len(sync.Enemies) > 0 || len(sync.Items) > 0
}

func deltaHasPayload(delta wire.GameStateDeltaSync) bool {
	return len(delta.Players) > 0 || len(delta.Enemies) > 0 || len(delta.Items) > 0
}

// dispatchSync is DispatchStateSyncPayloads: a delta always prefers UDP,
// falling back to the reliable channel only if nothing was listening on
// the datagram side. A sync/full snapshot prefers UDP too, but ONLY
// when it isn't a forced full sync and no delta already went out this
// tick on any channel — once a delta has shipped, the snapshot always
// travels over the reliable channel so a client's duplicate-detection
// logic never sees two disagreeing payloads for the same tick.
func (s *Scene) dispatchSync(res syncBuildResult) {
	hasSync := res.builtSync && syncHasPayload(res.sync)
	hasDelta := res.builtDelta && deltaHasPayload(res.delta)
	if !hasSync && !hasDelta {
		return
	}

	if hasDelta {
		env := wire.Envelope{Type: wire.MsgGameStateDeltaSync, Payload: res.delta.Marshal()}
		if s.net.BroadcastDeltaState(s.RoomID, env) == 0 {
			s.sendReliable(wire.MsgGameStateDeltaSync, res.delta)
		}
	}

	if hasSync {
		sentUDP := false
		if !res.sync.IsFullSnapshot && !hasDelta {
			env := wire.Envelope{Type: wire.MsgGameStateSync, Payload: res.sync.Marshal()}
			sentUDP = s.net.BroadcastState(s.RoomID, env) > 0
		}
		if !sentUDP {
			s.sendReliable(wire.MsgGameStateSync, res.sync)
		}
	}
}

func (s *Scene) sendReliable(t wire.MsgType, msg interface{ Marshal() []byte }) {
	s.fanout.ForEachSession(s.RoomID, func(sess *session.Session) {
		_ = sess.Send(t, msg)
	})
}
