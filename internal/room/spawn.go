package room

import "github.com/udisondev/lawnmower-room/internal/wire"

// reapDeadEnemies implements step 5: remove enemies whose force-sync
// counter has drained and whose death delay has elapsed.
func (s *Scene) reapDeadEnemies(dt float64) {
	for id, e := range s.enemies {
		if e.IsAlive {
			continue
		}
		e.DeadElapsed += dt
		if e.ForceSyncLeft == 0 && e.DeadElapsed >= kEnemyDespawnDelaySeconds {
			delete(s.enemies, id)
		}
	}
}

func (s *Scene) aliveEnemyCount() int {
	n := 0
	for _, e := range s.enemies {
		if e.IsAlive {
			n++
		}
	}
	return n
}

func (s *Scene) aliveConnectedPlayerCount() int {
	n := 0
	for _, p := range s.players {
		if p.Connected && p.IsAlive {
			n++
		}
	}
	return n
}

// spawnWave implements step 6: compute the spawn rate, accumulate spawn
// time, and spawn enemies on a uniformly chosen map edge until the tick
// or alive-cap budget is exhausted.
func (s *Scene) spawnWave(dt float64) {
	cfg := s.cfg.Server
	alivePlayers := s.aliveConnectedPlayerCount()
	rate := cfg.EnemySpawnBasePerSecond +
		cfg.EnemySpawnPerPlayerPerSecond*float64(alivePlayers) +
		cfg.EnemySpawnWaveGrowthPerSecond*float64(s.WaveID-1)
	rate = clampf64(rate, 0, 30)
	if rate <= 0 {
		return
	}

	s.spawnElapsed += dt
	interval := 1.0 / rate
	spawnedThisTick := int32(0)
	maxAlive := cfg.MaxEnemiesAlive
	if maxAlive <= 0 {
		maxAlive = 256
	}
	maxPerTick := cfg.MaxEnemySpawnPerTick
	if maxPerTick <= 0 {
		maxPerTick = 4
	}

	for s.spawnElapsed >= interval && s.aliveEnemyCount() < int(maxAlive) && spawnedThisTick < maxPerTick {
		s.spawnElapsed -= interval
		s.spawnOneEnemy()
		spawnedThisTick++
	}
}

func clampf64(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (s *Scene) spawnOneEnemy() {
	if len(s.cfg.Enemies.Types) == 0 {
		return
	}
	edge := s.rng.IntN(4)
	w := float32(s.cfg.Server.MapWidth)
	h := float32(s.cfg.Server.MapHeight)
	var pos wire.Vec2
	switch edge {
	case 0:
		pos = wire.Vec2{X: float32(s.rng.Float64()) * w, Y: 0}
	case 1:
		pos = wire.Vec2{X: float32(s.rng.Float64()) * w, Y: h}
	case 2:
		pos = wire.Vec2{X: 0, Y: float32(s.rng.Float64()) * h}
	default:
		pos = wire.Vec2{X: w, Y: float32(s.rng.Float64()) * h}
	}

	typeIdx := s.rng.IntN(len(s.cfg.Enemies.Types))
	typeCfg := s.cfg.Enemies.Types[typeIdx]

	id := s.nextEnemyID
	s.nextEnemyID++

	e := &EnemyRuntime{
		ID: id, TypeID: typeCfg.TypeID,
		Position: pos, Health: typeCfg.MaxHealth, MaxHealth: typeCfg.MaxHealth,
		IsAlive: true, WaveID: s.WaveID,
		ForceSyncLeft: kEnemySpawnForceSyncCount,
	}
	s.enemies[id] = e
	s.MarkEnemyDirty(id)
}
