// Package events bundles and deduplicates the discrete, reliability-
// critical outcomes of a tick (hits, deaths, drops, level-ups, upgrades,
// game-over) for unicast over the reliable channel. Grounded on
// game_manager_combat_gameover.cpp's stage orchestration and the
// sync_dispatch fallback rule; delivery itself is modeled on the
// teacher's broadcast-to-room fan-out over weak session handles (see
// internal/roomreg).
package events

// Bundle accumulates one tick's priority events, deduplicating
// projectile spawn/despawn entries by id as required by spec §4.10.
type Bundle struct {
	spawnSeen   map[uint32]bool
	despawnSeen map[uint32]bool

	Spawns      []any
	Despawns    []any
	Drops       []any
	AttackState []any
	Hurts       []any
	Deaths      []any
	LevelUps    []any
	Upgrades    []any
	GameOver    any
}

// NewBundle returns an empty per-tick bundle.
func NewBundle() *Bundle {
	return &Bundle{spawnSeen: make(map[uint32]bool), despawnSeen: make(map[uint32]bool)}
}

// AddSpawn records a projectile spawn event keyed by projectileID,
// ignoring duplicates within the tick.
func (b *Bundle) AddSpawn(projectileID uint32, msg any) {
	if b.spawnSeen[projectileID] {
		return
	}
	b.spawnSeen[projectileID] = true
	b.Spawns = append(b.Spawns, msg)
}

// AddDespawn records a projectile despawn event keyed by projectileID,
// ignoring duplicates within the tick.
func (b *Bundle) AddDespawn(projectileID uint32, msg any) {
	if b.despawnSeen[projectileID] {
		return
	}
	b.despawnSeen[projectileID] = true
	b.Despawns = append(b.Despawns, msg)
}

func (b *Bundle) AddDrop(msg any)        { b.Drops = append(b.Drops, msg) }
func (b *Bundle) AddAttackState(msg any) { b.AttackState = append(b.AttackState, msg) }
func (b *Bundle) AddHurt(msg any)        { b.Hurts = append(b.Hurts, msg) }
func (b *Bundle) AddDeath(msg any)       { b.Deaths = append(b.Deaths, msg) }
func (b *Bundle) AddLevelUp(msg any)     { b.LevelUps = append(b.LevelUps, msg) }
func (b *Bundle) AddUpgradeRequest(msg any) { b.Upgrades = append(b.Upgrades, msg) }
func (b *Bundle) SetGameOver(msg any)    { b.GameOver = msg }

// HasPriorityActivity reports whether this tick produced any event this
// bundle would dispatch, used by the sync pacer's activity classification.
func (b *Bundle) HasPriorityActivity() bool {
	return len(b.Spawns) > 0 || len(b.Despawns) > 0 || len(b.Drops) > 0 ||
		len(b.AttackState) > 0 || len(b.Hurts) > 0 || len(b.Deaths) > 0 ||
		len(b.LevelUps) > 0 || len(b.Upgrades) > 0 || b.GameOver != nil
}
