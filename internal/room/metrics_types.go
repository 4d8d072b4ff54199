package room

// TickSample is one tick's perf/activity sample, recorded every tick
// (including paused ticks) per spec §4.6 step 13.
type TickSample struct {
	Tick         uint64
	TickDurationMs float64
	PlayerCount  int
	EnemyCount   int
	ProjectileCount int
	ItemCount    int
	DirtyPlayers int
	DirtyEnemies int
	DirtyItems   int
	Paused       bool
}

// MatchSummary is the end-of-match perf snapshot handed to the metrics
// sink for persistence (spec §6's room_<id>_run_<epoch>.json).
type MatchSummary struct {
	RoomID      uint32
	TickCount   int64
	AvgTickMs   float64
	MaxTickMs   float64
	MinTickMs   float64
	P95TickMs   float64
	SurviveSeconds float64
	Victory     bool
	Samples     []TickSample
}
