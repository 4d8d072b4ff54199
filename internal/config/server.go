package config

// ServerConfig holds the tunables for one room server process: network
// ports, tick/sync rates, map geometry, spawn pacing, and sync pacing
// thresholds. Every field has a default; unknown JSON fields are ignored.
type ServerConfig struct {
	TCPPort uint16 `json:"tcp_port"`
	UDPPort uint16 `json:"udp_port"`

	MaxPlayersPerRoom int32 `json:"max_players_per_room"`
	TickRate          int32 `json:"tick_rate"`
	StateSyncRate     int32 `json:"state_sync_rate"`

	MapWidth  int32 `json:"map_width"`
	MapHeight int32 `json:"map_height"`

	MoveSpeed float32 `json:"move_speed"`

	WaveIntervalSeconds             float64 `json:"wave_interval_seconds"`
	EnemySpawnBasePerSecond         float64 `json:"enemy_spawn_base_per_second"`
	EnemySpawnPerPlayerPerSecond    float64 `json:"enemy_spawn_per_player_per_second"`
	EnemySpawnWaveGrowthPerSecond   float64 `json:"enemy_spawn_wave_growth_per_second"`
	MaxEnemiesAlive                 int32   `json:"max_enemies_alive"`
	MaxEnemySpawnPerTick            int32   `json:"max_enemy_spawn_per_tick"`

	ReconnectGraceSeconds    float64 `json:"reconnect_grace_seconds"`
	PredictionHistorySeconds float64 `json:"prediction_history_seconds"`

	ProjectileSpeed         float32 `json:"projectile_speed"`
	ProjectileRadius        float32 `json:"projectile_radius"`
	ProjectileTTLSeconds    float64 `json:"projectile_ttl_seconds"`
	ProjectileMaxShotsPerTick int32 `json:"projectile_max_shots_per_tick"`

	SyncIdleLightSeconds float64 `json:"sync_idle_light_seconds"`
	SyncIdleHeavySeconds float64 `json:"sync_idle_heavy_seconds"`
	SyncScaleLight       float64 `json:"sync_scale_light"`
	SyncScaleMedium      float64 `json:"sync_scale_medium"`
	SyncScaleIdle        float64 `json:"sync_scale_idle"`

	LogLevel string `json:"log_level"`
}

// DefaultServerConfig returns the built-in defaults from spec §6.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		TCPPort:           7777,
		UDPPort:           7778,
		MaxPlayersPerRoom: 4,
		TickRate:          60,
		StateSyncRate:     30,
		MapWidth:          2000,
		MapHeight:         2000,
		MoveSpeed:         150,

		WaveIntervalSeconds:           30,
		EnemySpawnBasePerSecond:       0.5,
		EnemySpawnPerPlayerPerSecond:  0.3,
		EnemySpawnWaveGrowthPerSecond: 0.1,
		MaxEnemiesAlive:               128,
		MaxEnemySpawnPerTick:          4,

		ReconnectGraceSeconds:    60,
		PredictionHistorySeconds: 2,

		ProjectileSpeed:           420,
		ProjectileRadius:          6,
		ProjectileTTLSeconds:      2.5,
		ProjectileMaxShotsPerTick: 4,

		SyncIdleLightSeconds: 3,
		SyncIdleHeavySeconds: 10,
		SyncScaleLight:       2,
		SyncScaleMedium:      4,
		SyncScaleIdle:        8,

		LogLevel: "info",
	}
}

// clampServer enforces the bounds spec.md calls out explicitly (grace
// window ceiling) and fills in anything a zero-valued JSON file left at
// its Go zero value but the loader needs to be strictly positive.
func clampServer(c ServerConfig) ServerConfig {
	if c.ReconnectGraceSeconds <= 0 {
		c.ReconnectGraceSeconds = 60
	}
	if c.ReconnectGraceSeconds > 600 {
		c.ReconnectGraceSeconds = 600
	}
	if c.TickRate <= 0 {
		c.TickRate = 60
	}
	if c.StateSyncRate <= 0 {
		c.StateSyncRate = 30
	}
	return c
}

// LoadServerConfig loads server_config.json from the search path,
// returning defaults (never an error to the caller's control flow) when
// absent; a non-nil error on a malformed file still carries usable
// defaults in the returned value.
func LoadServerConfig() (ServerConfig, error) {
	cfg := DefaultServerConfig()
	_, err := loadJSON("server_config.json", &cfg)
	return clampServer(cfg), err
}
