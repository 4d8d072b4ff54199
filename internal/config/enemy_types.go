package config

// EnemyTypeConfig describes one enemy archetype. DropChance is a percent
// in [0,100]; the drop stage treats larger values as 100. AttackEnterRadius/AttackExitRadius drive the melee-stage
// hysteresis (exit should be >= enter).
type EnemyTypeConfig struct {
	TypeID               int32   `json:"type_id"`
	Name                 string  `json:"name"`
	MaxHealth            int32   `json:"max_health"`
	MoveSpeed            float32 `json:"move_speed"`
	Damage               int32   `json:"damage"`
	ExpReward            uint32  `json:"exp_reward"`
	DropChance           float64 `json:"drop_chance"`
	AttackEnterRadius    float32 `json:"attack_enter_radius"`
	AttackExitRadius     float32 `json:"attack_exit_radius"`
	AttackIntervalSeconds float64 `json:"attack_interval_seconds"`
}

// EnemyTypesConfig is the contents of enemy_types.json.
type EnemyTypesConfig struct {
	DefaultTypeID int32             `json:"default_type_id"`
	Types         []EnemyTypeConfig `json:"types"`
}

// DefaultEnemyTypesConfig mirrors original_source's four built-in zombie
// archetypes (普通僵尸/路障僵尸/铁桶僵尸/橄榄球僵尸).
func DefaultEnemyTypesConfig() EnemyTypesConfig {
	return EnemyTypesConfig{
		DefaultTypeID: 1,
		Types: []EnemyTypeConfig{
			{TypeID: 1, Name: "普通僵尸", MaxHealth: 30, MoveSpeed: 60, Damage: 5, ExpReward: 10, DropChance: 20, AttackEnterRadius: 34, AttackExitRadius: 44, AttackIntervalSeconds: 0.8},
			{TypeID: 2, Name: "路障僵尸", MaxHealth: 60, MoveSpeed: 50, Damage: 8, ExpReward: 20, DropChance: 25, AttackEnterRadius: 34, AttackExitRadius: 44, AttackIntervalSeconds: 0.8},
			{TypeID: 3, Name: "铁桶僵尸", MaxHealth: 120, MoveSpeed: 40, Damage: 12, ExpReward: 40, DropChance: 35, AttackEnterRadius: 34, AttackExitRadius: 44, AttackIntervalSeconds: 1.0},
			{TypeID: 4, Name: "橄榄球僵尸", MaxHealth: 80, MoveSpeed: 100, Damage: 10, ExpReward: 50, DropChance: 30, AttackEnterRadius: 34, AttackExitRadius: 44, AttackIntervalSeconds: 0.6},
		},
	}
}

// Find returns the type for typeID, falling back to DefaultTypeID, then
// to the lowest type id present.
func (c EnemyTypesConfig) Find(typeID int32) (EnemyTypeConfig, bool) {
	byID := make(map[int32]EnemyTypeConfig, len(c.Types))
	for _, t := range c.Types {
		byID[t.TypeID] = t
	}
	if typeID != 0 {
		if t, ok := byID[typeID]; ok {
			return t, true
		}
	}
	if t, ok := byID[c.DefaultTypeID]; ok {
		return t, true
	}
	var best EnemyTypeConfig
	found := false
	for _, t := range c.Types {
		if !found || t.TypeID < best.TypeID {
			best = t
			found = true
		}
	}
	return best, found
}

// LoadEnemyTypesConfig loads enemy_types.json, defaulting on absence.
func LoadEnemyTypesConfig() (EnemyTypesConfig, error) {
	cfg := DefaultEnemyTypesConfig()
	_, err := loadJSON("enemy_types.json", &cfg)
	return cfg, err
}
