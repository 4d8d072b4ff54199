package config

// UpgradeEffectKind names a stat an upgrade option can modify.
type UpgradeEffectKind string

const (
	UpgradeMoveSpeed     UpgradeEffectKind = "MOVE_SPEED"
	UpgradeAttack        UpgradeEffectKind = "ATTACK"
	UpgradeAttackSpeed   UpgradeEffectKind = "ATTACK_SPEED"
	UpgradeMaxHealth     UpgradeEffectKind = "MAX_HEALTH"
	UpgradeCriticalRate  UpgradeEffectKind = "CRITICAL_RATE"
)

// UpgradeEffectConfig is one weighted entry in the upgrade effect pool.
type UpgradeEffectConfig struct {
	Type   UpgradeEffectKind `json:"type"`
	Level  int32             `json:"level"`
	Value  float32           `json:"value"`
	Weight float64           `json:"weight"`
}

// UpgradeConfig is the contents of upgrade_config.json. OptionCount is
// read but forced to 3 by the loader (open question resolved in
// DESIGN.md: preserve the original's forced behavior).
type UpgradeConfig struct {
	OptionCount  int32                 `json:"option_count"`
	RefreshLimit int32                 `json:"refresh_limit"`
	Effects      []UpgradeEffectConfig `json:"effects"`
}

const forcedOptionCount = 3

// DefaultUpgradeConfig mirrors the original's five-effect pool.
func DefaultUpgradeConfig() UpgradeConfig {
	return UpgradeConfig{
		OptionCount:  forcedOptionCount,
		RefreshLimit: 2,
		Effects: []UpgradeEffectConfig{
			{Type: UpgradeMoveSpeed, Level: 1, Value: 15, Weight: 1},
			{Type: UpgradeAttack, Level: 1, Value: 5, Weight: 1},
			{Type: UpgradeAttackSpeed, Level: 1, Value: 1, Weight: 1},
			{Type: UpgradeMaxHealth, Level: 1, Value: 20, Weight: 1},
			{Type: UpgradeCriticalRate, Level: 1, Value: 50, Weight: 1},
		},
	}
}

// LoadUpgradeConfig loads upgrade_config.json, defaulting on absence,
// and forces OptionCount to 3 regardless of the file's contents.
func LoadUpgradeConfig() (UpgradeConfig, error) {
	cfg := DefaultUpgradeConfig()
	_, err := loadJSON("upgrade_config.json", &cfg)
	cfg.OptionCount = forcedOptionCount
	return cfg, err
}

// ClampEffectValue bounds a stat value of the given upgrade kind to that
// kind's range; it is applied to the stat after an upgrade's delta.
func ClampEffectValue(kind UpgradeEffectKind, v float32) float32 {
	clamp := func(v, lo, hi float32) float32 {
		if v < lo {
			return lo
		}
		if v > hi {
			return hi
		}
		return v
	}
	switch kind {
	case UpgradeMoveSpeed:
		return clamp(v, 0, 5000)
	case UpgradeAttack:
		return clamp(v, 0, 100000)
	case UpgradeAttackSpeed:
		return clamp(v, 1, 1000)
	case UpgradeMaxHealth:
		return clamp(v, 1, 100000)
	case UpgradeCriticalRate:
		return clamp(v, 0, 10000)
	default:
		return v
	}
}
