package config

// ItemEffect tags what an item does when picked up.
type ItemEffect string

const (
	ItemEffectHeal  ItemEffect = "heal"
	ItemEffectExp   ItemEffect = "exp"
	ItemEffectSpeed ItemEffect = "speed"
	ItemEffectNone  ItemEffect = "none"
)

// ItemTypeConfig describes one item archetype. DropWeight is the weight
// used by the drop table's weighted sample; 0 excludes it from rolls.
type ItemTypeConfig struct {
	TypeID     int32      `json:"type_id"`
	Name       string     `json:"name"`
	Effect     ItemEffect `json:"effect"`
	Value      float32    `json:"value"`
	DropWeight float64    `json:"drop_weight"`
}

// ItemsConfig is the contents of items_config.json.
type ItemsConfig struct {
	DefaultTypeID int32            `json:"default_type_id"`
	MaxItemsAlive int32            `json:"max_items_alive"`
	PickRadius    float32          `json:"pick_radius"`
	Types         []ItemTypeConfig `json:"types"`
}

// DefaultItemsConfig mirrors the single healing pickup the original
// engine spawns from zombie drops.
func DefaultItemsConfig() ItemsConfig {
	return ItemsConfig{
		DefaultTypeID: 1,
		MaxItemsAlive: 64,
		PickRadius:    28,
		Types: []ItemTypeConfig{
			{TypeID: 1, Name: "医疗包", Effect: ItemEffectHeal, Value: 20, DropWeight: 1},
		},
	}
}

// Find returns the type for typeID, falling back to DefaultTypeID.
func (c ItemsConfig) Find(typeID int32) (ItemTypeConfig, bool) {
	for _, t := range c.Types {
		if t.TypeID == typeID {
			return t, true
		}
	}
	for _, t := range c.Types {
		if t.TypeID == c.DefaultTypeID {
			return t, true
		}
	}
	return ItemTypeConfig{}, false
}

// HealPool returns the subset of types usable by the drop table: effect
// heal, positive weight.
func (c ItemsConfig) HealPool() []ItemTypeConfig {
	out := make([]ItemTypeConfig, 0, len(c.Types))
	for _, t := range c.Types {
		if t.Effect == ItemEffectHeal && t.DropWeight > 0 {
			out = append(out, t)
		}
	}
	return out
}

// LoadItemsConfig loads items_config.json, defaulting on absence.
func LoadItemsConfig() (ItemsConfig, error) {
	cfg := DefaultItemsConfig()
	_, err := loadJSON("items_config.json", &cfg)
	return cfg, err
}
