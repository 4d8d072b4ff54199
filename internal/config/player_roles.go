package config

// PlayerRoleConfig describes one selectable player role's base stats.
// CriticalHitRate is in permil (0-1000).
type PlayerRoleConfig struct {
	RoleID          uint32  `json:"role_id"`
	Name            string  `json:"name"`
	MaxHealth       int32   `json:"max_health"`
	Attack          uint32  `json:"attack"`
	AttackSpeed     uint32  `json:"attack_speed"`
	MoveSpeed       float32 `json:"move_speed"`
	CriticalHitRate uint32  `json:"critical_hit_rate"`
}

// PlayerRolesConfig is the contents of player_roles.json.
type PlayerRolesConfig struct {
	DefaultRoleID uint32             `json:"default_role_id"`
	Roles         []PlayerRoleConfig `json:"roles"`
}

// DefaultPlayerRolesConfig mirrors the single built-in role the original
// engine ships (role id 1, "幸存者").
func DefaultPlayerRolesConfig() PlayerRolesConfig {
	return PlayerRolesConfig{
		DefaultRoleID: 1,
		Roles: []PlayerRoleConfig{
			{RoleID: 1, Name: "幸存者", MaxHealth: 100, Attack: 10, AttackSpeed: 1, MoveSpeed: 150, CriticalHitRate: 50},
		},
	}
}

// Resolve returns the role for roleID, falling back to DefaultRoleID and
// then to the lowest role id present, mirroring the original's
// resolve_default_role fallback chain.
func (c PlayerRolesConfig) Resolve(roleID uint32) (PlayerRoleConfig, bool) {
	byID := make(map[uint32]PlayerRoleConfig, len(c.Roles))
	for _, r := range c.Roles {
		byID[r.RoleID] = r
	}

	if roleID != 0 {
		if r, ok := byID[roleID]; ok {
			return r, true
		}
	}
	if r, ok := byID[c.DefaultRoleID]; ok {
		return r, true
	}

	var best PlayerRoleConfig
	found := false
	for _, r := range c.Roles {
		if !found || r.RoleID < best.RoleID {
			best = r
			found = true
		}
	}
	return best, found
}

// LoadPlayerRolesConfig loads player_roles.json, defaulting on absence.
func LoadPlayerRolesConfig() (PlayerRolesConfig, error) {
	cfg := DefaultPlayerRolesConfig()
	_, err := loadJSON("player_roles.json", &cfg)
	return cfg, err
}
