package config

import (
	"os"
	"path/filepath"
	"testing"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
	return dir
}

func TestLoadServerConfigFallsBackToDefaultsWhenMissing(t *testing.T) {
	chdirTemp(t)
	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("expected no error for a missing file, got %v", err)
	}
	if cfg.TickRate != 60 || cfg.UDPPort != 7778 {
		t.Fatalf("expected built-in defaults, got %+v", cfg)
	}
}

func TestLoadServerConfigAppliesFileOverrides(t *testing.T) {
	dir := chdirTemp(t)
	data := `{"tick_rate": 30, "map_width": 4000}`
	if err := os.WriteFile(filepath.Join(dir, "server_config.json"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.TickRate != 30 {
		t.Fatalf("expected overridden tick_rate=30, got %d", cfg.TickRate)
	}
	if cfg.MapWidth != 4000 {
		t.Fatalf("expected overridden map_width=4000, got %d", cfg.MapWidth)
	}
	if cfg.StateSyncRate != 30 {
		t.Fatalf("expected untouched field to keep its default, got %d", cfg.StateSyncRate)
	}
}

func TestLoadServerConfigClampsReconnectGrace(t *testing.T) {
	dir := chdirTemp(t)
	data := `{"reconnect_grace_seconds": 10000}`
	if err := os.WriteFile(filepath.Join(dir, "server_config.json"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadServerConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ReconnectGraceSeconds != 600 {
		t.Fatalf("expected reconnect grace clamped to 600, got %v", cfg.ReconnectGraceSeconds)
	}
}

func TestLoadServerConfigReturnsErrorOnMalformedJSONButStillUsable(t *testing.T) {
	dir := chdirTemp(t)
	if err := os.WriteFile(filepath.Join(dir, "server_config.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadServerConfig()
	if err == nil {
		t.Fatalf("expected an error for malformed JSON")
	}
	if cfg.TickRate != 60 {
		t.Fatalf("expected defaults to remain usable despite the parse error, got %+v", cfg)
	}
}

func TestLoadUpgradeConfigForcesOptionCountToThree(t *testing.T) {
	dir := chdirTemp(t)
	data := `{"option_count": 7}`
	if err := os.WriteFile(filepath.Join(dir, "upgrade_config.json"), []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadUpgradeConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OptionCount != 3 {
		t.Fatalf("expected option_count forced to 3 regardless of file contents, got %d", cfg.OptionCount)
	}
}

func TestEnemyTypesConfigFindFallsBackToDefaultThenLowestID(t *testing.T) {
	cfg := DefaultEnemyTypesConfig()
	cfg.DefaultTypeID = 3
	if t3, ok := cfg.Find(9999); !ok || t3.TypeID != 3 {
		t.Fatalf("expected Find to fall back to the default type id")
	}
	if t1, ok := cfg.Find(cfg.Types[0].TypeID); !ok || t1.TypeID != cfg.Types[0].TypeID {
		t.Fatalf("expected exact type id match")
	}
	cfg.DefaultTypeID = 9998
	if tl, ok := cfg.Find(9999); !ok || tl.TypeID != 1 {
		t.Fatalf("expected Find to fall back to the lowest type id when the default is missing")
	}
}

func TestItemsConfigHealPoolExcludesZeroWeightAndNonHeal(t *testing.T) {
	cfg := ItemsConfig{
		Types: []ItemTypeConfig{
			{TypeID: 1, Effect: ItemEffectHeal, DropWeight: 1},
			{TypeID: 2, Effect: ItemEffectHeal, DropWeight: 0},
			{TypeID: 3, Effect: ItemEffectExp, DropWeight: 5},
		},
	}
	pool := cfg.HealPool()
	if len(pool) != 1 || pool[0].TypeID != 1 {
		t.Fatalf("expected only the positive-weight heal type in the pool, got %+v", pool)
	}
}

func TestClampEffectValueBoundsPerKind(t *testing.T) {
	if v := ClampEffectValue(UpgradeAttackSpeed, -500); v != 1 {
		t.Fatalf("expected attack speed floor of 1, got %v", v)
	}
	if v := ClampEffectValue(UpgradeMoveSpeed, 999999); v != 5000 {
		t.Fatalf("expected move speed ceiling of 5000, got %v", v)
	}
}

func TestDefaultProcessConfigHasSaneBindAddresses(t *testing.T) {
	cfg := DefaultProcessConfig()
	if cfg.TCPBindAddress == "" || cfg.UDPBindAddress == "" {
		t.Fatalf("expected non-empty default bind addresses")
	}
	if cfg.MetricsBackend != "file" {
		t.Fatalf("expected file-backed metrics by default, got %s", cfg.MetricsBackend)
	}
}

func TestLoadProcessConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadProcessConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("expected no error for a missing process config: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected default log level, got %s", cfg.LogLevel)
	}
}
