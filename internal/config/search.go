// Package config loads the five JSON configuration files the room server
// needs (server, player roles, enemy types, items, upgrades) plus the
// operator-facing process config. Every loader follows the same contract:
// missing file -> in-code defaults, no error; malformed file -> defaults
// plus an error the caller may log and ignore per spec's "loader returns
// false, caller uses in-code defaults" policy.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// searchPaths returns the three well-known locations a config file name
// is looked up in, in priority order: the working directory, the
// directory named by LAWNMOWER_CONFIG_DIR, and /etc/lawnmower.
func searchPaths(name string) []string {
	paths := []string{filepath.Join(".", name)}
	if dir := os.Getenv("LAWNMOWER_CONFIG_DIR"); dir != "" {
		paths = append(paths, filepath.Join(dir, name))
	}
	paths = append(paths, filepath.Join("/etc/lawnmower", name))
	return paths
}

// loadJSON finds name on the search path and unmarshals it into dst.
// dst must already hold the default values: fields absent from the file
// are left untouched by json.Unmarshal. Returns (found, error).
func loadJSON(name string, dst any) (bool, error) {
	for _, p := range searchPaths(name) {
		data, err := os.ReadFile(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return false, fmt.Errorf("config: reading %s: %w", p, err)
		}
		if err := json.Unmarshal(data, dst); err != nil {
			return true, fmt.Errorf("config: parsing %s: %w", p, err)
		}
		return true, nil
	}
	return false, nil
}
