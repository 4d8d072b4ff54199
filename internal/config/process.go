package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ProcessConfig is the operator-facing config for cmd/roomserver: bind
// addresses, optional Postgres DSN for the metrics sink, and log level.
// Unlike the five spec-mandated JSON files, this one is not part of the
// wire-facing contract, so it follows the teacher's plain YAML pattern
// verbatim rather than JSON.
type ProcessConfig struct {
	TCPBindAddress string `yaml:"tcp_bind_address"`
	UDPBindAddress string `yaml:"udp_bind_address"`

	MetricsBackend string `yaml:"metrics_backend"` // "file" or "postgres"
	MetricsRoot    string `yaml:"metrics_root"`

	Postgres ProcessPostgres `yaml:"postgres"`

	LogLevel string `yaml:"log_level"`
}

// ProcessPostgres holds pgxpool connection parameters, mirroring the
// teacher's DatabaseConfig shape.
type ProcessPostgres struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string pgxpool.ParseConfig accepts.
func (p ProcessPostgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DBName, p.SSLMode)
}

// DefaultProcessConfig returns sensible operator defaults: bind to all
// interfaces, write metrics to local JSON files only.
func DefaultProcessConfig() ProcessConfig {
	return ProcessConfig{
		TCPBindAddress: "0.0.0.0:7777",
		UDPBindAddress: "0.0.0.0:7778",
		MetricsBackend: "file",
		MetricsRoot:    "./server_metrics",
		Postgres: ProcessPostgres{
			Host:    "127.0.0.1",
			Port:    5432,
			User:    "lawnmower",
			DBName:  "lawnmower",
			SSLMode: "disable",
		},
		LogLevel: "info",
	}
}

// LoadProcessConfig loads a YAML process config from path, returning
// defaults when the file doesn't exist.
func LoadProcessConfig(path string) (ProcessConfig, error) {
	cfg := DefaultProcessConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading process config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing process config %s: %w", path, err)
	}
	return cfg, nil
}
