package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Arena holds all configuration for the arena runner.
type Arena struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	// Engine
	TurnBudget time.Duration `yaml:"turn_budget"` // per-hook limit (default: 50ms)
	Seed       uint64        `yaml:"seed"`        // 0 = random spawn positions

	// Runner
	Parallelism   int    `yaml:"parallelism"`    // matches played at once
	TelemetryPath string `yaml:"telemetry_path"` // JSON lines, empty = off

	// Database (statistics and match results)
	Database DatabaseConfig `yaml:"database"`

	Matches []Match `yaml:"matches"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Match describes one configured match.
type Match struct {
	Name      string  `yaml:"name"`
	Games     int     `yaml:"games"`
	Rounds    int     `yaml:"rounds"`
	Telemetry bool    `yaml:"telemetry"`
	Roster    []Entry `yaml:"roster"`
}

// Entry names one seat of a match.
type Entry struct {
	Owner string `yaml:"owner"`
	Robot string `yaml:"robot"`
}

// DefaultArena returns Arena config with sensible defaults: a single
// exhibition match between the two default robots.
func DefaultArena() Arena {
	return Arena{
		LogLevel:    "info",
		TurnBudget:  50 * time.Millisecond,
		Parallelism: 2,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "robocombat",
			Password: "robocombat",
			DBName:   "robocombat",
			SSLMode:  "disable",
		},
		Matches: []Match{
			{
				Name:   "exhibition",
				Games:  10,
				Rounds: 1000,
				Roster: []Entry{
					{Owner: "house", Robot: "Default1"},
					{Owner: "house", Robot: "Default2"},
				},
			},
		},
	}
}

// LoadArena loads arena config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadArena(path string) (Arena, error) {
	cfg := DefaultArena()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}
	return cfg, nil
}
