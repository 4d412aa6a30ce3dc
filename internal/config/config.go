package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds process-wide settings.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string `yaml:"db_path"`

	// LogMode selects the log encoder and level: "dev", "quiet", "prod" or "off".
	LogMode string `yaml:"log_mode"`

	Engine EngineConfig `yaml:"engine"`
	Redis  RedisConfig  `yaml:"redis"`
}

// EngineConfig tunes the assessment engine.
type EngineConfig struct {
	// MasteryThreshold is the mastery level at which a topic counts as mastered.
	MasteryThreshold float64 `yaml:"mastery_threshold"`

	// KeywordThreshold is the fraction of expected keywords an open-ended
	// answer must contain.
	KeywordThreshold float64 `yaml:"keyword_threshold"`

	// MaxQuestions caps the questions selected for a session.
	MaxQuestions int `yaml:"max_questions"`

	// DisableFallback turns off the built-in question set, so selection
	// failures surface as errors.
	DisableFallback bool `yaml:"disable_fallback"`
}

// RedisConfig enables publishing session events to Redis. Empty Addr disables it.
type RedisConfig struct {
	Addr    string `yaml:"addr"`
	Channel string `yaml:"channel"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogMode: "quiet",
		Engine: EngineConfig{
			MasteryThreshold: 0.8,
			KeywordThreshold: 0.5,
			MaxQuestions:     5,
		},
		Redis: RedisConfig{
			Channel: "assessor:events",
		},
	}
}

// Load builds a Config from defaults, an optional YAML file, an optional
// .env file in the working directory, and ASSESSOR_* environment variables,
// in that order of increasing priority.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("ASSESSOR_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("ASSESSOR_LOG"); v != "" {
		c.LogMode = v
	}
	if v := os.Getenv("ASSESSOR_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("ASSESSOR_MAX_QUESTIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ASSESSOR_MAX_QUESTIONS: %w", err)
		}
		c.Engine.MaxQuestions = n
	}
	if v := os.Getenv("ASSESSOR_MASTERY_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("ASSESSOR_MASTERY_THRESHOLD: %w", err)
		}
		c.Engine.MasteryThreshold = f
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	e := c.Engine
	if e.MasteryThreshold <= 0 || e.MasteryThreshold > 1 {
		return fmt.Errorf("mastery_threshold must be in (0, 1], got %v", e.MasteryThreshold)
	}
	if e.KeywordThreshold <= 0 || e.KeywordThreshold > 1 {
		return fmt.Errorf("keyword_threshold must be in (0, 1], got %v", e.KeywordThreshold)
	}
	if e.MaxQuestions < 1 {
		return fmt.Errorf("max_questions must be positive, got %d", e.MaxQuestions)
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. ASSESSOR_DB environment variable
// 2. $XDG_DATA_HOME/assessor/assessor.db
// 3. ~/.local/share/assessor/assessor.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("ASSESSOR_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "assessor", "assessor.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
