// Package config manages toxedit configuration and the .toxedit directory
// structure. It handles loading, saving, and initializing the data directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	DataDir      = ".toxedit"
	ConfigFile   = "config"
	DatabaseFile = "toxedit.db"
)

// LLMConfig selects and tunes the text-generation collaborator. The API key
// is never stored in the file; it is read from OPENAI_API_KEY at startup.
type LLMConfig struct {
	Provider       string `toml:"provider"` // "openai" or "mock"
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Config represents the toxedit configuration.
type Config struct {
	ListenAddr string    `toml:"listen_addr"`
	LLM        LLMConfig `toml:"llm"`
	path       string    // path to the .toxedit directory
}

// FindRoot finds the .toxedit directory by walking up from the current
// directory.
func FindRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		p := filepath.Join(dir, DataDir)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not a toxedit data directory (or any parent up to root)")
		}
		dir = parent
	}
}

// Load loads the configuration from the .toxedit directory.
func Load() (*Config, error) {
	root, err := FindRoot()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(root, ConfigFile))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.path = root
	cfg.applyDefaults()
	return &cfg, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(filepath.Join(c.path, ConfigFile), data, 0644)
}

// Path returns the path to the .toxedit directory.
func (c *Config) Path() string {
	return c.path
}

// DatabasePath returns the path to the sqlite database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.path, DatabaseFile)
}

// GenTimeout returns the configured generator call timeout.
func (c *Config) GenTimeout() time.Duration {
	return time.Duration(c.LLM.TimeoutSeconds) * time.Second
}

func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = "127.0.0.1:8080"
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "openai"
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = 60
	}
}

// Initialize creates a new .toxedit directory with initial configuration.
func Initialize() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(cwd, DataDir)
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("toxedit data directory already exists")
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("create %s directory: %w", DataDir, err)
	}

	cfg := &Config{path: path}
	cfg.applyDefaults()

	if err := cfg.Save(); err != nil {
		os.RemoveAll(path)
		return nil, err
	}
	return cfg, nil
}
