// Copyright 2026 The modelconsole Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config provides configuration management for the modelconsole
// server. It handles loading and parsing the YAML configuration file and
// provides structured access to server, logging, provider and local-runtime
// settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Config represents the application's configuration, loaded from a YAML file.
type Config struct {
	// Host is the network host/interface on which the console API binds.
	// Default is "127.0.0.1"; the console is a local configuration surface.
	Host string `yaml:"host"`
	// Port is the network port on which the console API listens.
	Port int `yaml:"port"`

	// Debug enables debug-level logging.
	Debug bool `yaml:"debug"`

	// LoggingToFile controls whether logs go to rotating files or stdout.
	LoggingToFile bool `yaml:"logging-to-file"`

	// LogDir is the directory rotating log files are written to.
	LogDir string `yaml:"log-dir"`

	// SettingsFile is the JSON key/value settings file holding the selected
	// endpoint, provider, mode and model.
	SettingsFile string `yaml:"settings-file"`

	// DefaultEndpoint is the built-in fallback base URL used when the custom
	// provider has no endpoint configured.
	DefaultEndpoint string `yaml:"default-endpoint"`

	// ManagementKey protects mutating console endpoints. Plaintext values
	// are bcrypt-hashed on load; the file can be rewritten with the hash via
	// Save. Empty disables authentication.
	ManagementKey string `yaml:"management-key"`

	// Ollama configures the local runtime integration.
	Ollama OllamaConfig `yaml:"ollama"`
}

// OllamaConfig holds local Ollama server settings.
type OllamaConfig struct {
	// BaseURL is the Ollama address, default http://localhost:11434.
	BaseURL string `yaml:"base-url"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	base := ".modelconsole"
	if err == nil {
		base = filepath.Join(home, ".modelconsole")
	}
	return &Config{
		Host:         "127.0.0.1",
		Port:         8317,
		LogDir:       filepath.Join(base, "logs"),
		SettingsFile: filepath.Join(base, "settings.json"),
	}
}

// LoadConfig reads the YAML configuration at configFile. A missing file
// yields the defaults rather than an error; a malformed file is an error.
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configFile)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}

// Save writes the configuration back as YAML.
func Save(configFile string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(configFile), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Sanitize normalizes loaded values: defaults are re-applied for blanked
// fields and a plaintext management key is replaced by its bcrypt hash.
func (cfg *Config) Sanitize() {
	defaults := DefaultConfig()
	if strings.TrimSpace(cfg.Host) == "" {
		cfg.Host = defaults.Host
	}
	if cfg.Port <= 0 {
		cfg.Port = defaults.Port
	}
	if strings.TrimSpace(cfg.LogDir) == "" {
		cfg.LogDir = defaults.LogDir
	}
	if strings.TrimSpace(cfg.SettingsFile) == "" {
		cfg.SettingsFile = defaults.SettingsFile
	}

	cfg.ManagementKey = strings.TrimSpace(cfg.ManagementKey)
	if cfg.ManagementKey != "" && !looksLikeBcrypt(cfg.ManagementKey) {
		if hashed, err := hashSecret(cfg.ManagementKey); err == nil {
			cfg.ManagementKey = hashed
		}
	}
}

// CheckManagementKey reports whether plaintext matches the configured key.
// An empty configured key accepts everything (auth disabled).
func (cfg *Config) CheckManagementKey(plaintext string) bool {
	if cfg.ManagementKey == "" {
		return true
	}
	return bcrypt.CompareHashAndPassword([]byte(cfg.ManagementKey), []byte(plaintext)) == nil
}

func looksLikeBcrypt(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

func hashSecret(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
