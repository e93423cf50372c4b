// Package config loads the player and server configuration: a TOML file for
// everything a user tunes, overlaid with provider credentials from the
// environment.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Site describes where story assets come from.
type Site struct {
	// URL is the deployed site; assets are fetched from it when AssetsDir
	// is empty.
	URL       string `toml:"url" yaml:"url"`
	AssetsDir string `toml:"assets_dir" yaml:"assets_dir"`
	// StoryFile replaces the built-in slides (Markdown, EPUB or YAML).
	StoryFile string `toml:"story_file" yaml:"story_file"`
}

// Server contains the API listener settings.
type Server struct {
	Bind                   string `toml:"bind" yaml:"bind"`
	ReadTimeoutSeconds     int    `toml:"read_timeout_seconds" yaml:"read_timeout_seconds"`
	ShutdownTimeoutSeconds int    `toml:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds"`
}

// Story contains the pacing of the story view.
type Story struct {
	TypingIntervalMS int `toml:"typing_interval_ms" yaml:"typing_interval_ms"`
	PriorityImages   int `toml:"priority_images" yaml:"priority_images"`
	TransitionMS     int `toml:"transition_ms" yaml:"transition_ms"`
}

// Audio contains soundtrack and effect settings.
type Audio struct {
	Enabled        bool    `toml:"enabled" yaml:"enabled"`
	Effects        bool    `toml:"effects" yaml:"effects"`
	EffectsVolume  float64 `toml:"effects_volume" yaml:"effects_volume"`
	RequireGesture bool    `toml:"require_gesture" yaml:"require_gesture"`
}

// Logging contains configuration for log output.
type Logging struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
	File   string `toml:"file" yaml:"file"`
}

// Provider holds the newsletter provider credentials. They are read from
// the environment only and never written to the config file.
type Provider struct {
	APIKey             SecretString `env:"BEEHIIV_API_KEY" yaml:"api_key"`
	PublicationID      string       `env:"BEEHIIV_PUBLICATION_ID" yaml:"publication_id"`
	LuminaAutomationID string       `env:"BEEHIIV_LUMINA_AUTOMATION_ID" yaml:"lumina_automation_id"`
	ShadowAutomationID string       `env:"BEEHIIV_SHADOW_AUTOMATION_ID" yaml:"shadow_automation_id"`
	BaseURL            string       `env:"BEEHIIV_BASE_URL" envDefault:"https://api.beehiiv.com/v2" yaml:"base_url"`
}

// Complete reports whether every credential needed to subscribe is set.
func (p Provider) Complete() bool {
	return p.APIKey != "" && p.PublicationID != "" &&
		p.LuminaAutomationID != "" && p.ShadowAutomationID != ""
}

// Config encapsulates all configuration values.
type Config struct {
	Site     Site     `toml:"site" yaml:"site"`
	Server   Server   `toml:"server" yaml:"server"`
	Story    Story    `toml:"story" yaml:"story"`
	Audio    Audio    `toml:"audio" yaml:"audio"`
	Logging  Logging  `toml:"logging" yaml:"logging"`
	Provider Provider `toml:"-" yaml:"provider"`
}

// DefaultConfigPath returns the expanded default config file path.
func DefaultConfigPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "trustfall", "config.toml"), nil
	}
	return expandPath("~/.config/trustfall/config.toml")
}

// Load reads configuration from disk and the environment, applying defaults.
// It returns the config, the resolved path and whether the file existed.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.Parse(&cfg.Provider); err != nil {
		return nil, "", false, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return "", false, err
		}
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Site.AssetsDir, err = expandPath(c.Site.AssetsDir); err != nil {
		return err
	}
	if c.Site.StoryFile, err = expandPath(c.Site.StoryFile); err != nil {
		return err
	}
	if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
		return err
	}
	c.Site.URL = strings.TrimRight(strings.TrimSpace(c.Site.URL), "/")
	c.Provider.BaseURL = strings.TrimRight(strings.TrimSpace(c.Provider.BaseURL), "/")
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	return nil
}

// TypingInterval is the delay between two revealed characters.
func (s Story) TypingInterval() time.Duration {
	return time.Duration(s.TypingIntervalMS) * time.Millisecond
}

// Transition is the delay between two slides.
func (s Story) Transition() time.Duration {
	return time.Duration(s.TransitionMS) * time.Millisecond
}

func (s Server) ReadTimeout() time.Duration {
	return time.Duration(s.ReadTimeoutSeconds) * time.Second
}

func (s Server) ShutdownTimeout() time.Duration {
	return time.Duration(s.ShutdownTimeoutSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes a commented sample configuration to path.
func CreateSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config file already exists: %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(expanded, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
