package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. Provider credentials are not
// checked here: the subscribe endpoint reports them as a server
// configuration error per request.
func (c *Config) Validate() error {
	if c.Site.URL == "" && c.Site.AssetsDir == "" {
		return errors.New("site.url or site.assets_dir is required")
	}
	if c.Server.Bind == "" {
		return errors.New("server.bind must be set")
	}
	if c.Server.ReadTimeoutSeconds <= 0 {
		return errors.New("server.read_timeout_seconds must be positive")
	}
	if c.Server.ShutdownTimeoutSeconds < 0 {
		return errors.New("server.shutdown_timeout_seconds must be >= 0")
	}
	if c.Story.TypingIntervalMS <= 0 {
		return errors.New("story.typing_interval_ms must be positive")
	}
	if c.Story.PriorityImages < 1 {
		return errors.New("story.priority_images must be at least 1")
	}
	if c.Story.TransitionMS < 0 {
		return errors.New("story.transition_ms must be >= 0")
	}
	if c.Audio.EffectsVolume < 0 || c.Audio.EffectsVolume > 1 {
		return fmt.Errorf("audio.effects_volume must be between 0 and 1, got %v", c.Audio.EffectsVolume)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error", "none":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, none; got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json; got %q", c.Logging.Format)
	}
	return nil
}
