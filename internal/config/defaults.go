package config

const (
	defaultSiteURL                = "https://trustfall.hoops.finance"
	defaultServerBind             = "127.0.0.1:3000"
	defaultReadTimeoutSeconds     = 15
	defaultShutdownTimeoutSeconds = 10
	defaultTypingIntervalMS       = 50
	defaultPriorityImages         = 3
	defaultTransitionMS           = 500
	defaultEffectsVolume          = 0.3
	defaultLogLevel               = "info"
	defaultLogFormat              = "console"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Site: Site{
			URL: defaultSiteURL,
		},
		Server: Server{
			Bind:                   defaultServerBind,
			ReadTimeoutSeconds:     defaultReadTimeoutSeconds,
			ShutdownTimeoutSeconds: defaultShutdownTimeoutSeconds,
		},
		Story: Story{
			TypingIntervalMS: defaultTypingIntervalMS,
			PriorityImages:   defaultPriorityImages,
			TransitionMS:     defaultTransitionMS,
		},
		Audio: Audio{
			Enabled:        true,
			Effects:        true,
			EffectsVolume:  defaultEffectsVolume,
			RequireGesture: true,
		},
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
	}
}
