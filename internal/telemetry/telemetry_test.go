package telemetry

import (
	"context"
	"testing"
)

func TestSetupIsNoopWithoutEndpoint(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"no endpoint", Config{Enabled: true}},
		{"disabled", Config{Enabled: false, Endpoint: "http://localhost:4318"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shutdown, err := Setup(context.Background(), "trustfall", tt.cfg)
			if err != nil {
				t.Fatalf("Setup() error = %v", err)
			}
			if err := shutdown(context.Background()); err != nil {
				t.Errorf("shutdown() error = %v", err)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("TRUSTFALL_OTEL_ENDPOINT", "http://collector:4318")
	t.Setenv("TRUSTFALL_OTEL_ENABLED", "false")

	cfg, err := ConfigFromEnv()
	if err != nil {
		t.Fatalf("ConfigFromEnv() error = %v", err)
	}
	if cfg.Enabled || cfg.Endpoint != "http://collector:4318" {
		t.Errorf("ConfigFromEnv() = %+v", cfg)
	}
}
