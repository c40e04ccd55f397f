// ABOUTME: Tests for configuration loading
// ABOUTME: Covers defaults and environment overrides
package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.ServerURI != "wss://vision-v2.onrender.com/ws" {
		t.Errorf("unexpected default endpoint: %q", cfg.ServerURI)
	}
	if cfg.SampleRate != 16000 {
		t.Errorf("expected 16000, got %d", cfg.SampleRate)
	}
	if cfg.VisualizerBars != 20 {
		t.Errorf("expected 20 bars, got %d", cfg.VisualizerBars)
	}
	if !cfg.EnableAudio {
		t.Error("expected audio enabled by default")
	}
	if cfg.Volume != 50 {
		t.Errorf("expected volume 50, got %d", cfg.Volume)
	}
	if cfg.LogFile != "vision-client.log" {
		t.Errorf("unexpected log file: %q", cfg.LogFile)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("VISION_WS_URI", "ws://localhost:9000/ws")
	t.Setenv("VISION_VOLUME", "75")
	t.Setenv("VISION_ENABLE_AUDIO", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.ServerURI != "ws://localhost:9000/ws" {
		t.Errorf("env override not applied: %q", cfg.ServerURI)
	}
	if cfg.Volume != 75 {
		t.Errorf("expected volume 75, got %d", cfg.Volume)
	}
	if cfg.EnableAudio {
		t.Error("expected audio disabled via env")
	}
}
