// ABOUTME: Application configuration via viper
// ABOUTME: Environment variables with documented defaults
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all runtime settings. The pipeline constants (overlap
// window, lowpass cutoff) are compile-time and live with the player.
type Config struct {
	// ServerURI is the Vision Assistant WebSocket endpoint.
	ServerURI string `mapstructure:"ws_uri"`

	// SampleRate is the target playback rate for PCM chunks that do
	// not carry their own.
	SampleRate int `mapstructure:"sample_rate"`

	// VisualizerBars is the fixed bar count for spectrum feedback.
	VisualizerBars int `mapstructure:"visualizer_bars"`

	// EnableAudio gates the whole playback path.
	EnableAudio bool `mapstructure:"enable_audio"`

	// Volume is the initial volume (0-100).
	Volume int `mapstructure:"volume"`

	// LogFile is the rotating log destination.
	LogFile string `mapstructure:"log_file"`
}

// Load reads configuration from VISION_* environment variables,
// falling back to defaults.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("vision")
	v.AutomaticEnv()

	v.SetDefault("ws_uri", "wss://vision-v2.onrender.com/ws")
	v.SetDefault("sample_rate", 16000)
	v.SetDefault("visualizer_bars", 20)
	v.SetDefault("enable_audio", true)
	v.SetDefault("volume", 50)
	v.SetDefault("log_file", "vision-client.log")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
