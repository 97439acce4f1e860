package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
)

type Config struct {
	LogLevel string        `json:"log_level"`
	Audio    AudioConfig   `json:"audio"`
	Encoder  EncoderConfig `json:"encoder"`
}

type AudioConfig struct {
	DeviceID     string  `json:"device_id"`
	SampleRate   float64 `json:"sample_rate"`
	BufferLength int     `json:"buffer_length"` // sample frames per capture callback
	NumChannels  int     `json:"num_channels"`
}

type EncoderConfig struct {
	// MaxSeconds caps accumulated audio; 0 uses the encoder default,
	// negative disables the cap.
	MaxSeconds int `json:"max_seconds"`
}

// Load reads the config from disk or returns defaults
func Load() (*Config, error) {
	path := configPath()

	// Default config
	cfg := &Config{
		LogLevel: "info",
		Audio: AudioConfig{
			DeviceID:     "",
			SampleRate:   44100,
			BufferLength: 4096,
			NumChannels:  1,
		},
		Encoder: EncoderConfig{
			MaxSeconds: 600,
		},
	}

	// Load existing config if it exists
	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// MaxSamples converts the accumulation cap to a per-channel sample count.
func (c *Config) MaxSamples() int {
	if c.Encoder.MaxSeconds <= 0 {
		return c.Encoder.MaxSeconds
	}
	return c.Encoder.MaxSeconds * int(c.Audio.SampleRate)
}

// Save writes the config to disk
func (c *Config) Save() error {
	path := configPath()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// configPath returns the platform-specific config file path
func configPath() string {
	var base string

	switch runtime.GOOS {
	case "darwin":
		base = os.Getenv("HOME") + "/Library/Application Support"
	case "windows":
		base = os.Getenv("APPDATA")
	default: // linux
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = xdg
		} else {
			base = os.Getenv("HOME") + "/.config"
		}
	}

	return filepath.Join(base, "wavrec", "config.json")
}
