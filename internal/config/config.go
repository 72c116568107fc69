// Package config holds the TOML-backed runtime settings and the window layout constants.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/iburimskiy/countdown-fireworks/internal/countdown"
)

const (
	WindowWidth  = 640
	WindowHeight = 480

	// Button dimensions
	ButtonWidth   = 120
	ButtonHeight  = 40
	ButtonSpacing = 20
	ButtonY       = 300

	// Numeric field dimensions
	FieldWidth  = 80
	FieldHeight = 32
	FieldY      = 230

	ClockY        = 110
	ClockFontSize = 96

	LevelRingSize = 4096
)

const (
	FrontendWindow   = "window"
	FrontendTerminal = "terminal"
)

// Config holds all runtime settings.
type Config struct {
	Frontend string `toml:"frontend"`
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`

	Timer     TimerConfig    `toml:"timer"`
	Particles ParticleConfig `toml:"particles"`
	Audio     AudioConfig    `toml:"audio"`
	Window    WindowConfig   `toml:"window"`
	Terminal  TerminalConfig `toml:"terminal"`
}

// TimerConfig holds the countdown defaults pre-filled into the input fields.
type TimerConfig struct {
	Minutes int      `toml:"minutes"`
	Seconds int      `toml:"seconds"`
	Tick    Duration `toml:"tick"`
}

// ParticleConfig describes one burst.
type ParticleConfig struct {
	Count      int     `toml:"count"`
	Speed      float64 `toml:"speed"`
	Decay      float64 `toml:"decay"`
	Radius     float64 `toml:"radius"`
	Saturation float64 `toml:"saturation"`
	Lightness  float64 `toml:"lightness"`
}

// AudioConfig describes the alert tone.
type AudioConfig struct {
	Mute       bool     `toml:"mute"`
	SampleRate int      `toml:"sample_rate"`
	StartFreq  float64  `toml:"start_freq"`
	EndFreq    float64  `toml:"end_freq"`
	Sweep      Duration `toml:"sweep"`
	StartGain  float64  `toml:"start_gain"`
	EndGain    float64  `toml:"end_gain"`
	Length     Duration `toml:"length"`
	Buffer     Duration `toml:"buffer"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
}

type TerminalConfig struct {
	Speed float64  `toml:"speed"`
	Frame Duration `toml:"frame"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Frontend: FrontendWindow,
		LogLevel: "info",
		Timer: TimerConfig{
			Minutes: 0,
			Seconds: 10,
			Tick:    Duration{time.Second},
		},
		Particles: ParticleConfig{
			Count:      60,
			Speed:      4,
			Decay:      0.02,
			Radius:     4,
			Saturation: 0.5,
			Lightness:  0.5,
		},
		Audio: AudioConfig{
			SampleRate: 44100,
			StartFreq:  440,
			EndFreq:    880,
			Sweep:      Duration{100 * time.Millisecond},
			StartGain:  0.1,
			EndGain:    0.001,
			Length:     Duration{500 * time.Millisecond},
			Buffer:     Duration{50 * time.Millisecond},
		},
		Window: WindowConfig{
			Width:  WindowWidth,
			Height: WindowHeight,
			Title:  "Countdown - Space: Start/Pause, R: Reset, Esc: Quit",
		},
		Terminal: TerminalConfig{
			Speed: 1,
			Frame: Duration{33 * time.Millisecond},
		},
	}
}

// Validate reports the first setting that cannot drive the app.
func (c *Config) Validate() error {
	c.Frontend = strings.ToLower(strings.TrimSpace(c.Frontend))
	switch c.Frontend {
	case FrontendWindow, FrontendTerminal:
	default:
		return fmt.Errorf("unknown frontend %q", c.Frontend)
	}
	if c.Timer.Minutes < 0 || c.Timer.Minutes > countdown.MaxField {
		return fmt.Errorf("timer.minutes must be within [0, %d], got %d", countdown.MaxField, c.Timer.Minutes)
	}
	if c.Timer.Seconds < 0 || c.Timer.Seconds > countdown.MaxField {
		return fmt.Errorf("timer.seconds must be within [0, %d], got %d", countdown.MaxField, c.Timer.Seconds)
	}
	if c.Timer.Tick.Duration <= 0 {
		return fmt.Errorf("timer.tick must be positive")
	}
	if c.Particles.Count <= 0 {
		return fmt.Errorf("particles.count must be positive, got %d", c.Particles.Count)
	}
	if c.Particles.Decay <= 0 {
		return fmt.Errorf("particles.decay must be positive, got %v", c.Particles.Decay)
	}
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive, got %d", c.Audio.SampleRate)
	}
	if c.Audio.StartFreq <= 0 || c.Audio.EndFreq <= 0 {
		return fmt.Errorf("audio frequencies must be positive")
	}
	if c.Audio.StartGain <= 0 || c.Audio.EndGain <= 0 {
		return fmt.Errorf("audio gains must be positive")
	}
	if c.Terminal.Frame.Duration <= 0 {
		return fmt.Errorf("terminal.frame must be positive")
	}
	return nil
}
