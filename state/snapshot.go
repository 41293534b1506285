// Package state holds the immutable application-state snapshots that drive the
// audio graph, the reducer that derives new snapshots from user actions, and
// an in-memory Store that publishes them to subscribers.
package state

import "maps"

// Waveform names an oscillator wave shape.
type Waveform string

const (
	WaveformSine     Waveform = "sine"
	WaveformSquare   Waveform = "square"
	WaveformSawtooth Waveform = "sawtooth"
	WaveformTriangle Waveform = "triangle"
)

// Axis is one of the two pad dimensions.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// Axes lists every pad axis in processing order.
var Axes = [2]Axis{AxisX, AxisY}

// Valid reports whether a is one of the fixed pad axes.
func (a Axis) Valid() bool {
	return a == AxisX || a == AxisY
}

// OscillatorConfig configures one slot of the oscillator bank.
type OscillatorConfig struct {
	Waveform         Waveform
	Gain             float64
	OctaveAdjustment int
}

// Options holds effect-type specific parameters. Values are expected to be
// float64, string or bool.
type Options map[string]any

// EffectConfig describes the effect assigned to one pad axis.
type EffectConfig struct {
	Name    string
	Amount  float64
	Options Options
}

// Effects maps each axis to its effect configuration.
type Effects map[Axis]EffectConfig

// Onboarding tracks the introduction flow. It has no bearing on sound.
type Onboarding struct {
	Step     int
	Complete bool
}

// Snapshot is a point-in-time value of the application state. A Snapshot
// handed out by a Store must not be mutated; derive a new one with Clone.
type Snapshot struct {
	Notes       []string
	Oscillators []OscillatorConfig
	Effects     Effects
	Onboarding  Onboarding
}

// Clone returns a deep copy of s.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}

	out := &Snapshot{
		Notes:       append([]string(nil), s.Notes...),
		Oscillators: append([]OscillatorConfig(nil), s.Oscillators...),
		Onboarding:  s.Onboarding,
	}

	if s.Effects != nil {
		out.Effects = make(Effects, len(s.Effects))
		for axis, cfg := range s.Effects {
			out.Effects[axis] = cfg.clone()
		}
	}

	return out
}

// Effect returns the configuration for axis and whether it is present.
func (s *Snapshot) Effect(axis Axis) (EffectConfig, bool) {
	if s == nil || s.Effects == nil {
		return EffectConfig{}, false
	}

	cfg, ok := s.Effects[axis]

	return cfg, ok
}

func (c EffectConfig) clone() EffectConfig {
	c.Options = maps.Clone(c.Options)

	return c
}

// Default returns the initial patch: two oscillators, a filter on x and a
// distortion on y, no notes held.
func Default() *Snapshot {
	return &Snapshot{
		Notes: []string{},
		Oscillators: []OscillatorConfig{
			{Waveform: WaveformSawtooth, Gain: 0.15, OctaveAdjustment: 0},
			{Waveform: WaveformSquare, Gain: 0.5, OctaveAdjustment: -1},
		},
		Effects: Effects{
			AxisX: {
				Name:   "filter",
				Amount: 0.4,
				Options: Options{
					"type":      "lowpass",
					"resonance": "5",
				},
			},
			AxisY: {
				Name:   "distortion",
				Amount: 0.75,
				Options: Options{
					"oversampling": "4x",
				},
			},
		},
	}
}
