// Package config loads padsynth session files.
package config

import (
	"fmt"
	"maps"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/cwbudde/padsynth/state"
)

// Session is the resolved configuration of one padsynth run.
type Session struct {
	SampleRate float64
	BlockSize  int
	MasterGain float64
	LogLevel   string
	Initial    *state.Snapshot
}

// Default returns the built-in session: 48 kHz, 512-sample blocks and the
// default patch.
func Default() Session {
	return Session{
		SampleRate: 48000,
		BlockSize:  512,
		MasterGain: 0.8,
		LogLevel:   "info",
		Initial:    state.Default(),
	}
}

type fileOscillator struct {
	Waveform string  `toml:"waveform"`
	Gain     float64 `toml:"gain"`
	Octave   int     `toml:"octave"`
}

type fileEffect struct {
	Name    string         `toml:"name"`
	Amount  float64        `toml:"amount"`
	Options map[string]any `toml:"options"`
}

type fileConfig struct {
	SampleRate  float64               `toml:"sample_rate"`
	BlockSize   int                   `toml:"block_size"`
	MasterGain  float64               `toml:"master_gain"`
	LogLevel    string                `toml:"log_level"`
	Notes       []string              `toml:"notes"`
	Oscillators []fileOscillator      `toml:"oscillators"`
	Effects     map[string]fileEffect `toml:"effects"`
}

// Load reads a TOML session file and overlays every key it defines onto
// Default.
func Load(path string) (Session, error) {
	var raw fileConfig

	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Session{}, fmt.Errorf("load session config %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Session{}, fmt.Errorf("load session config %s: unknown key %q", path, undecoded[0].String())
	}

	cfg := Default()
	snap := cfg.Initial

	if meta.IsDefined("sample_rate") {
		if raw.SampleRate <= 0 {
			return Session{}, fmt.Errorf("config %s: sample_rate must be > 0: %v", path, raw.SampleRate)
		}
		cfg.SampleRate = raw.SampleRate
	}

	if meta.IsDefined("block_size") {
		if raw.BlockSize <= 0 {
			return Session{}, fmt.Errorf("config %s: block_size must be > 0: %d", path, raw.BlockSize)
		}
		cfg.BlockSize = raw.BlockSize
	}

	if meta.IsDefined("master_gain") {
		if raw.MasterGain < 0 || raw.MasterGain > 1 {
			return Session{}, fmt.Errorf("config %s: master_gain must be in [0, 1]: %v", path, raw.MasterGain)
		}
		cfg.MasterGain = raw.MasterGain
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	if meta.IsDefined("notes") {
		snap.Notes = normalizeNotes(raw.Notes)
	}

	if meta.IsDefined("oscillators") {
		oscs := make([]state.OscillatorConfig, 0, len(raw.Oscillators))
		for i, o := range raw.Oscillators {
			wf := state.Waveform(strings.ToLower(strings.TrimSpace(o.Waveform)))
			if !validWaveform(wf) {
				return Session{}, fmt.Errorf("config %s: oscillators[%d]: unknown waveform %q", path, i, o.Waveform)
			}
			oscs = append(oscs, state.OscillatorConfig{Waveform: wf, Gain: o.Gain, OctaveAdjustment: o.Octave})
		}
		snap.Oscillators = oscs
	}

	for key, fx := range raw.Effects {
		axis := state.Axis(key)
		if !axis.Valid() {
			return Session{}, fmt.Errorf("config %s: effects: unknown axis %q", path, key)
		}

		ec := snap.Effects[axis]

		if meta.IsDefined("effects", key, "name") {
			ec.Name = strings.TrimSpace(fx.Name)
		}
		if meta.IsDefined("effects", key, "amount") {
			ec.Amount = fx.Amount
		}
		if meta.IsDefined("effects", key, "options") {
			ec.Options = normalizeOptions(fx.Options)
		}

		snap.Effects[axis] = ec
	}

	return cfg, nil
}

func validWaveform(wf state.Waveform) bool {
	switch wf {
	case state.WaveformSine, state.WaveformSquare, state.WaveformSawtooth, state.WaveformTriangle:
		return true
	}
	return false
}

func normalizeNotes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, note := range in {
		v := strings.TrimSpace(note)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}

// normalizeOptions converts TOML integers to float64 so options compare
// equal to values set at runtime.
func normalizeOptions(in map[string]any) state.Options {
	out := make(state.Options, len(in))
	maps.Copy(out, in)

	for k, v := range out {
		if n, ok := v.(int64); ok {
			out[k] = float64(n)
		}
	}
	return out
}
