package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/padsynth/state"
)

// Script is a sequence of user actions replayed against a session.
type Script struct {
	Steps []Step `yaml:"steps"`
}

// Step holds exactly one action or a render request.
type Step struct {
	Press      string          `yaml:"press,omitempty"`
	Release    string          `yaml:"release,omitempty"`
	ReleaseAll bool            `yaml:"release_all,omitempty"`
	Oscillator *oscillatorStep `yaml:"oscillator,omitempty"`
	Move       *moveStep       `yaml:"move,omitempty"`
	Effect     *effectStep     `yaml:"effect,omitempty"`
	Option     *optionStep     `yaml:"option,omitempty"`
	Onboarding bool            `yaml:"onboarding,omitempty"`
	Render     float64         `yaml:"render,omitempty"`
}

type oscillatorStep struct {
	Index    int     `yaml:"index"`
	Waveform string  `yaml:"waveform"`
	Gain     float64 `yaml:"gain"`
	Octave   int     `yaml:"octave"`
}

type moveStep struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

type effectStep struct {
	Axis    string         `yaml:"axis"`
	Name    string         `yaml:"name"`
	Options map[string]any `yaml:"options"`
}

type optionStep struct {
	Axis  string `yaml:"axis"`
	Key   string `yaml:"key"`
	Value any    `yaml:"value"`
}

var errEmptyStep = errors.New("step has no action")

// LoadScript reads and validates a YAML script.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}

	s, err := ParseScript(data)
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", path, err)
	}

	return s, nil
}

// ParseScript decodes a YAML script and checks that every step names
// exactly one action.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}

	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	return &s, nil
}

func (s Step) kinds() []string {
	var out []string

	add := func(set bool, name string) {
		if set {
			out = append(out, name)
		}
	}

	add(s.Press != "", "press")
	add(s.Release != "", "release")
	add(s.ReleaseAll, "release_all")
	add(s.Oscillator != nil, "oscillator")
	add(s.Move != nil, "move")
	add(s.Effect != nil, "effect")
	add(s.Option != nil, "option")
	add(s.Onboarding, "onboarding")
	add(s.Render != 0, "render")

	return out
}

func (s Step) validate() error {
	kinds := s.kinds()

	switch {
	case len(kinds) == 0:
		return errEmptyStep
	case len(kinds) > 1:
		return fmt.Errorf("step mixes actions: %s", strings.Join(kinds, ", "))
	}

	switch {
	case s.Render < 0:
		return fmt.Errorf("render duration must be > 0: %v", s.Render)
	case s.Effect != nil && !state.Axis(s.Effect.Axis).Valid():
		return fmt.Errorf("effect: unknown axis %q", s.Effect.Axis)
	case s.Option != nil && !state.Axis(s.Option.Axis).Valid():
		return fmt.Errorf("option: unknown axis %q", s.Option.Axis)
	case s.Option != nil && s.Option.Key == "":
		return errors.New("option: empty key")
	}

	return nil
}

// Action converts the step to a store action. Render steps return nil.
func (s Step) Action() state.Action {
	switch {
	case s.Press != "":
		return state.PressNote{Note: s.Press}
	case s.Release != "":
		return state.ReleaseNote{Note: s.Release}
	case s.ReleaseAll:
		return state.ReleaseAllNotes{}
	case s.Oscillator != nil:
		return state.SetOscillator{
			Index: s.Oscillator.Index,
			Config: state.OscillatorConfig{
				Waveform:         state.Waveform(strings.ToLower(s.Oscillator.Waveform)),
				Gain:             s.Oscillator.Gain,
				OctaveAdjustment: s.Oscillator.Octave,
			},
		}
	case s.Move != nil:
		return state.MovePad{X: s.Move.X, Y: s.Move.Y}
	case s.Effect != nil:
		return state.ChangeEffect{
			Axis:    state.Axis(s.Effect.Axis),
			Name:    s.Effect.Name,
			Options: normalizeOptions(s.Effect.Options),
		}
	case s.Option != nil:
		return state.TweakEffectOption{
			Axis:  state.Axis(s.Option.Axis),
			Key:   s.Option.Key,
			Value: normalizeValue(s.Option.Value),
		}
	case s.Onboarding:
		return state.AdvanceOnboarding{}
	}

	return nil
}

// Label is a short description of the step for reports.
func (s Step) Label() string {
	switch {
	case s.Press != "":
		return "press " + s.Press
	case s.Release != "":
		return "release " + s.Release
	case s.Oscillator != nil:
		return fmt.Sprintf("oscillator %d", s.Oscillator.Index)
	case s.Move != nil:
		return fmt.Sprintf("move %.2f,%.2f", s.Move.X, s.Move.Y)
	case s.Effect != nil:
		return fmt.Sprintf("effect %s=%s", s.Effect.Axis, s.Effect.Name)
	case s.Option != nil:
		return fmt.Sprintf("option %s.%s", s.Option.Axis, s.Option.Key)
	case s.Render != 0:
		return fmt.Sprintf("render %.2fs", s.Render)
	}

	return strings.Join(s.kinds(), "")
}

func normalizeOptions(in map[string]any) state.Options {
	if in == nil {
		return nil
	}

	out := make(state.Options, len(in))
	for k, v := range in {
		out[k] = normalizeValue(v)
	}

	return out
}

// normalizeValue maps YAML integers to float64 to match runtime values.
func normalizeValue(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	}

	return v
}
