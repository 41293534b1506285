package state

import (
	"maps"
	"reflect"
	"slices"
)

// Action is an input to Reduce.
type Action interface {
	apply(s *Snapshot) *Snapshot
}

// PressNote adds a held note.
type PressNote struct {
	Note string
}

// ReleaseNote removes a held note.
type ReleaseNote struct {
	Note string
}

// ReleaseAllNotes clears every held note.
type ReleaseAllNotes struct{}

// SetOscillator replaces the oscillator in slot Index.
type SetOscillator struct {
	Index  int
	Config OscillatorConfig
}

// MovePad sets the amount of both axes from a pad position in [0, 1].
type MovePad struct {
	X float64
	Y float64
}

// ChangeEffect swaps the effect on Axis. Options replace the previous options
// entirely.
type ChangeEffect struct {
	Axis    Axis
	Name    string
	Options Options
}

// TweakEffectOption sets a single option on the effect of Axis.
type TweakEffectOption struct {
	Axis  Axis
	Key   string
	Value any
}

// AdvanceOnboarding moves the introduction flow forward.
type AdvanceOnboarding struct{}

// onboardingSteps is the number of introduction screens.
const onboardingSteps = 3

// Reduce derives the next snapshot. The input is never mutated. Actions that
// change nothing return s itself, which lets the Store skip the emission.
func Reduce(s *Snapshot, action Action) *Snapshot {
	if s == nil {
		s = &Snapshot{}
	}

	if action == nil {
		return s
	}

	return action.apply(s)
}

func (a PressNote) apply(s *Snapshot) *Snapshot {
	if a.Note == "" || slices.Contains(s.Notes, a.Note) {
		return s
	}

	next := s.Clone()
	next.Notes = append(next.Notes, a.Note)

	return next
}

func (a ReleaseNote) apply(s *Snapshot) *Snapshot {
	idx := slices.Index(s.Notes, a.Note)
	if idx < 0 {
		return s
	}

	next := s.Clone()
	next.Notes = slices.Delete(next.Notes, idx, idx+1)

	return next
}

func (ReleaseAllNotes) apply(s *Snapshot) *Snapshot {
	if len(s.Notes) == 0 {
		return s
	}

	next := s.Clone()
	next.Notes = []string{}

	return next
}

func (a SetOscillator) apply(s *Snapshot) *Snapshot {
	if a.Index < 0 || a.Index >= len(s.Oscillators) {
		return s
	}

	cfg := a.Config
	cfg.Gain = clampUnit(cfg.Gain)

	if s.Oscillators[a.Index] == cfg {
		return s
	}

	next := s.Clone()
	next.Oscillators[a.Index] = cfg

	return next
}

func (a MovePad) apply(s *Snapshot) *Snapshot {
	amounts := map[Axis]float64{AxisX: clampUnit(a.X), AxisY: clampUnit(a.Y)}

	changed := false

	for _, axis := range Axes {
		cfg, ok := s.Effect(axis)
		if ok && cfg.Amount != amounts[axis] {
			changed = true
		}
	}

	if !changed {
		return s
	}

	next := s.Clone()

	for _, axis := range Axes {
		cfg, ok := next.Effects[axis]
		if !ok {
			continue
		}

		cfg.Amount = amounts[axis]
		next.Effects[axis] = cfg
	}

	return next
}

func (a ChangeEffect) apply(s *Snapshot) *Snapshot {
	if !a.Axis.Valid() {
		return s
	}

	next := s.Clone()
	if next.Effects == nil {
		next.Effects = Effects{}
	}

	cfg := next.Effects[a.Axis]
	cfg.Name = a.Name
	cfg.Options = Options{}
	maps.Copy(cfg.Options, a.Options)

	next.Effects[a.Axis] = cfg

	return next
}

func (a TweakEffectOption) apply(s *Snapshot) *Snapshot {
	cfg, ok := s.Effect(a.Axis)
	if !ok || a.Key == "" {
		return s
	}

	if cur, exists := cfg.Options[a.Key]; exists && reflect.DeepEqual(cur, a.Value) {
		return s
	}

	next := s.Clone()
	cfg = next.Effects[a.Axis]

	if cfg.Options == nil {
		cfg.Options = Options{}
	}

	cfg.Options[a.Key] = a.Value
	next.Effects[a.Axis] = cfg

	return next
}

func (AdvanceOnboarding) apply(s *Snapshot) *Snapshot {
	if s.Onboarding.Complete {
		return s
	}

	next := s.Clone()

	next.Onboarding.Step++
	if next.Onboarding.Step >= onboardingSteps {
		next.Onboarding.Complete = true
	}

	return next
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}

	if v > 1 {
		return 1
	}

	return v
}
