package reconcile

import (
	"reflect"
	"slices"

	"github.com/cwbudde/padsynth/state"
)

type pathKind int

const (
	pathNotes pathKind = iota
	pathOscillators
	pathEffect
	pathEffectAmount
	pathEffectName
	pathEffectOptions
)

// Path identifies one watched location in a snapshot. The set of paths is
// closed; build them with the constructors below.
type Path struct {
	kind pathKind
	axis state.Axis
}

// NotesPath watches the set of held notes.
func NotesPath() Path { return Path{kind: pathNotes} }

// OscillatorsPath watches the oscillator bank configuration.
func OscillatorsPath() Path { return Path{kind: pathOscillators} }

// EffectPath watches the whole effect configuration of axis.
func EffectPath(axis state.Axis) Path { return Path{kind: pathEffect, axis: axis} }

// EffectAmountPath watches the pad-derived intensity of axis.
func EffectAmountPath(axis state.Axis) Path { return Path{kind: pathEffectAmount, axis: axis} }

// EffectNamePath watches the effect type assigned to axis.
func EffectNamePath(axis state.Axis) Path { return Path{kind: pathEffectName, axis: axis} }

// EffectOptionsPath watches the effect-specific options of axis.
func EffectOptionsPath(axis state.Axis) Path { return Path{kind: pathEffectOptions, axis: axis} }

// String returns the dotted form of p, e.g. "effects.x.amount".
func (p Path) String() string {
	switch p.kind {
	case pathNotes:
		return "notes"
	case pathOscillators:
		return "oscillators"
	case pathEffect:
		return "effects." + string(p.axis)
	case pathEffectAmount:
		return "effects." + string(p.axis) + ".amount"
	case pathEffectName:
		return "effects." + string(p.axis) + ".name"
	case pathEffectOptions:
		return "effects." + string(p.axis) + ".options"
	default:
		return "unknown"
	}
}

// DiffersAt reports whether the value at path differs between previous and
// current. Without a previous snapshot nothing is considered changed. A value
// that cannot be resolved is absent; two absent values are equal and an
// absent value never equals a present one.
func DiffersAt(previous, current *state.Snapshot, path Path) bool {
	if previous == nil {
		return false
	}

	switch path.kind {
	case pathNotes:
		return !sameNoteSet(notesOf(previous), notesOf(current))
	case pathOscillators:
		return !slices.Equal(oscillatorsOf(previous), oscillatorsOf(current))
	}

	prev, prevOK := previous.Effect(path.axis)
	cur, curOK := current.Effect(path.axis)

	if !prevOK || !curOK {
		return prevOK != curOK
	}

	switch path.kind {
	case pathEffect:
		return prev.Name != cur.Name || prev.Amount != cur.Amount || !optionsEqual(prev.Options, cur.Options)
	case pathEffectAmount:
		return prev.Amount != cur.Amount
	case pathEffectName:
		return prev.Name != cur.Name
	case pathEffectOptions:
		return !optionsEqual(prev.Options, cur.Options)
	default:
		return false
	}
}

func effectsOf(s *state.Snapshot) state.Effects {
	if s == nil {
		return nil
	}

	return s.Effects
}

func notesOf(s *state.Snapshot) []string {
	if s == nil {
		return nil
	}

	return s.Notes
}

func oscillatorsOf(s *state.Snapshot) []state.OscillatorConfig {
	if s == nil {
		return nil
	}

	return s.Oscillators
}

// sameNoteSet compares held notes ignoring order and repetition.
func sameNoteSet(a, b []string) bool {
	set := make(map[string]bool, len(a))
	for _, n := range a {
		set[n] = false
	}

	for _, n := range b {
		if _, ok := set[n]; !ok {
			return false
		}

		set[n] = true
	}

	for _, seen := range set {
		if !seen {
			return false
		}
	}

	return true
}

// optionsEqual compares key sets and values; nil and empty maps are equal.
func optionsEqual(a, b state.Options) bool {
	if len(a) != len(b) {
		return false
	}

	for k, av := range a {
		bv, ok := b[k]
		if !ok || !reflect.DeepEqual(av, bv) {
			return false
		}
	}

	return true
}
