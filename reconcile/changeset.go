package reconcile

import "github.com/cwbudde/padsynth/state"

// AxisChange records what changed on one pad axis.
type AxisChange struct {
	Axis                state.Axis
	Changed             bool
	PositionChanged     bool
	EffectNameChanged   bool
	EffectParamsChanged bool
}

// ChangeSet is the per-pass record of which domains changed between two
// snapshots. Axes are ordered x, y.
type ChangeSet struct {
	NotesChanged       bool
	OscillatorsChanged bool
	SoundsChanged      bool
	Axes               [2]AxisChange
}

// BankChanged reports whether the oscillator bank must be rebuilt.
func (c ChangeSet) BankChanged() bool {
	return c.NotesChanged || c.OscillatorsChanged
}

// ComputeChangeSet diffs previous against current. It has no side effects; a
// nil previous yields an empty ChangeSet.
func ComputeChangeSet(previous, current *state.Snapshot) ChangeSet {
	cs := ChangeSet{
		NotesChanged:       DiffersAt(previous, current, NotesPath()),
		OscillatorsChanged: DiffersAt(previous, current, OscillatorsPath()),
	}

	cs.SoundsChanged = cs.BankChanged()

	for i, axis := range state.Axes {
		ac := AxisChange{Axis: axis}

		ac.Changed = DiffersAt(previous, current, EffectPath(axis))
		if ac.Changed {
			ac.PositionChanged = DiffersAt(previous, current, EffectAmountPath(axis))
			ac.EffectNameChanged = DiffersAt(previous, current, EffectNamePath(axis))
			ac.EffectParamsChanged = DiffersAt(previous, current, EffectOptionsPath(axis))
			cs.SoundsChanged = true
		}

		cs.Axes[i] = ac
	}

	return cs
}
