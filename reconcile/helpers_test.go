package reconcile

import (
	"github.com/cwbudde/padsynth/state"
)

// call is one recorded manager invocation.
type call struct {
	Op       string
	Axis     state.Axis
	Amount   float64
	Snapshot *state.Snapshot
	Effects  state.Effects
	Options  state.Options
}

// recordingManager records every call and optionally fails selected ops.
type recordingManager struct {
	calls  []call
	failOn map[string]error
}

func (r *recordingManager) record(c call) error {
	r.calls = append(r.calls, c)

	return r.failOn[c.Op]
}

func (r *recordingManager) StopAllOscillators() error {
	return r.record(call{Op: OpStopAllOscillators})
}

func (r *recordingManager) CreateOscillators(snap *state.Snapshot) error {
	return r.record(call{Op: OpCreateOscillators, Snapshot: snap})
}

func (r *recordingManager) DestroyEffectChain() error {
	return r.record(call{Op: OpDestroyEffectChain})
}

func (r *recordingManager) RebuildEffectChain(effects state.Effects) error {
	return r.record(call{Op: OpRebuildEffectChain, Effects: effects})
}

func (r *recordingManager) UpdateEffectAmount(axis state.Axis, amount float64) error {
	return r.record(call{Op: OpUpdateEffectAmount, Axis: axis, Amount: amount})
}

func (r *recordingManager) UpdateEffectParameters(axis state.Axis, options state.Options) error {
	return r.record(call{Op: OpUpdateEffectParameters, Axis: axis, Options: options})
}

func (r *recordingManager) ops() []string {
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.Op
	}

	return out
}

// baseSnapshot returns a fresh fully populated snapshot.
func baseSnapshot() *state.Snapshot {
	s := state.Default()
	s.Notes = []string{"c4", "e4"}

	return s
}

// modified clones base and applies fn to the clone.
func modified(base *state.Snapshot, fn func(s *state.Snapshot)) *state.Snapshot {
	next := base.Clone()
	fn(next)

	return next
}

func setEffect(s *state.Snapshot, axis state.Axis, fn func(cfg *state.EffectConfig)) {
	cfg := s.Effects[axis]
	fn(&cfg)
	s.Effects[axis] = cfg
}
