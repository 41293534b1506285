// Package reconcile keeps a live audio graph in step with a stream of
// immutable state snapshots. Each new snapshot is compared with the previous
// one and only the graph mutations implied by the change are issued.
package reconcile

import "github.com/cwbudde/padsynth/state"

// AudioGraphManager is the mutation contract of the audio backend.
type AudioGraphManager interface {
	// StopAllOscillators releases every live oscillator. Safe when none are live.
	StopAllOscillators() error
	// CreateOscillators builds the oscillator bank for the notes and
	// oscillator configs of snap.
	CreateOscillators(snap *state.Snapshot) error
	// DestroyEffectChain tears down the effect nodes of both axes.
	DestroyEffectChain() error
	// RebuildEffectChain recreates the effect chain of both axes from scratch.
	RebuildEffectChain(effects state.Effects) error
	// UpdateEffectAmount adjusts the intensity of an existing effect.
	UpdateEffectAmount(axis state.Axis, amount float64) error
	// UpdateEffectParameters adjusts the options of an existing effect.
	UpdateEffectParameters(axis state.Axis, options state.Options) error
}

// SnapshotSource delivers snapshots one at a time. Listeners receive no
// payload and read the new snapshot with CurrentSnapshot.
type SnapshotSource interface {
	Subscribe(listener func()) state.SubscriptionID
	Unsubscribe(id state.SubscriptionID)
	CurrentSnapshot() *state.Snapshot
}

// Names of the manager operations, used in logs, metrics and errors.
const (
	OpStopAllOscillators     = "stop_all_oscillators"
	OpCreateOscillators      = "create_oscillators"
	OpDestroyEffectChain     = "destroy_effect_chain"
	OpRebuildEffectChain     = "rebuild_effect_chain"
	OpUpdateEffectAmount     = "update_effect_amount"
	OpUpdateEffectParameters = "update_effect_parameters"
)

// Build performs a full graph construction from snap. Sessions call it once
// before Start, because the first snapshot a Controller sees only becomes
// its baseline.
func Build(m AudioGraphManager, snap *state.Snapshot) error {
	if err := m.StopAllOscillators(); err != nil {
		return opError(OpStopAllOscillators, err)
	}

	if err := m.CreateOscillators(snap); err != nil {
		return opError(OpCreateOscillators, err)
	}

	if err := m.DestroyEffectChain(); err != nil {
		return opError(OpDestroyEffectChain, err)
	}

	if err := m.RebuildEffectChain(effectsOf(snap)); err != nil {
		return opError(OpRebuildEffectChain, err)
	}

	return nil
}
