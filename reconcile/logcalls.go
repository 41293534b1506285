package reconcile

import (
	"slices"

	"github.com/rs/zerolog"

	"github.com/cwbudde/padsynth/state"
)

type loggingManager struct {
	next   AudioGraphManager
	logger zerolog.Logger
}

// LogCalls wraps next so that every call is logged at debug level.
func LogCalls(next AudioGraphManager, logger zerolog.Logger) AudioGraphManager {
	return &loggingManager{next: next, logger: logger}
}

func (l *loggingManager) StopAllOscillators() error {
	err := l.next.StopAllOscillators()
	l.log(OpStopAllOscillators, err).Send()

	return err
}

func (l *loggingManager) CreateOscillators(snap *state.Snapshot) error {
	err := l.next.CreateOscillators(snap)

	ev := l.log(OpCreateOscillators, err)
	if snap != nil {
		ev = ev.Strs("notes", snap.Notes).Int("oscillators", len(snap.Oscillators))
	}

	ev.Send()

	return err
}

func (l *loggingManager) DestroyEffectChain() error {
	err := l.next.DestroyEffectChain()
	l.log(OpDestroyEffectChain, err).Send()

	return err
}

func (l *loggingManager) RebuildEffectChain(effects state.Effects) error {
	err := l.next.RebuildEffectChain(effects)

	ev := l.log(OpRebuildEffectChain, err)
	for _, axis := range state.Axes {
		if cfg, ok := effects[axis]; ok {
			ev = ev.Str(string(axis), cfg.Name)
		}
	}

	ev.Send()

	return err
}

func (l *loggingManager) UpdateEffectAmount(axis state.Axis, amount float64) error {
	err := l.next.UpdateEffectAmount(axis, amount)
	l.log(OpUpdateEffectAmount, err).Str("axis", string(axis)).Float64("amount", amount).Send()

	return err
}

func (l *loggingManager) UpdateEffectParameters(axis state.Axis, options state.Options) error {
	err := l.next.UpdateEffectParameters(axis, options)

	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}

	slices.Sort(keys)
	l.log(OpUpdateEffectParameters, err).Str("axis", string(axis)).Strs("options", keys).Send()

	return err
}

func (l *loggingManager) log(op string, err error) *zerolog.Event {
	if err != nil {
		return l.logger.Warn().Err(err).Str("op", op)
	}

	return l.logger.Debug().Str("op", op)
}
