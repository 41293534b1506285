package reconcile

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cwbudde/padsynth/state"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for pass summaries and listener errors.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithMetrics records pass outcomes and manager calls in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithErrorHandler receives errors from passes triggered by a subscription.
// The default handler logs them.
func WithErrorHandler(fn func(error)) Option {
	return func(c *Controller) {
		c.onError = fn
	}
}

// Controller reconciles snapshots against an AudioGraphManager. It holds the
// last snapshot it saw and nothing else; every Controller is independent.
// OnSnapshot must not be called concurrently.
type Controller struct {
	manager AudioGraphManager
	session string
	logger  zerolog.Logger
	metrics *Metrics
	onError func(error)

	previous *state.Snapshot

	source SnapshotSource
	subID  state.SubscriptionID
}

// New creates a Controller driving manager.
func New(manager AudioGraphManager, opts ...Option) *Controller {
	c := &Controller{
		manager: manager,
		session: uuid.New().String(),
		logger:  zerolog.Nop(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	c.logger = c.logger.With().Str("session", c.session).Logger()

	if c.onError == nil {
		c.onError = func(err error) {
			c.logger.Error().Err(err).Msg("reconcile pass failed")
		}
	}

	return c
}

// Session returns the unique id of this controller.
func (c *Controller) Session() string {
	return c.session
}

// Start subscribes to source. Each emission runs OnSnapshot with the
// source's current snapshot before the source may emit again.
func (c *Controller) Start(source SnapshotSource) {
	c.source = source
	c.subID = source.Subscribe(func() {
		if err := c.OnSnapshot(source.CurrentSnapshot()); err != nil {
			c.onError(err)
		}
	})
}

// Stop cancels the subscription made by Start. Calling Stop twice, or
// without Start, is not supported.
func (c *Controller) Stop() {
	c.source.Unsubscribe(c.subID)
}

// OnSnapshot reconciles current against the previously seen snapshot. The
// first snapshot only becomes the baseline. The baseline advances before any
// manager call, so a failed pass is not retried and the next pass diffs
// against current. The first manager error aborts the pass and is returned.
func (c *Controller) OnSnapshot(current *state.Snapshot) error {
	previous := c.previous
	c.previous = current

	if previous == nil {
		c.metrics.observePass(outcomeBaseline, 0)

		return nil
	}

	start := time.Now()

	cs := ComputeChangeSet(previous, current)
	if !cs.SoundsChanged {
		c.metrics.observePass(outcomeUnchanged, time.Since(start))

		return nil
	}

	err := c.apply(cs, current)
	if err != nil {
		c.metrics.observePass(outcomeFailed, time.Since(start))

		return err
	}

	c.metrics.observePass(outcomeApplied, time.Since(start))
	c.logger.Debug().
		Bool("notes", cs.NotesChanged).
		Bool("oscillators", cs.OscillatorsChanged).
		Bool("x", cs.Axes[0].Changed).
		Bool("y", cs.Axes[1].Changed).
		Msg("reconciled")

	return nil
}

func (c *Controller) apply(cs ChangeSet, current *state.Snapshot) error {
	if cs.BankChanged() {
		if err := c.call(OpStopAllOscillators, c.manager.StopAllOscillators); err != nil {
			return err
		}

		err := c.call(OpCreateOscillators, func() error {
			return c.manager.CreateOscillators(current)
		})
		if err != nil {
			return err
		}
	}

	for _, ac := range cs.Axes {
		if !ac.Changed {
			continue
		}

		if err := c.applyAxis(ac, current); err != nil {
			return err
		}
	}

	return nil
}

func (c *Controller) applyAxis(ac AxisChange, current *state.Snapshot) error {
	cfg, _ := current.Effect(ac.Axis)

	if ac.PositionChanged {
		err := c.call(OpUpdateEffectAmount, func() error {
			return c.manager.UpdateEffectAmount(ac.Axis, cfg.Amount)
		})
		if err != nil {
			return err
		}
	}

	if ac.EffectNameChanged {
		if err := c.call(OpDestroyEffectChain, c.manager.DestroyEffectChain); err != nil {
			return err
		}

		err := c.call(OpRebuildEffectChain, func() error {
			return c.manager.RebuildEffectChain(effectsOf(current))
		})
		if err != nil {
			return err
		}
	}

	if ac.EffectParamsChanged {
		err := c.call(OpUpdateEffectParameters, func() error {
			return c.manager.UpdateEffectParameters(ac.Axis, cfg.Options)
		})
		if err != nil {
			return err
		}
	}

	return nil
}

func (c *Controller) call(op string, fn func() error) error {
	c.metrics.observeCall(op)

	if err := fn(); err != nil {
		return opError(op, err)
	}

	return nil
}

func opError(op string, err error) error {
	return fmt.Errorf("reconcile: %s: %w", op, err)
}
