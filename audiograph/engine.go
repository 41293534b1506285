// Package audiograph is an offline audio graph: a bank of oscillator voices
// feeding one effect per pad axis. Engine implements the reconcile
// AudioGraphManager contract and renders mono blocks on demand.
package audiograph

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/cwbudde/algo-vecmath"
	"github.com/rs/zerolog"

	"github.com/cwbudde/padsynth/state"
)

// ErrInvalidAxis is returned for axes other than x and y.
var ErrInvalidAxis = errors.New("invalid axis")

const (
	defaultSampleRate = 48000.0
	defaultBlockSize  = 512
	defaultMasterGain = 0.8
)

// Option configures an Engine.
type Option func(*Engine)

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) Option {
	return func(e *Engine) {
		if sampleRate > 0 {
			e.ctx.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the internal render block size.
func WithBlockSize(blockSize int) Option {
	return func(e *Engine) {
		if blockSize > 0 {
			e.blockSize = blockSize
		}
	}
}

// WithMasterGain sets the output gain in [0, 1].
func WithMasterGain(gain float64) Option {
	return func(e *Engine) {
		e.masterGain = clamp(gain, 0, 1)
	}
}

// WithRegistry replaces the effect registry.
func WithRegistry(r *Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

// WithLogger sets the logger used for graph changes.
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

type axisEffect struct {
	effectType string
	runtime    Runtime
	params     Params
}

// Stats describes the live graph.
type Stats struct {
	Voices  int
	Effects [2]string
}

// Engine owns the oscillator voices and the per-axis effect runtimes. All
// methods are safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	ctx        Context
	blockSize  int
	masterGain float64
	registry   *Registry
	logger     zerolog.Logger

	voices  []*voice
	effects [2]*axisEffect

	voiceBuf []float64
}

// NewEngine creates an Engine with no voices and no effects.
func NewEngine(opts ...Option) (*Engine, error) {
	e := &Engine{
		ctx:        Context{SampleRate: defaultSampleRate},
		blockSize:  defaultBlockSize,
		masterGain: defaultMasterGain,
		logger:     zerolog.Nop(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}

	if e.registry == nil {
		e.registry = DefaultRegistry()
	}

	if e.ctx.SampleRate <= 0 {
		return nil, fmt.Errorf("audiograph: sample rate must be > 0: %f", e.ctx.SampleRate)
	}

	e.voiceBuf = make([]float64, e.blockSize)

	return e, nil
}

// SampleRate returns the processing sample rate.
func (e *Engine) SampleRate() float64 {
	return e.ctx.SampleRate
}

// Registry returns the effect registry in use.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// StopAllOscillators releases every voice.
func (e *Engine) StopAllOscillators() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.voices = nil

	return nil
}

// CreateOscillators adds one voice per held note and oscillator slot. Notes
// are voiced in sorted order and duplicates are ignored. Nothing is added if
// any note or waveform is invalid.
func (e *Engine) CreateOscillators(snap *state.Snapshot) error {
	if snap == nil {
		return nil
	}

	notes := slices.Clone(snap.Notes)
	slices.Sort(notes)
	notes = slices.Compact(notes)

	voices := make([]*voice, 0, len(notes)*len(snap.Oscillators))

	for _, note := range notes {
		midi, err := ParseNote(note)
		if err != nil {
			return fmt.Errorf("audiograph: create oscillators: %w", err)
		}

		for _, cfg := range snap.Oscillators {
			v, err := newVoice(cfg, midi, e.ctx.SampleRate)
			if err != nil {
				return fmt.Errorf("audiograph: create oscillators: %w", err)
			}

			voices = append(voices, v)
		}
	}

	e.mu.Lock()
	e.voices = append(e.voices, voices...)
	n := len(e.voices)
	e.mu.Unlock()

	e.logger.Debug().Int("voices", n).Msg("oscillators created")

	return nil
}

// DestroyEffectChain drops the effect runtimes of both axes.
func (e *Engine) DestroyEffectChain() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.effects = [2]*axisEffect{}

	return nil
}

// RebuildEffectChain creates fresh runtimes for both axes. An axis that is
// missing or has an empty effect name gets no runtime.
func (e *Engine) RebuildEffectChain(effects state.Effects) error {
	var built [2]*axisEffect

	for i, axis := range state.Axes {
		cfg, ok := effects[axis]
		if !ok || cfg.Name == "" {
			continue
		}

		runtime, err := e.registry.newRuntime(e.ctx, cfg.Name)
		if err != nil {
			return fmt.Errorf("audiograph: rebuild axis %s: %w", axis, err)
		}

		params := newParams(cfg)
		if err := runtime.Configure(e.ctx, params); err != nil {
			return fmt.Errorf("audiograph: configure axis %s (%s): %w", axis, cfg.Name, err)
		}

		built[i] = &axisEffect{effectType: cfg.Name, runtime: runtime, params: params}
	}

	e.mu.Lock()
	e.effects = built
	e.mu.Unlock()

	e.logger.Debug().Str("x", typeOf(built[0])).Str("y", typeOf(built[1])).Msg("effect chain rebuilt")

	return nil
}

// UpdateEffectAmount reconfigures the intensity of the runtime on axis
// without recreating it. An axis without a runtime is left alone.
func (e *Engine) UpdateEffectAmount(axis state.Axis, amount float64) error {
	return e.reconfigure(axis, func(p *Params) {
		p.Amount = clamp(amount, 0, 1)
	})
}

// UpdateEffectParameters reconfigures the options of the runtime on axis
// without recreating it. An axis without a runtime is left alone.
func (e *Engine) UpdateEffectParameters(axis state.Axis, options state.Options) error {
	num, str := parseOptions(options)

	return e.reconfigure(axis, func(p *Params) {
		p.Num = num
		p.Str = str
	})
}

func (e *Engine) reconfigure(axis state.Axis, update func(p *Params)) error {
	idx, err := axisIndex(axis)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	fx := e.effects[idx]
	if fx == nil {
		return nil
	}

	params := fx.params
	update(&params)

	if err := fx.runtime.Configure(e.ctx, params); err != nil {
		return fmt.Errorf("audiograph: configure axis %s (%s): %w", axis, fx.effectType, err)
	}

	fx.params = params

	return nil
}

// Render fills dst with mono samples in [-1, 1]: the voice sum, the x effect,
// the y effect, then master gain.
func (e *Engine) Render(dst []float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for start := 0; start < len(dst); start += e.blockSize {
		end := min(start+e.blockSize, len(dst))
		e.renderBlock(dst[start:end])
	}
}

func (e *Engine) renderBlock(block []float64) {
	clear(block)

	scratch := e.voiceBuf[:len(block)]
	for _, v := range e.voices {
		v.render(scratch)
		vecmath.AddBlockInPlace(block, scratch)
	}

	for _, fx := range e.effects {
		if fx != nil {
			fx.runtime.Process(block)
		}
	}

	vecmath.ScaleBlock(block, block, e.masterGain)

	for i, x := range block {
		block[i] = clamp(x, -1, 1)
	}
}

// Stats returns the voice count and the effect type on each axis.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	return Stats{
		Voices:  len(e.voices),
		Effects: [2]string{typeOf(e.effects[0]), typeOf(e.effects[1])},
	}
}

func axisIndex(axis state.Axis) (int, error) {
	for i, a := range state.Axes {
		if a == axis {
			return i, nil
		}
	}

	return 0, fmt.Errorf("audiograph: %w: %q", ErrInvalidAxis, axis)
}

func typeOf(fx *axisEffect) string {
	if fx == nil {
		return ""
	}

	return fx.effectType
}
