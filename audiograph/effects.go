package audiograph

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"
)

// Effect type names registered by DefaultRegistry.
const (
	EffectFilter     = "filter"
	EffectDistortion = "distortion"
	EffectTremolo    = "tremolo"
	EffectDelay      = "delay"
	EffectBitCrusher = "bitcrusher"
)

const (
	minCutoffHz   = 20.0
	maxCutoffHz   = 20000.0
	maxDelaySecs  = 2.0
	maxFeedback   = 0.95
	maxDriveRatio = 50.0
)

// DefaultRegistry returns a registry with every built-in pad effect.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(EffectFilter, func(_ Context) (Runtime, error) { return &filterRuntime{}, nil })
	r.MustRegister(EffectDistortion, func(_ Context) (Runtime, error) { return &distortionRuntime{}, nil })
	r.MustRegister(EffectTremolo, func(_ Context) (Runtime, error) { return &tremoloRuntime{}, nil })
	r.MustRegister(EffectDelay, func(_ Context) (Runtime, error) { return &delayRuntime{}, nil })
	r.MustRegister(EffectBitCrusher, func(_ Context) (Runtime, error) { return &bitCrusherRuntime{}, nil })

	return r
}

// filterRuntime is a resonant biquad. The pad amount sweeps the cutoff
// exponentially from 20 Hz to 20 kHz.
type filterRuntime struct {
	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     float64
}

func (f *filterRuntime) Configure(ctx Context, p Params) error {
	if ctx.SampleRate <= 0 {
		return fmt.Errorf("filter: sample rate must be > 0: %f", ctx.SampleRate)
	}

	cutoff := minCutoffHz * math.Pow(maxCutoffHz/minCutoffHz, p.Amount)
	cutoff = clamp(cutoff, minCutoffHz, 0.45*ctx.SampleRate)
	q := clamp(p.GetNum("resonance", 1), 0.1, 30)

	w0 := 2 * math.Pi * cutoff / ctx.SampleRate
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)

	var b0, b1, b2 float64

	switch kind := strings.ToLower(p.GetStr("type", "lowpass")); kind {
	case "lowpass":
		b0, b1, b2 = (1-cosw)/2, 1-cosw, (1-cosw)/2
	case "highpass":
		b0, b1, b2 = (1+cosw)/2, -(1 + cosw), (1+cosw)/2
	case "bandpass":
		b0, b1, b2 = alpha, 0, -alpha
	default:
		return fmt.Errorf("filter: unsupported type %q", kind)
	}

	a0 := 1 + alpha
	f.b0, f.b1, f.b2 = b0/a0, b1/a0, b2/a0
	f.a1, f.a2 = -2*cosw/a0, (1-alpha)/a0

	return nil
}

func (f *filterRuntime) Process(block []float64) {
	for i, x := range block {
		y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
		f.x2, f.x1 = f.x1, x
		f.y2, f.y1 = f.y1, y
		block[i] = y
	}
}

// distortionRuntime is a tanh waveshaper with optional linear-interpolated
// oversampling ("none", "2x", "4x").
type distortionRuntime struct {
	drive   float64
	norm    float64
	factor  int
	lastIn  float64
	enabled bool
}

func (d *distortionRuntime) Configure(_ Context, p Params) error {
	switch os := strings.ToLower(p.GetStr("oversampling", "none")); os {
	case "none", "1x":
		d.factor = 1
	case "2x":
		d.factor = 2
	case "4x":
		d.factor = 4
	default:
		return fmt.Errorf("distortion: unsupported oversampling %q", os)
	}

	d.drive = 1 + p.Amount*clamp(p.GetNum("drive", maxDriveRatio), 0, maxDriveRatio)
	d.norm = 1 / math.Tanh(d.drive)
	d.enabled = p.Amount > 0

	return nil
}

func (d *distortionRuntime) Process(block []float64) {
	if !d.enabled {
		if len(block) > 0 {
			d.lastIn = block[len(block)-1]
		}

		return
	}

	inv := 1 / float64(d.factor)

	for i, x := range block {
		sum := 0.0

		for k := 1; k <= d.factor; k++ {
			t := float64(k) * inv
			s := d.lastIn + (x-d.lastIn)*t
			sum += math.Tanh(d.drive*s) * d.norm
		}

		d.lastIn = x
		block[i] = sum * inv
	}
}

// tremoloRuntime modulates amplitude with a sine LFO. The pad amount is the
// modulation depth.
type tremoloRuntime struct {
	sampleRate float64
	rateHz     float64
	depth      float64
	phase      float64
	gain       []float64
}

func (t *tremoloRuntime) Configure(ctx Context, p Params) error {
	if ctx.SampleRate <= 0 {
		return fmt.Errorf("tremolo: sample rate must be > 0: %f", ctx.SampleRate)
	}

	rate := p.GetNum("rate", 4)
	if rate <= 0 {
		return fmt.Errorf("tremolo: rate must be > 0: %f", rate)
	}

	t.sampleRate = ctx.SampleRate
	t.rateHz = rate
	t.depth = p.Amount

	return nil
}

func (t *tremoloRuntime) Process(block []float64) {
	if cap(t.gain) < len(block) {
		t.gain = make([]float64, len(block))
	}

	gain := t.gain[:len(block)]
	step := t.rateHz / t.sampleRate

	for i := range gain {
		lfo := 0.5 - 0.5*math.Cos(2*math.Pi*t.phase)
		gain[i] = 1 - t.depth*lfo

		t.phase += step
		if t.phase >= 1 {
			t.phase -= math.Floor(t.phase)
		}
	}

	vecmath.MulBlockInPlace(block, gain)
}

// delayRuntime is a feedback delay. The pad amount is the wet mix.
type delayRuntime struct {
	buf      []float64
	pos      int
	feedback float64
	mix      float64
}

func (d *delayRuntime) Configure(ctx Context, p Params) error {
	if ctx.SampleRate <= 0 {
		return fmt.Errorf("delay: sample rate must be > 0: %f", ctx.SampleRate)
	}

	secs := clamp(p.GetNum("time", 0.25), 0.001, maxDelaySecs)

	size := int(secs * ctx.SampleRate)
	if size < 1 {
		size = 1
	}

	if size != len(d.buf) {
		d.buf = make([]float64, size)
		d.pos = 0
	}

	d.feedback = clamp(p.GetNum("feedback", 0.4), 0, maxFeedback)
	d.mix = p.Amount

	return nil
}

func (d *delayRuntime) Process(block []float64) {
	for i, x := range block {
		delayed := d.buf[d.pos]
		d.buf[d.pos] = x + delayed*d.feedback

		d.pos++
		if d.pos >= len(d.buf) {
			d.pos = 0
		}

		block[i] = x*(1-d.mix) + delayed*d.mix
	}
}

// bitCrusherRuntime reduces bit depth and sample rate. The pad amount maps
// 16 bits down to 2 bits.
type bitCrusherRuntime struct {
	step       float64
	downsample int
	counter    int
	hold       float64
}

func (b *bitCrusherRuntime) Configure(_ Context, p Params) error {
	bits := 16 - p.Amount*14
	b.step = 2 / math.Pow(2, bits)

	ds := int(p.GetNum("downsample", 1))
	if ds < 1 {
		return fmt.Errorf("bitcrusher: downsample must be >= 1: %d", ds)
	}

	b.downsample = ds

	return nil
}

func (b *bitCrusherRuntime) Process(block []float64) {
	for i, x := range block {
		if b.counter == 0 {
			b.hold = math.Round(x/b.step) * b.step
		}

		b.counter++
		if b.counter >= b.downsample {
			b.counter = 0
		}

		block[i] = b.hold
	}
}
