package audiograph

import (
	"testing"

	"github.com/cwbudde/padsynth/reconcile"
	"github.com/cwbudde/padsynth/state"
)

var _ reconcile.AudioGraphManager = (*Engine)(nil)

const testSampleRate = 48000.0

// stubRuntime counts Configure and Process calls.
type stubRuntime struct {
	configureErr   error
	configureCalls int
	processCalls   int
	lastParams     Params
}

func (s *stubRuntime) Configure(_ Context, params Params) error {
	s.configureCalls++
	s.lastParams = params

	return s.configureErr
}

func (s *stubRuntime) Process(_ []float64) {
	s.processCalls++
}

// testRegistry registers a "stub" effect whose instances are collected in created.
func testRegistry(created *[]*stubRuntime) *Registry {
	r := NewRegistry()
	r.MustRegister("stub", func(_ Context) (Runtime, error) {
		rt := &stubRuntime{}
		*created = append(*created, rt)

		return rt, nil
	})

	return r
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()

	opts = append([]Option{WithSampleRate(testSampleRate)}, opts...)

	e, err := NewEngine(opts...)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	return e
}

func (e *Engine) runtimeFor(axis state.Axis) Runtime {
	idx, err := axisIndex(axis)
	if err != nil {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.effects[idx] == nil {
		return nil
	}

	return e.effects[idx].runtime
}

func render(e *Engine, seconds float64) []float64 {
	out := make([]float64, int(seconds*e.SampleRate()))
	e.Render(out)

	return out
}

func sineBank(notes ...string) *state.Snapshot {
	return &state.Snapshot{
		Notes:       notes,
		Oscillators: []state.OscillatorConfig{{Waveform: state.WaveformSine, Gain: 1}},
	}
}
