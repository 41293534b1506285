package audiograph

import (
	"errors"
	"testing"

	"github.com/cwbudde/padsynth/internal/testutil"
	"github.com/cwbudde/padsynth/state"
)

func TestNewEngine(t *testing.T) {
	t.Parallel()

	e, err := NewEngine()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if e.SampleRate() != defaultSampleRate {
		t.Errorf("expected default sample rate %v, got %v", defaultSampleRate, e.SampleRate())
	}

	if got := e.Stats(); got.Voices != 0 || got.Effects != [2]string{} {
		t.Errorf("new engine should be empty, got %+v", got)
	}

	if len(e.Registry().Names()) == 0 {
		t.Error("default registry should not be empty")
	}
}

func TestEngineSilentWithoutVoices(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	testutil.RequireSilent(t, render(e, 0.05), 0)
}

func TestEngineCreateOscillators(t *testing.T) {
	t.Parallel()

	t.Run("one voice per note and slot", func(t *testing.T) {
		t.Parallel()

		e := newTestEngine(t)
		snap := state.Default()
		snap.Notes = []string{"e4", "c4", "e4"}

		if err := e.CreateOscillators(snap); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := e.Stats().Voices; got != 4 {
			t.Errorf("expected 4 voices, got %d", got)
		}
	})

	t.Run("invalid note adds nothing", func(t *testing.T) {
		t.Parallel()

		e := newTestEngine(t)

		err := e.CreateOscillators(sineBank("c4", "h2"))
		if !errors.Is(err, ErrUnknownNote) {
			t.Fatalf("expected ErrUnknownNote, got %v", err)
		}

		if got := e.Stats().Voices; got != 0 {
			t.Errorf("expected no voices, got %d", got)
		}
	})

	t.Run("invalid waveform", func(t *testing.T) {
		t.Parallel()

		e := newTestEngine(t)
		snap := &state.Snapshot{
			Notes:       []string{"a4"},
			Oscillators: []state.OscillatorConfig{{Waveform: "noise", Gain: 1}},
		}

		err := e.CreateOscillators(snap)
		if !errors.Is(err, ErrUnknownWaveform) {
			t.Fatalf("expected ErrUnknownWaveform, got %v", err)
		}
	})

	t.Run("stop releases voices", func(t *testing.T) {
		t.Parallel()

		e := newTestEngine(t)
		if err := e.CreateOscillators(sineBank("a4")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := e.StopAllOscillators(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := e.StopAllOscillators(); err != nil {
			t.Fatalf("stop with no voices: %v", err)
		}

		testutil.RequireSilent(t, render(e, 0.01), 0)
	})
}

func TestEngineRendersNotePitch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		note   string
		octave int
		wantHz float64
	}{
		{name: "a4", note: "a4", wantHz: 440},
		{name: "a4 down one octave", note: "a4", octave: -1, wantHz: 220},
		{name: "c5", note: "c5", wantHz: 523.25},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			e := newTestEngine(t, WithMasterGain(0.5))
			snap := sineBank(tc.note)
			snap.Oscillators[0].OctaveAdjustment = tc.octave

			if err := e.CreateOscillators(snap); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			out := render(e, 0.5)
			testutil.RequireFinite(t, out)
			testutil.RequireWithin(t, out, -1, 1)

			got, err := DominantFrequency(out, e.SampleRate())
			if err != nil {
				t.Fatalf("DominantFrequency: %v", err)
			}

			testutil.RequireNear(t, "dominant frequency", got, tc.wantHz, 2)
		})
	}
}

func TestEngineMasterGainAndClamp(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, WithMasterGain(1))
	snap := &state.Snapshot{
		Notes: []string{"c4", "e4", "g4"},
		Oscillators: []state.OscillatorConfig{
			{Waveform: state.WaveformSquare, Gain: 1},
			{Waveform: state.WaveformSquare, Gain: 1},
		},
	}

	if err := e.CreateOscillators(snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := render(e, 0.1)
	testutil.RequireWithin(t, out, -1, 1)

	peak, _ := Levels(out)
	if peak != 1 {
		t.Errorf("expected clipped peak of 1, got %v", peak)
	}
}

func TestEngineRebuildEffectChain(t *testing.T) {
	t.Parallel()

	t.Run("default patch", func(t *testing.T) {
		t.Parallel()

		e := newTestEngine(t)
		if err := e.RebuildEffectChain(state.Default().Effects); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := e.Stats().Effects; got != [2]string{EffectFilter, EffectDistortion} {
			t.Errorf("unexpected effects %v", got)
		}
	})

	t.Run("unknown effect keeps previous chain", func(t *testing.T) {
		t.Parallel()

		e := newTestEngine(t)
		if err := e.RebuildEffectChain(state.Default().Effects); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		err := e.RebuildEffectChain(state.Effects{state.AxisY: {Name: "wormhole"}})
		if !errors.Is(err, ErrUnknownEffect) {
			t.Fatalf("expected ErrUnknownEffect, got %v", err)
		}

		if got := e.Stats().Effects[0]; got != EffectFilter {
			t.Errorf("expected filter to survive a failed rebuild, got %q", got)
		}
	})

	t.Run("empty name and missing axis", func(t *testing.T) {
		t.Parallel()

		e := newTestEngine(t)
		if err := e.RebuildEffectChain(state.Effects{state.AxisX: {Name: ""}}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := e.Stats().Effects; got != [2]string{} {
			t.Errorf("expected no effects, got %v", got)
		}
	})

	t.Run("bad options", func(t *testing.T) {
		t.Parallel()

		e := newTestEngine(t)
		err := e.RebuildEffectChain(state.Effects{
			state.AxisX: {Name: EffectFilter, Options: state.Options{"type": "notch-ish"}},
		})

		if err == nil {
			t.Fatal("expected configure error")
		}
	})

	t.Run("destroy", func(t *testing.T) {
		t.Parallel()

		e := newTestEngine(t)
		if err := e.RebuildEffectChain(state.Default().Effects); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if err := e.DestroyEffectChain(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := e.Stats().Effects; got != [2]string{} {
			t.Errorf("expected no effects after destroy, got %v", got)
		}
	})
}

func TestEngineUpdatesReconfigureInPlace(t *testing.T) {
	t.Parallel()

	var created []*stubRuntime

	e := newTestEngine(t, WithRegistry(testRegistry(&created)))

	err := e.RebuildEffectChain(state.Effects{
		state.AxisX: {Name: "stub", Amount: 0.2, Options: state.Options{"depth": 0.5}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(created) != 1 {
		t.Fatalf("expected 1 runtime, got %d", len(created))
	}

	rt := created[0]

	if err := e.UpdateEffectAmount(state.AxisX, 0.9); err != nil {
		t.Fatalf("UpdateEffectAmount: %v", err)
	}

	if err := e.UpdateEffectParameters(state.AxisX, state.Options{"depth": "0.75", "mode": "wide"}); err != nil {
		t.Fatalf("UpdateEffectParameters: %v", err)
	}

	if len(created) != 1 || e.runtimeFor(state.AxisX) != Runtime(rt) {
		t.Fatal("updates must not recreate the runtime")
	}

	if rt.configureCalls != 3 {
		t.Errorf("expected 3 Configure calls, got %d", rt.configureCalls)
	}

	p := rt.lastParams
	if p.Amount != 0.9 {
		t.Errorf("amount should survive an options update, got %v", p.Amount)
	}

	if p.GetNum("depth", 0) != 0.75 || p.GetStr("mode", "") != "wide" {
		t.Errorf("unexpected params %+v", p)
	}

	render(e, 0.01)

	if rt.processCalls == 0 {
		t.Error("runtime was not processed during render")
	}
}

func TestEngineUpdateWithoutRuntime(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)

	if err := e.UpdateEffectAmount(state.AxisY, 0.5); err != nil {
		t.Errorf("expected no-op, got %v", err)
	}

	if err := e.UpdateEffectParameters(state.AxisX, state.Options{"a": 1.0}); err != nil {
		t.Errorf("expected no-op, got %v", err)
	}

	if err := e.UpdateEffectAmount("z", 0.5); !errors.Is(err, ErrInvalidAxis) {
		t.Errorf("expected ErrInvalidAxis, got %v", err)
	}
}

func TestEngineUpdateConfigureError(t *testing.T) {
	t.Parallel()

	var created []*stubRuntime

	e := newTestEngine(t, WithRegistry(testRegistry(&created)))
	if err := e.RebuildEffectChain(state.Effects{state.AxisY: {Name: "stub"}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	errBad := errors.New("bad option")
	created[0].configureErr = errBad

	if err := e.UpdateEffectParameters(state.AxisY, state.Options{"x": 1.0}); !errors.Is(err, errBad) {
		t.Errorf("expected configure error, got %v", err)
	}
}
