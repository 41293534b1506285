package audiograph

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cwbudde/padsynth/state"
)

var (
	// ErrUnknownNote is returned for note identifiers that cannot be parsed.
	ErrUnknownNote = errors.New("unknown note")
	// ErrUnknownWaveform is returned for unsupported oscillator waveforms.
	ErrUnknownWaveform = errors.New("unknown waveform")
)

const attackSeconds = 0.005

var semitones = map[byte]int{'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11}

// ParseNote converts a note identifier such as "c4", "F#3" or "bb2" to a
// MIDI note number (c4 = 60).
func ParseNote(note string) (int, error) {
	n := strings.ToLower(strings.TrimSpace(note))
	if len(n) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNote, note)
	}

	base, ok := semitones[n[0]]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNote, note)
	}

	rest := n[1:]

	switch rest[0] {
	case '#':
		base++
		rest = rest[1:]
	case 'b':
		if len(rest) > 1 {
			base--
			rest = rest[1:]
		}
	}

	octave, err := strconv.Atoi(rest)
	if err != nil || octave < -1 || octave > 9 {
		return 0, fmt.Errorf("%w: %q", ErrUnknownNote, note)
	}

	return (octave+1)*12 + base, nil
}

// NoteFrequency returns the equal-tempered frequency of a MIDI note, A4 = 440 Hz.
func NoteFrequency(midi int) float64 {
	return 440 * math.Pow(2, float64(midi-69)/12)
}

// voice is one sounding oscillator: a single note on a single bank slot.
type voice struct {
	waveform   state.Waveform
	gain       float64
	freqHz     float64
	phase      float64
	phaseStep  float64
	ageSamples int
	attack     int
}

func newVoice(cfg state.OscillatorConfig, midi int, sampleRate float64) (*voice, error) {
	switch cfg.Waveform {
	case state.WaveformSine, state.WaveformSquare, state.WaveformSawtooth, state.WaveformTriangle:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownWaveform, cfg.Waveform)
	}

	freq := NoteFrequency(midi + 12*cfg.OctaveAdjustment)

	attack := int(attackSeconds * sampleRate)
	if attack < 1 {
		attack = 1
	}

	return &voice{
		waveform:  cfg.Waveform,
		gain:      clamp(cfg.Gain, 0, 1),
		freqHz:    freq,
		phaseStep: freq / sampleRate,
		attack:    attack,
	}, nil
}

// render writes the voice output into dst, overwriting it.
func (v *voice) render(dst []float64) {
	for i := range dst {
		env := 1.0
		if v.ageSamples < v.attack {
			env = float64(v.ageSamples) / float64(v.attack)
		}

		dst[i] = v.gain * env * v.sample()

		v.phase += v.phaseStep
		if v.phase >= 1 {
			v.phase -= math.Floor(v.phase)
		}

		v.ageSamples++
	}
}

func (v *voice) sample() float64 {
	p := v.phase

	switch v.waveform {
	case state.WaveformSquare:
		if p < 0.5 {
			return 1
		}

		return -1
	case state.WaveformSawtooth:
		return 2*p - 1
	case state.WaveformTriangle:
		return 4*math.Abs(p-0.5) - 1
	default:
		return math.Sin(2 * math.Pi * p)
	}
}
