package testutil

import "math"

// Sine returns n samples of a unit-amplitude sine at freqHz.
func Sine(freqHz, sampleRate float64, n int) []float64 {
	out := make([]float64, n)
	step := 2 * math.Pi * freqHz / sampleRate

	for i := range out {
		out[i] = math.Sin(step * float64(i))
	}

	return out
}

// Impulse returns n samples with a single 1 at pos.
func Impulse(n, pos int) []float64 {
	out := make([]float64, n)
	if pos >= 0 && pos < n {
		out[pos] = 1
	}

	return out
}
