package audiograph

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

const (
	minAnalysisSize = 256
	maxAnalysisSize = 16384
)

// DominantFrequency estimates the strongest frequency in samples using a
// Hann-windowed FFT over the largest power-of-two prefix (256 to 16384
// samples) with parabolic peak interpolation. The DC bin is ignored and silence
// yields 0.
func DominantFrequency(samples []float64, sampleRate float64) (float64, error) {
	if sampleRate <= 0 {
		return 0, fmt.Errorf("analysis: sample rate must be > 0: %f", sampleRate)
	}

	n := maxAnalysisSize
	for n > len(samples) {
		n >>= 1
	}

	if n < minAnalysisSize {
		return 0, fmt.Errorf("analysis: need at least %d samples, got %d", minAnalysisSize, len(samples))
	}

	win := make([]float64, n)
	for i := range win {
		win[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n))
	}

	windowed := make([]float64, n)
	vecmath.MulBlock(windowed, samples[:n], win)

	in := make([]complex128, n)
	for i, s := range windowed {
		in[i] = complex(s, 0)
	}

	plan, err := algofft.NewPlan64(n)
	if err != nil {
		return 0, fmt.Errorf("analysis: init fft plan: %w", err)
	}

	out := make([]complex128, n)
	if err := plan.Forward(out, in); err != nil {
		return 0, fmt.Errorf("analysis: forward fft: %w", err)
	}

	bins := n/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)

	for k := range bins {
		re[k] = real(out[k])
		im[k] = imag(out[k])
	}

	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)

	peak := 1
	for k := 2; k < bins; k++ {
		if mag[k] > mag[peak] {
			peak = k
		}
	}

	if mag[peak] == 0 {
		return 0, nil
	}

	offset := 0.0
	if peak < bins-1 {
		a, b, c := mag[peak-1], mag[peak], mag[peak+1]
		if den := a - 2*b + c; den != 0 {
			offset = clamp(0.5*(a-c)/den, -0.5, 0.5)
		}
	}

	return (float64(peak) + offset) * sampleRate / float64(n), nil
}

// Levels returns the absolute peak and the RMS level of samples.
func Levels(samples []float64) (peak, rms float64) {
	if len(samples) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, s := range samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}

		sum += s * s
	}

	return peak, math.Sqrt(sum / float64(len(samples)))
}
