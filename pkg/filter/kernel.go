package filter

import (
	"fmt"
	"math"

	"sinorecon/internal/models"
)

// Kernel holds frequency weights in packed real-FFT order:
// index 0 weights the DC term, index 2k-1 the real part of bin k and
// index 2k its imaginary part. A kernel for a row of n samples has
// length n.
type Kernel []float64

// Window is a raised-cosine taper evaluated over half the row length
type Window struct {
	// Name identifies the window in logs and plots
	Name string

	// Alpha is the constant term; the cosine term is weighted by 1-Alpha
	Alpha float64
}

var (
	// HammingWindow is 0.54 + 0.46*cos(...)
	HammingWindow = Window{Name: "hamming", Alpha: 0.54}

	// HannWindow is 0.5 + 0.5*cos(...)
	HannWindow = Window{Name: "hann", Alpha: 0.5}
)

// Values evaluates the window for i in [0, samples/2).
// The cosine argument is pi*i/(samples/2 - 1), so at least three samples
// are required for a non-zero denominator.
func (w Window) Values(samples int) ([]float64, error) {
	half := samples / 2
	denom := float64(samples)/2 - 1
	if half < 1 || denom == 0 {
		return nil, fmt.Errorf("%s window over %d samples has a zero denominator: %w",
			w.Name, samples, models.ErrDegenerateInput)
	}

	values := make([]float64, half)
	for i := range values {
		values[i] = w.Alpha + (1-w.Alpha)*math.Cos(math.Pi*float64(i)/denom)
	}
	return values, nil
}

// RampKernel builds the ramp filter for rows of the given length.
// The weight of packed index p is floor((p+1)/2), so the real and
// imaginary parts of bin k are both scaled by k and DC is removed.
func RampKernel(samples int) Kernel {
	k := make(Kernel, samples)
	for p := range k {
		k[p] = math.Floor(float64(p+1) / 2)
	}
	return k
}

// WindowedKernel tapers the ramp kernel with a raised-cosine window.
//
// Window value i scales packed indices 2i-1 and 2i for i >= 1, and the
// last kernel entry always takes the last window value. This indexing is
// kept exactly as the reference reconstructions were produced with it.
func WindowedKernel(samples int, w Window) (Kernel, error) {
	window, err := w.Values(samples)
	if err != nil {
		return nil, err
	}

	ramp := RampKernel(samples)
	k := make(Kernel, samples)
	copy(k, ramp)

	for i := 1; i < len(window); i++ {
		k[2*i-1] = ramp[2*i-1] * window[i]
		if 2*i < samples {
			k[2*i] = ramp[2*i] * window[i]
		}
	}
	k[samples-1] = ramp[samples-1] * window[len(window)-1]

	return k, nil
}

// Apply multiplies every row of the spectrum by the kernel and returns
// the result as a new spectrum.
func (k Kernel) Apply(s *Spectrum) (*Spectrum, error) {
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("apply kernel: %w", err)
	}
	if len(k) != s.Samples {
		return nil, fmt.Errorf("kernel length %d does not match %d samples: %w",
			len(k), s.Samples, models.ErrShapeMismatch)
	}

	out := s.Clone()
	for _, row := range out.Coeffs {
		for bin, c := range row {
			re, im := k.weights(bin)
			row[bin] = complex(real(c)*re, imag(c)*im)
		}
	}
	return out, nil
}

// weights returns the packed weights for the real and imaginary part of a bin.
// DC and the Nyquist bin of an even-length row have no imaginary slot, so
// the real weight is used for both.
func (k Kernel) weights(bin int) (float64, float64) {
	if bin == 0 {
		return k[0], k[0]
	}
	re := k[2*bin-1]
	if 2*bin < len(k) {
		return re, k[2*bin]
	}
	return re, re
}
