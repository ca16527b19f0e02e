// Package filter implements the frequency-domain stage of filtered
// back-projection: the row-wise real FFT, its inverse, and the ramp,
// Hamming-windowed and Hann-windowed ramp kernels.
package filter

import (
	"fmt"
	"strings"

	"sinorecon/internal/models"
)

// Kind selects the reconstruction filter
type Kind int

const (
	// None back-projects the raw projections
	None Kind = iota
	// Ramp applies the plain ramp kernel
	Ramp
	// Hamming applies the Hamming-windowed ramp kernel
	Hamming
	// Hann applies the Hann-windowed ramp kernel
	Hann
)

// Kinds lists every filter in the order the CLI runs them by default
var Kinds = []Kind{None, Ramp, Hamming, Hann}

func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Ramp:
		return "ramp"
	case Hamming:
		return "hamming"
	case Hann:
		return "hann"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Title returns a human readable label, used for viewer captions
func (k Kind) Title() string {
	switch k {
	case None:
		return "without filtering"
	case Ramp:
		return "with ramp filtering"
	case Hamming:
		return "with Hamming windowed ramp filtering"
	case Hann:
		return "with Hann windowed ramp filtering"
	default:
		return k.String()
	}
}

// ParseKind converts a filter name (case-insensitive) into a Kind
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "none", "unfiltered":
		return None, nil
	case "ramp":
		return Ramp, nil
	case "hamming":
		return Hamming, nil
	case "hann", "hanning":
		return Hann, nil
	}
	return None, fmt.Errorf("unknown filter %q (must be none, ramp, hamming or hann)", name)
}

// KernelFor builds the kernel of the given kind for rows of the given length.
// None has no kernel and returns nil.
func KernelFor(kind Kind, samples int) (Kernel, error) {
	switch kind {
	case None:
		return nil, nil
	case Ramp:
		return RampKernel(samples), nil
	case Hamming:
		return WindowedKernel(samples, HammingWindow)
	case Hann:
		return WindowedKernel(samples, HannWindow)
	}
	return nil, fmt.Errorf("unsupported filter %v", kind)
}

// Apply runs the frequency-domain stage of a filter on one channel:
// forward FFT, kernel multiplication and inverse FFT. With None the
// channel is returned unchanged.
func Apply(ch *models.Channel, kind Kind) (*models.Channel, error) {
	if err := ch.Validate(); err != nil {
		return nil, fmt.Errorf("%v filter: %w", kind, err)
	}
	if kind == None {
		return ch, nil
	}

	kernel, err := KernelFor(kind, ch.SampleCount)
	if err != nil {
		return nil, fmt.Errorf("%v filter: %w", kind, err)
	}

	spec, err := Forward(ch)
	if err != nil {
		return nil, err
	}

	filtered, err := kernel.Apply(spec)
	if err != nil {
		return nil, fmt.Errorf("%v filter: %w", kind, err)
	}

	return Inverse(filtered)
}
