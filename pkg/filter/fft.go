package filter

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"sinorecon/internal/models"
)

// Spectrum is the row-wise frequency-domain representation of a channel.
// Each row holds the Samples/2+1 non-redundant coefficients of the real
// DFT of one projection.
type Spectrum struct {
	// Rows is the number of projections (angles)
	Rows int

	// Samples is the length of the real sequence each row was computed from
	Samples int

	// Coeffs holds one coefficient slice per row
	Coeffs [][]complex128
}

// Bins returns the number of complex coefficients per row
func (s *Spectrum) Bins() int {
	return s.Samples/2 + 1
}

// Clone returns a deep copy of the spectrum
func (s *Spectrum) Clone() *Spectrum {
	out := &Spectrum{Rows: s.Rows, Samples: s.Samples, Coeffs: make([][]complex128, len(s.Coeffs))}
	for i, row := range s.Coeffs {
		out.Coeffs[i] = append([]complex128(nil), row...)
	}
	return out
}

func (s *Spectrum) validate() error {
	if s == nil || s.Rows < 1 || s.Samples < 1 {
		return fmt.Errorf("empty spectrum: %w", models.ErrShapeMismatch)
	}
	if len(s.Coeffs) != s.Rows {
		return fmt.Errorf("spectrum declares %d rows but holds %d: %w",
			s.Rows, len(s.Coeffs), models.ErrShapeMismatch)
	}
	for i, row := range s.Coeffs {
		if len(row) != s.Bins() {
			return fmt.Errorf("spectrum row %d has %d bins, expected %d: %w",
				i, len(row), s.Bins(), models.ErrShapeMismatch)
		}
	}
	return nil
}

// Forward performs a real-input FFT on every row of the channel.
// This moves each projection into the frequency domain where the
// reconstruction filters are applied.
//
// Parameters:
//   - ch: Channel with one projection per row
//
// Returns:
//   - The per-row spectrum, with Samples/2+1 coefficients per row
func Forward(ch *models.Channel) (*Spectrum, error) {
	if err := ch.Validate(); err != nil {
		return nil, fmt.Errorf("forward transform: %w", err)
	}

	// Create a new FFT object from Gonum, shared by all rows
	fft := fourier.NewFFT(ch.SampleCount)

	spec := &Spectrum{
		Rows:    ch.AngleCount,
		Samples: ch.SampleCount,
		Coeffs:  make([][]complex128, ch.AngleCount),
	}

	rowInput := make([]float64, ch.SampleCount)
	for i := 0; i < ch.AngleCount; i++ {
		mat.Row(rowInput, i, ch.Values)
		spec.Coeffs[i] = fft.Coefficients(nil, rowInput)
	}

	return spec, nil
}

// Inverse converts a spectrum back into a spatial-domain channel.
// Gonum's inverse transform is unnormalized, so every row is scaled by
// 1/Samples to recover the original sequence.
func Inverse(s *Spectrum) (*models.Channel, error) {
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("inverse transform: %w", err)
	}

	fft := fourier.NewFFT(s.Samples)
	scale := 1 / float64(s.Samples)

	data := make([]float64, s.Rows*s.Samples)
	for i, coeffs := range s.Coeffs {
		row := data[i*s.Samples : (i+1)*s.Samples]
		fft.Sequence(row, coeffs)
		floats.Scale(scale, row)
	}

	return models.NewChannel(s.Rows, s.Samples, data)
}
