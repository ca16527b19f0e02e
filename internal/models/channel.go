package models

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Channel represents one colour channel of a sinogram
type Channel struct {
	// AngleCount is the number of projection angles (rows). Angles are
	// spread evenly over 0..180 degrees.
	AngleCount int

	// SampleCount is the number of detector samples per projection (columns)
	SampleCount int

	// Values holds the projection data as an AngleCount x SampleCount matrix
	Values *mat.Dense
}

// NewChannel builds a channel from row-major projection data.
// The data slice is copied, so the caller may reuse it.
func NewChannel(angles, samples int, data []float64) (*Channel, error) {
	if angles < 1 || samples < 1 {
		return nil, fmt.Errorf("channel must have at least one angle and one sample, got %dx%d: %w",
			angles, samples, ErrShapeMismatch)
	}
	if len(data) != angles*samples {
		return nil, fmt.Errorf("channel data has %d values, expected %dx%d=%d: %w",
			len(data), angles, samples, angles*samples, ErrShapeMismatch)
	}

	values := make([]float64, len(data))
	copy(values, data)

	return &Channel{
		AngleCount:  angles,
		SampleCount: samples,
		Values:      mat.NewDense(angles, samples, values),
	}, nil
}

// ChannelFromMatrix wraps a copy of m as a channel, one row per angle.
func ChannelFromMatrix(m mat.Matrix) (*Channel, error) {
	if m == nil {
		return nil, fmt.Errorf("nil matrix: %w", ErrShapeMismatch)
	}
	rows, cols := m.Dims()
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("empty matrix %dx%d: %w", rows, cols, ErrShapeMismatch)
	}
	return &Channel{
		AngleCount:  rows,
		SampleCount: cols,
		Values:      mat.DenseCopyOf(m),
	}, nil
}

// Validate checks that the declared dimensions agree with the stored values
func (c *Channel) Validate() error {
	if c == nil || c.Values == nil {
		return fmt.Errorf("channel has no values: %w", ErrShapeMismatch)
	}
	rows, cols := c.Values.Dims()
	if rows != c.AngleCount || cols != c.SampleCount {
		return fmt.Errorf("channel declares %dx%d but holds %dx%d: %w",
			c.AngleCount, c.SampleCount, rows, cols, ErrShapeMismatch)
	}
	return nil
}

// Row returns a copy of the projection recorded at angle index i
func (c *Channel) Row(i int) []float64 {
	return mat.Row(nil, i, c.Values)
}

// AngleStep returns the angular distance between consecutive projections in degrees
func (c *Channel) AngleStep() float64 {
	return 180.0 / float64(c.AngleCount)
}

// SameShape reports whether both channels have identical dimensions
func (c *Channel) SameShape(other *Channel) bool {
	return c.AngleCount == other.AngleCount && c.SampleCount == other.SampleCount
}

// Sinogram holds the three colour channels of an RGB sinogram image
type Sinogram struct {
	Red   *Channel
	Green *Channel
	Blue  *Channel
}

// NewSinogram groups three channels, which must all share one shape
func NewSinogram(red, green, blue *Channel) (*Sinogram, error) {
	for _, ch := range []*Channel{red, green, blue} {
		if err := ch.Validate(); err != nil {
			return nil, err
		}
	}
	if !red.SameShape(green) || !red.SameShape(blue) {
		return nil, fmt.Errorf("channel shapes differ: red %dx%d, green %dx%d, blue %dx%d: %w",
			red.AngleCount, red.SampleCount,
			green.AngleCount, green.SampleCount,
			blue.AngleCount, blue.SampleCount, ErrShapeMismatch)
	}
	return &Sinogram{Red: red, Green: green, Blue: blue}, nil
}

// Channels returns the channels in fixed red, green, blue order
func (s *Sinogram) Channels() []*Channel {
	return []*Channel{s.Red, s.Green, s.Blue}
}

// ChannelNames lists the names matching the order returned by Channels
var ChannelNames = []string{"red", "green", "blue"}
