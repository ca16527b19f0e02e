// Package phantom simulates parallel-beam sinograms of point sources with
// a known closed form, for testing reconstructions against ground truth.
package phantom

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"sinorecon/internal/models"
)

// Point is a point source in the reconstruction plane. X runs along
// columns and Y along rows, both in pixels.
type Point struct {
	X, Y float64

	// Intensity is the red, green and blue strength of the source
	Intensity [3]float64
}

// DetectorPosition returns the detector coordinate hit by a point at (x, y)
// for the projection taken at the given angle. The geometry matches the
// back-projector: rotating the smeared projection by the same angle maps
// this detector position back onto the point.
func DetectorPosition(samples int, x, y, degrees float64) float64 {
	c := float64(samples-1) / 2
	sin, cos := math.Sincos(degrees * math.Pi / 180)
	return cos*(x-c) - sin*(y-c) + c
}

// PointSource builds the sinogram channel of a single point source.
// Each projection holds the intensity split linearly between the two
// detector samples around the exact detector position.
func PointSource(angles, samples int, x, y, intensity float64) (*models.Channel, error) {
	return project(angles, samples, []Point{{X: x, Y: y, Intensity: [3]float64{intensity}}}, 0)
}

// Sinogram builds an RGB sinogram from a set of coloured point sources
func Sinogram(angles, samples int, points []Point) (*models.Sinogram, error) {
	channels := make([]*models.Channel, 3)
	for i := range channels {
		ch, err := project(angles, samples, points, i)
		if err != nil {
			return nil, err
		}
		channels[i] = ch
	}
	return models.NewSinogram(channels[0], channels[1], channels[2])
}

func project(angles, samples int, points []Point, channel int) (*models.Channel, error) {
	if angles < 1 || samples < 1 {
		return nil, fmt.Errorf("phantom needs at least one angle and sample, got %dx%d: %w",
			angles, samples, models.ErrShapeMismatch)
	}

	step := 180.0 / float64(angles)
	data := make([]float64, angles*samples)
	for i := 0; i < angles; i++ {
		row := data[i*samples : (i+1)*samples]
		for _, p := range points {
			s := DetectorPosition(samples, p.X, p.Y, step*float64(i))
			deposit(row, s, p.Intensity[channel])
		}
	}
	return models.NewChannel(angles, samples, data)
}

// deposit splits v between the samples either side of position s
func deposit(row []float64, s, v float64) {
	s0 := math.Floor(s)
	f := s - s0
	i := int(s0)
	if i >= 0 && i < len(row) {
		row[i] += (1 - f) * v
	}
	if i+1 >= 0 && i+1 < len(row) {
		row[i+1] += f * v
	}
}

// PointImage returns the n x n ground-truth plane of a unit point source
// at (x, y), placed on the nearest pixel
func PointImage(n int, x, y float64) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	r, c := int(math.Round(y)), int(math.Round(x))
	if r >= 0 && r < n && c >= 0 && c < n {
		m.Set(r, c, 1)
	}
	return m
}

// Render converts a sinogram into an 8-bit RGB image, scaling all three
// channels by their common maximum so relative intensities are kept
func Render(s *models.Sinogram) *image.NRGBA {
	angles, samples := s.Red.AngleCount, s.Red.SampleCount

	peak := 0.0
	for _, ch := range s.Channels() {
		peak = math.Max(peak, floats.Max(ch.Values.RawMatrix().Data))
	}
	scale := 0.0
	if peak > 0 {
		scale = 255 / peak
	}

	img := image.NewNRGBA(image.Rect(0, 0, samples, angles))
	for y := 0; y < angles; y++ {
		for x := 0; x < samples; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: to8(s.Red.Values.At(y, x) * scale),
				G: to8(s.Green.Values.At(y, x) * scale),
				B: to8(s.Blue.Values.At(y, x) * scale),
				A: 255,
			})
		}
	}
	return img
}

func to8(v float64) uint8 {
	return uint8(math.Max(0, math.Min(255, math.Round(v))))
}
