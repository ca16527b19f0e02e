// Package rescale turns laminograms into displayable 8-bit images: the
// square plane is cropped to its inscribed square, stretched to the full
// 0-255 range and the colour planes are stacked into one RGB image.
package rescale

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"sinorecon/internal/models"
)

// InscribedSide returns the side of the square inscribed in the
// reconstruction circle of a plane of side n
func InscribedSide(n int) int {
	return int(float64(n) / math.Sqrt2)
}

// Crop extracts the centred inscribed square from a square plane.
// Pixels outside the circle swept by the rotated projections only receive
// part of the angles, so they are discarded.
func Crop(m mat.Matrix) (*mat.Dense, error) {
	rows, cols := m.Dims()
	if rows != cols {
		return nil, fmt.Errorf("crop requires a square plane, got %dx%d: %w", rows, cols, models.ErrShapeMismatch)
	}

	side := InscribedSide(rows)
	if side < 1 {
		return nil, fmt.Errorf("plane of side %d is too small to crop: %w", rows, models.ErrShapeMismatch)
	}
	start := int(float64(rows)/2 - float64(side)/2)

	out := mat.NewDense(side, side, nil)
	out.Copy(mat.DenseCopyOf(m).Slice(start, start+side, start, start+side))
	return out, nil
}

// To8Bit linearly maps the plane so its minimum becomes 0 and its maximum
// 255, flooring each value. A flat plane cannot be stretched and returns
// ErrDegenerateInput.
func To8Bit(m mat.Matrix) (*image.Gray, error) {
	rows, cols := m.Dims()
	data := mat.DenseCopyOf(m).RawMatrix().Data

	lo, hi := floats.Min(data), floats.Max(data)
	if hi == lo {
		return nil, fmt.Errorf("cannot rescale a flat plane (all values %g): %w", lo, models.ErrDegenerateInput)
	}
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(hi-lo, 0) {
		return nil, fmt.Errorf("cannot rescale plane with range [%g, %g]: %w", lo, hi, models.ErrDegenerateInput)
	}

	img := image.NewGray(image.Rect(0, 0, cols, rows))
	span := hi - lo
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := math.Floor(255 * ((data[y*cols+x] - lo) / span))
			img.SetGray(x, y, color.Gray{Y: uint8(math.Max(0, math.Min(255, v)))})
		}
	}
	return img, nil
}

// CropAndRescale crops a laminogram and converts it to 8 bits
func CropAndRescale(m mat.Matrix) (*image.Gray, error) {
	cropped, err := Crop(m)
	if err != nil {
		return nil, err
	}
	return To8Bit(cropped)
}

// Combine stacks three 8-bit planes into one opaque RGB image, in
// red, green, blue order
func Combine(r, g, b *image.Gray) (*image.NRGBA, error) {
	bounds := r.Bounds()
	if g.Bounds() != bounds || b.Bounds() != bounds {
		return nil, fmt.Errorf("plane bounds differ: %v, %v, %v: %w",
			bounds, g.Bounds(), b.Bounds(), models.ErrShapeMismatch)
	}

	img := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: r.GrayAt(x, y).Y,
				G: g.GrayAt(x, y).Y,
				B: b.GrayAt(x, y).Y,
				A: 255,
			})
		}
	}
	return img, nil
}

// Split separates an image into its red, green and blue planes
func Split(img *image.NRGBA) (r, g, b *image.Gray) {
	bounds := img.Bounds()
	r, g, b = image.NewGray(bounds), image.NewGray(bounds), image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			r.SetGray(x, y, color.Gray{Y: c.R})
			g.SetGray(x, y, color.Gray{Y: c.G})
			b.SetGray(x, y, color.Gray{Y: c.B})
		}
	}
	return r, g, b
}
