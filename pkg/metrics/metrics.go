// Package metrics compares reconstructions: mean squared error and the
// quality measures derived from it, plus a per-pixel difference image.
package metrics

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"sinorecon/internal/models"
)

// Report holds the comparison metrics between two reconstructions
type Report struct {
	// MSE is the mean squared difference over all colour samples.
	// Zero means identical images.
	MSE float64

	// RMSE is the square root of MSE, in 8-bit intensity units
	RMSE float64

	// PSNR is the peak signal-to-noise ratio in dB for a peak of 255.
	// Identical images give +Inf.
	PSNR float64

	// SSIM is the global structural similarity index, 1 for identical images
	SSIM float64
}

// MSE computes the mean squared error between two images over every red,
// green and blue sample. Alpha is ignored. Both images must have the same
// bounds.
func MSE(a, b *image.NRGBA) (float64, error) {
	x, y, err := rgbSamples(a, b)
	if err != nil {
		return 0, err
	}
	return meanSquaredError(x, y), nil
}

// PlaneMSE computes the mean squared error between two float planes of equal shape
func PlaneMSE(a, b mat.Matrix) (float64, error) {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br || ac != bc {
		return 0, fmt.Errorf("plane shapes differ: %dx%d vs %dx%d: %w", ar, ac, br, bc, models.ErrShapeMismatch)
	}
	x := mat.DenseCopyOf(a).RawMatrix().Data
	y := mat.DenseCopyOf(b).RawMatrix().Data
	return meanSquaredError(x, y), nil
}

// Compare computes every metric in Report for two images
func Compare(a, b *image.NRGBA) (Report, error) {
	x, y, err := rgbSamples(a, b)
	if err != nil {
		return Report{}, err
	}

	mse := meanSquaredError(x, y)
	return Report{
		MSE:  mse,
		RMSE: math.Sqrt(mse),
		PSNR: psnr(mse),
		SSIM: ssim(x, y, 255),
	}, nil
}

// AbsDiff returns an opaque image holding |a-b| per colour channel
func AbsDiff(a, b *image.NRGBA) (*image.NRGBA, error) {
	if a.Bounds() != b.Bounds() {
		return nil, fmt.Errorf("image bounds differ: %v vs %v: %w", a.Bounds(), b.Bounds(), models.ErrShapeMismatch)
	}

	bounds := a.Bounds()
	out := image.NewNRGBA(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			ca, cb := a.NRGBAAt(x, y), b.NRGBAAt(x, y)
			out.SetNRGBA(x, y, color.NRGBA{
				R: absDiff(ca.R, cb.R),
				G: absDiff(ca.G, cb.G),
				B: absDiff(ca.B, cb.B),
				A: 255,
			})
		}
	}
	return out, nil
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

// rgbSamples flattens the colour samples of both images in matching order
func rgbSamples(a, b *image.NRGBA) ([]float64, []float64, error) {
	if a == nil || b == nil {
		return nil, nil, fmt.Errorf("nil image: %w", models.ErrShapeMismatch)
	}
	if a.Bounds().Size() != b.Bounds().Size() {
		return nil, nil, fmt.Errorf("image sizes differ: %v vs %v: %w",
			a.Bounds().Size(), b.Bounds().Size(), models.ErrShapeMismatch)
	}
	return samples(a), samples(b), nil
}

func samples(img *image.NRGBA) []float64 {
	bounds := img.Bounds()
	out := make([]float64, 0, 3*bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			out = append(out, float64(c.R), float64(c.G), float64(c.B))
		}
	}
	return out
}

func meanSquaredError(x, y []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	diff := make([]float64, len(x))
	floats.SubTo(diff, x, y)
	return floats.Dot(diff, diff) / float64(len(diff))
}

func psnr(mse float64) float64 {
	if mse == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(255*255/mse)
}

// ssim computes the global Structural Similarity Index over the whole image
func ssim(x, y []float64, dynamicRange float64) float64 {
	const k1 = 0.01
	const k2 = 0.03

	c1 := (k1 * dynamicRange) * (k1 * dynamicRange)
	c2 := (k2 * dynamicRange) * (k2 * dynamicRange)

	if len(x) < 2 {
		if floats.Equal(x, y) {
			return 1
		}
		return 0
	}

	// Calculate means, variances and covariance using Gonum
	muX := stat.Mean(x, nil)
	muY := stat.Mean(y, nil)
	sigmaX := stat.Variance(x, nil)
	sigmaY := stat.Variance(y, nil)
	sigmaXY := stat.Covariance(x, y, nil)

	num := (2*muX*muY + c1) * (2*sigmaXY + c2)
	den := (muX*muX + muY*muY + c1) * (sigmaX + sigmaY + c2)
	return num / den
}
