package reconstruction

import (
	"fmt"
	"image"
	"io"
	"log"

	"gonum.org/v1/gonum/mat"

	"sinorecon/internal/models"
	"sinorecon/pkg/backprojection"
	"sinorecon/pkg/filter"
	"sinorecon/pkg/imageio"
	"sinorecon/pkg/metrics"
	"sinorecon/pkg/rescale"
)

// Params holds the reconstruction parameters.
type Params struct {
	// Angles is the expected number of projection angles (image rows).
	// Zero accepts whatever the input holds.
	Angles int

	// Samples is the expected number of detector samples (image columns).
	// Zero accepts whatever the input holds.
	Samples int

	// Logger receives stage narration. Nil discards it.
	Logger *log.Logger

	// Progress, when set, is called while each channel is back-projected
	Progress func(channel string, completed, total int)
}

// ChannelResult holds the intermediate and final planes of one colour channel
type ChannelResult struct {
	// Name is "red", "green" or "blue"
	Name string

	// Laminogram is the unnormalized back-projection, edge artifacts included
	Laminogram *mat.Dense

	// Image is the cropped laminogram rescaled to 8 bits
	Image *image.Gray
}

// Result is the reconstruction of all three channels with one filter
type Result struct {
	// Filter is the filter the channels were reconstructed with
	Filter filter.Kind

	// Channels holds the per-channel results in red, green, blue order
	Channels []ChannelResult

	// Image is the combined RGB reconstruction
	Image *image.NRGBA
}

// Comparison holds the difference between two reconstructions
type Comparison struct {
	// A and B are the filters being compared
	A, B filter.Kind

	// Metrics holds MSE and the measures derived from it
	Metrics metrics.Report

	// Difference is the per-pixel absolute difference image
	Difference *image.NRGBA
}

// Reconstructor runs filtered back-projection on an RGB sinogram.
//
// The reconstruction of each channel consists of these steps:
// 1. Transforming every projection to the frequency domain
// 2. Multiplying by the selected filter kernel
// 3. Transforming back to the spatial domain
// 4. Back-projecting the projections across a square plane
// 5. Cropping to the inscribed square and rescaling to 8 bits
//
// The three channels are then stacked into one RGB image. The sinogram is
// never modified, so several filters can be run on the same instance.
type Reconstructor struct {
	// params stores the reconstruction configuration
	params *Params

	// sinogram holds the original channels
	sinogram *models.Sinogram

	logger *log.Logger
}

// NewReconstructor creates a reconstructor for the given sinogram.
// The sinogram shape is checked against params.Angles and params.Samples.
func NewReconstructor(sinogram *models.Sinogram, params *Params) (*Reconstructor, error) {
	if params == nil {
		params = &Params{}
	}
	if sinogram == nil {
		return nil, fmt.Errorf("nil sinogram: %w", models.ErrShapeMismatch)
	}
	if _, err := models.NewSinogram(sinogram.Red, sinogram.Green, sinogram.Blue); err != nil {
		return nil, err
	}

	angles, samples := sinogram.Red.AngleCount, sinogram.Red.SampleCount
	if (params.Angles != 0 && params.Angles != angles) || (params.Samples != 0 && params.Samples != samples) {
		return nil, fmt.Errorf("sinogram is %dx%d, expected %dx%d: %w",
			angles, samples, params.Angles, params.Samples, models.ErrShapeMismatch)
	}

	logger := params.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Reconstructor{
		params:   params,
		sinogram: sinogram,
		logger:   logger,
	}, nil
}

// NewReconstructorFromFile loads an RGB sinogram image and creates a
// reconstructor for it. The decoded image is returned as well so callers
// can keep a copy of the input.
func NewReconstructorFromFile(path string, params *Params) (*Reconstructor, image.Image, error) {
	if params == nil {
		params = &Params{}
	}
	sinogram, img, err := imageio.LoadSinogram(path, params.Angles, params.Samples)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load sinogram: %w", err)
	}

	r, err := NewReconstructor(sinogram, params)
	if err != nil {
		return nil, nil, err
	}
	r.logger.Printf("Loaded sinogram %s: %d angles x %d samples", path, sinogram.Red.AngleCount, sinogram.Red.SampleCount)
	return r, img, nil
}

// Sinogram returns the channels being reconstructed
func (r *Reconstructor) Sinogram() *models.Sinogram {
	return r.sinogram
}

// Reconstruct runs the complete pipeline for one filter on all three channels
func (r *Reconstructor) Reconstruct(kind filter.Kind) (*Result, error) {
	r.logger.Printf("Reconstructing %s", kind.Title())

	result := &Result{Filter: kind}
	for i, ch := range r.sinogram.Channels() {
		name := models.ChannelNames[i]

		laminogram, img, err := r.ReconstructChannel(name, ch, kind)
		if err != nil {
			return nil, fmt.Errorf("%s channel, %v filter: %w", name, kind, err)
		}

		result.Channels = append(result.Channels, ChannelResult{
			Name:       name,
			Laminogram: laminogram,
			Image:      img,
		})
	}

	img, err := rescale.Combine(result.Channels[0].Image, result.Channels[1].Image, result.Channels[2].Image)
	if err != nil {
		return nil, fmt.Errorf("failed to combine channels: %w", err)
	}
	result.Image = img

	r.logger.Printf("Reconstruction %s complete", kind.Title())
	return result, nil
}

// ReconstructChannel filters and back-projects a single channel, returning
// both the raw laminogram and the cropped 8-bit image
func (r *Reconstructor) ReconstructChannel(name string, ch *models.Channel, kind filter.Kind) (*mat.Dense, *image.Gray, error) {
	r.logger.Printf("Filtering %s channel (%v)", name, kind)
	spatial, err := filter.Apply(ch, kind)
	if err != nil {
		return nil, nil, err
	}

	r.logger.Printf("Back-projecting %s channel over %d angles", name, spatial.AngleCount)
	var progress backprojection.ProgressCallback
	if r.params.Progress != nil {
		progress = func(completed, total int) {
			r.params.Progress(name, completed, total)
		}
	}
	laminogram, err := backprojection.BackProjectWithProgress(spatial, progress)
	if err != nil {
		return nil, nil, err
	}

	img, err := rescale.CropAndRescale(laminogram)
	if err != nil {
		return nil, nil, err
	}
	return laminogram, img, nil
}

// ReconstructAll runs each filter in turn and stops at the first failure
func (r *Reconstructor) ReconstructAll(kinds []filter.Kind) ([]*Result, error) {
	results := make([]*Result, 0, len(kinds))
	for _, kind := range kinds {
		result, err := r.Reconstruct(kind)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Compare computes the error metrics and difference image between two reconstructions
func Compare(a, b *Result) (*Comparison, error) {
	if a == nil || b == nil || a.Image == nil || b.Image == nil {
		return nil, fmt.Errorf("missing reconstruction to compare: %w", models.ErrShapeMismatch)
	}

	report, err := metrics.Compare(a.Image, b.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to compare %v and %v: %w", a.Filter, b.Filter, err)
	}
	diff, err := metrics.AbsDiff(a.Image, b.Image)
	if err != nil {
		return nil, fmt.Errorf("failed to diff %v and %v: %w", a.Filter, b.Filter, err)
	}

	return &Comparison{A: a.Filter, B: b.Filter, Metrics: report, Difference: diff}, nil
}

// Find returns the result reconstructed with the given filter, or nil
func Find(results []*Result, kind filter.Kind) *Result {
	for _, res := range results {
		if res.Filter == kind {
			return res
		}
	}
	return nil
}
