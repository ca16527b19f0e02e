// Package backprojection smears filtered projections back across the
// reconstruction plane.
package backprojection

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"sinorecon/internal/models"
)

// ProgressCallback is called after each angle has been accumulated
type ProgressCallback func(completed, total int)

// BackProject reconstructs the laminogram of a channel.
//
// For every angle the projection row is replicated down a square of side
// SampleCount, rotated by angle index times 180/AngleCount degrees and
// summed into the accumulator. The result is unnormalized.
//
// Parameters:
//   - ch: Channel with one projection per row, spatial domain
//
// Returns:
//   - A SampleCount x SampleCount laminogram
func BackProject(ch *models.Channel) (*mat.Dense, error) {
	return BackProjectWithProgress(ch, nil)
}

// BackProjectWithProgress is BackProject with a progress callback, which may be nil
func BackProjectWithProgress(ch *models.Channel, progress ProgressCallback) (*mat.Dense, error) {
	if err := ch.Validate(); err != nil {
		return nil, fmt.Errorf("back-projection: %w", err)
	}

	n := ch.SampleCount
	step := ch.AngleStep()

	laminogram := mat.NewDense(n, n, nil)
	tile := mat.NewDense(n, n, nil)
	row := make([]float64, n)

	for i := 0; i < ch.AngleCount; i++ {
		mat.Row(row, i, ch.Values)
		for r := 0; r < n; r++ {
			tile.SetRow(r, row)
		}

		rotateAdd(laminogram.RawMatrix(), tile.RawMatrix(), step*float64(i))

		if progress != nil {
			progress(i+1, ch.AngleCount)
		}
	}

	return laminogram, nil
}
