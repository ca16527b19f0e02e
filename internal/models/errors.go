package models

import "errors"

// Error kinds shared by every stage of the reconstruction pipeline.
// Stages wrap them with context, callers test with errors.Is.
var (
	// ErrShapeMismatch reports array dimensions that disagree with each
	// other or with the expected angle/sample counts
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrDegenerateInput reports input that makes the arithmetic undefined,
	// such as a flat plane in a rescale or a window with a zero denominator
	ErrDegenerateInput = errors.New("degenerate input")

	// ErrIO reports a file that could not be read, decoded, encoded or written
	ErrIO = errors.New("i/o error")
)
