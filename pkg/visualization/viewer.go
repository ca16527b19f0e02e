// Package visualization shows the planes produced while reconstructing a
// sinogram: the input image, the raw laminograms, the filter kernels and the
// final reconstructions.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"sinorecon/internal/models"
	"sinorecon/pkg/imageio"
)

// Viewer displays titled images and real-valued planes
type Viewer interface {
	// ShowImage displays an 8-bit image such as a sinogram or a reconstruction
	ShowImage(title string, img image.Image) error

	// ShowPlane displays a real-valued plane such as a laminogram
	ShowPlane(title string, m mat.Matrix) error
}

// Nop is a Viewer that discards everything
type Nop struct{}

// ShowImage does nothing
func (Nop) ShowImage(string, image.Image) error { return nil }

// ShowPlane does nothing
func (Nop) ShowPlane(string, mat.Matrix) error { return nil }

// DirViewer writes every displayed image into a directory as
// <slug of title>.png. Planes are stretched between their minimum and
// maximum and written as 16-bit grayscale.
type DirViewer struct {
	dir string
}

// NewDirViewer creates a viewer writing into dir, creating it if needed
func NewDirViewer(dir string) (*DirViewer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %v: %w", err, models.ErrIO)
	}
	return &DirViewer{dir: dir}, nil
}

// Path returns the file a title is written to
func (v *DirViewer) Path(title string) string {
	return filepath.Join(v.dir, Slug(title)+".png")
}

// ShowImage saves img
func (v *DirViewer) ShowImage(title string, img image.Image) error {
	return imageio.Save(v.Path(title), img)
}

// ShowPlane saves m as a 16-bit grayscale image
func (v *DirViewer) ShowPlane(title string, m mat.Matrix) error {
	return imageio.Save(v.Path(title), PlaneImage(m))
}

// PlaneImage maps a plane onto 16-bit grayscale with its minimum at black
// and its maximum at white. A flat plane comes out black.
func PlaneImage(m mat.Matrix) *image.Gray16 {
	rows, cols := m.Dims()
	img := image.NewGray16(image.Rect(0, 0, cols, rows))

	data := mat.DenseCopyOf(m).RawMatrix().Data
	lo, hi := floats.Min(data), floats.Max(data)
	span := hi - lo
	if span <= 0 || math.IsNaN(span) || math.IsInf(span, 0) {
		return img
	}

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v := (m.At(y, x) - lo) / span
			value := uint16(math.Max(0, math.Min(65535, v*65535)))
			img.SetGray16(x, y, color.Gray16{Y: value})
		}
	}
	return img
}

// Slug turns a title into a file name: lower case, with every run of
// characters other than letters and digits replaced by one underscore
func Slug(title string) string {
	var b strings.Builder
	underscore := false
	for _, r := range strings.ToLower(title) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			underscore = false
			continue
		}
		if !underscore && b.Len() > 0 {
			b.WriteByte('_')
			underscore = true
		}
	}
	s := strings.TrimSuffix(b.String(), "_")
	if s == "" {
		return "untitled"
	}
	return s
}
