package imageio

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"sinorecon/internal/models"
)

// encoders maps file extensions to lossless encoders
var encoders = map[string]func(io.Writer, image.Image) error{
	".png":  png.Encode,
	".bmp":  bmp.Encode,
	".tif":  encodeTIFF,
	".tiff": encodeTIFF,
}

func encodeTIFF(w io.Writer, img image.Image) error {
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

// Save writes img to path, choosing the encoder from the file extension.
// Only lossless formats are supported so pixel values survive exactly.
// Missing parent directories are created.
func Save(path string, img image.Image) error {
	ext := strings.ToLower(filepath.Ext(path))
	encode, ok := encoders[ext]
	if !ok {
		return fmt.Errorf("unsupported output format %q (use .png, .bmp or .tiff): %w", ext, models.ErrIO)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v: %w", dir, err, models.ErrIO)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %v: %w", path, err, models.ErrIO)
	}

	if err := encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %v: %w", path, err, models.ErrIO)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %v: %w", path, err, models.ErrIO)
	}
	return nil
}
