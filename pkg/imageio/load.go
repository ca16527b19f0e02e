// Package imageio reads sinogram images from disk and writes
// reconstructions back out in lossless raster formats.
package imageio

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // register the JPEG format with the image package
	_ "image/png"  // register the PNG format with the image package
	"os"

	_ "golang.org/x/image/bmp"  // register BMP
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP

	"sinorecon/internal/models"
)

// Load decodes an image file. The format is detected from its contents.
func Load(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %v: %w", path, err, models.ErrIO)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %v: %w", path, err, models.ErrIO)
	}
	return img, nil
}

// LoadSinogram loads an RGB image and splits it into three channels.
// Image rows are projection angles and columns detector samples. Pass 0
// for angles or samples to take them from the image height or width.
func LoadSinogram(path string, angles, samples int) (*models.Sinogram, image.Image, error) {
	img, err := Load(path)
	if err != nil {
		return nil, nil, err
	}

	sino, err := SplitChannels(img, angles, samples)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return sino, img, nil
}

// SplitChannels converts the red, green and blue 8-bit values of an image
// into three sinogram channels.
func SplitChannels(img image.Image, angles, samples int) (*models.Sinogram, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if angles == 0 {
		angles = height
	}
	if samples == 0 {
		samples = width
	}
	if angles != height || samples != width {
		return nil, fmt.Errorf("image is %dx%d (samples x angles), expected %dx%d: %w",
			width, height, samples, angles, models.ErrShapeMismatch)
	}

	red := make([]float64, width*height)
	green := make([]float64, width*height)
	blue := make([]float64, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			idx := y*width + x
			red[idx] = float64(c.R)
			green[idx] = float64(c.G)
			blue[idx] = float64(c.B)
		}
	}

	r, err := models.NewChannel(angles, samples, red)
	if err != nil {
		return nil, err
	}
	g, err := models.NewChannel(angles, samples, green)
	if err != nil {
		return nil, err
	}
	b, err := models.NewChannel(angles, samples, blue)
	if err != nil {
		return nil, err
	}
	return models.NewSinogram(r, g, b)
}
