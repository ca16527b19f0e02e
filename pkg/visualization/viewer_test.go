package visualization

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"gonum.org/v1/gonum/mat"

	"sinorecon/internal/models"
	"sinorecon/pkg/filter"
	"sinorecon/pkg/imageio"
)

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Reconstruction with ramp filtering": "reconstruction_with_ramp_filtering",
		"Red laminogram (Hann)":              "red_laminogram_hann",
		"  --MSE: 12.5-- ":                   "mse_12_5",
		"":                                   "untitled",
		"???":                                "untitled",
	}
	for title, want := range cases {
		if got := Slug(title); got != want {
			t.Errorf("Expected slug %q for %q, got %q", want, title, got)
		}
	}
}

// TestPlaneImage verifies the min/max stretch onto 16-bit gray
func TestPlaneImage(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{
		-2, 0, 2,
		1, -1, 0,
	})
	img := PlaneImage(m)

	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Fatalf("Expected 3x2 image, got %v", img.Bounds())
	}
	if v := img.Gray16At(0, 0).Y; v != 0 {
		t.Errorf("Expected minimum to map to 0, got %d", v)
	}
	if v := img.Gray16At(2, 0).Y; v != 65535 {
		t.Errorf("Expected maximum to map to 65535, got %d", v)
	}
	if v := img.Gray16At(1, 0).Y; v != 32767 {
		t.Errorf("Expected midpoint to map to 32767, got %d", v)
	}

	flat := PlaneImage(mat.NewDense(2, 2, []float64{4, 4, 4, 4}))
	for _, v := range flat.Pix {
		if v != 0 {
			t.Fatalf("Expected a flat plane to come out black")
		}
	}
}

// TestDirViewer writes an image and a plane and reads them back
func TestDirViewer(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	v, err := NewDirViewer(dir)
	if err != nil {
		t.Fatalf("Failed to create viewer: %v", err)
	}

	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	img.SetNRGBA(1, 2, color.NRGBA{R: 200, G: 10, B: 30, A: 255})
	if err := v.ShowImage("Original sinogram", img); err != nil {
		t.Fatalf("ShowImage failed: %v", err)
	}

	loaded, err := imageio.Load(filepath.Join(dir, "original_sinogram.png"))
	if err != nil {
		t.Fatalf("Failed to load saved image: %v", err)
	}
	got := color.NRGBAModel.Convert(loaded.At(1, 2)).(color.NRGBA)
	if got != img.NRGBAAt(1, 2) {
		t.Errorf("Expected pixel %v, got %v", img.NRGBAAt(1, 2), got)
	}

	if err := v.ShowPlane("Red laminogram", mat.NewDense(5, 5, nil)); err != nil {
		t.Fatalf("ShowPlane failed: %v", err)
	}
	plane, err := imageio.Load(v.Path("Red laminogram"))
	if err != nil {
		t.Fatalf("Failed to load saved plane: %v", err)
	}
	if plane.Bounds().Dx() != 5 {
		t.Errorf("Expected 5 pixel wide plane, got %d", plane.Bounds().Dx())
	}
}

func TestNopViewer(t *testing.T) {
	var v Viewer = Nop{}
	if err := v.ShowImage("x", image.NewGray(image.Rect(0, 0, 1, 1))); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if err := v.ShowPlane("x", mat.NewDense(1, 1, nil)); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

// TestPlotViewer renders a heat map of a small plane
func TestPlotViewer(t *testing.T) {
	v, err := NewPlotViewer(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create plot viewer: %v", err)
	}

	m := mat.NewDense(8, 8, nil)
	for i := 0; i < 8; i++ {
		m.Set(i, i, float64(i))
	}
	if err := v.ShowPlane("Diagonal", m); err != nil {
		t.Fatalf("ShowPlane failed: %v", err)
	}
	if err := v.ShowPlane("Flat", mat.NewDense(3, 3, nil)); err != nil {
		t.Fatalf("ShowPlane failed on flat plane: %v", err)
	}

	for _, title := range []string{"Diagonal", "Flat"} {
		info, err := os.Stat(v.Path(title))
		if err != nil {
			t.Fatalf("Expected plot file for %s: %v", title, err)
		}
		if info.Size() == 0 {
			t.Errorf("Expected non-empty plot file for %s", title)
		}
	}

	g := planeGrid{m: m}
	if c, r := g.Dims(); c != 8 || r != 8 {
		t.Errorf("Expected 8x8 grid, got %dx%d", c, r)
	}
	if z := g.Z(7, 0); z != 7 {
		t.Errorf("Expected bottom row of the grid to be the last matrix row, got %f", z)
	}
}

// TestSaveKernelPlot plots the kernels of every filter
func TestSaveKernelPlot(t *testing.T) {
	kernels := make(map[string][]float64)
	for _, kind := range filter.Kinds {
		k, err := filter.KernelFor(kind, 64)
		if err != nil {
			t.Fatalf("KernelFor(%v) failed: %v", kind, err)
		}
		if k != nil {
			kernels[kind.String()] = k
		}
	}

	path := filepath.Join(t.TempDir(), "plots", "kernels.png")
	if err := SaveKernelPlot(path, kernels); err != nil {
		t.Fatalf("SaveKernelPlot failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected kernel plot at %s: %v", path, err)
	}

	if err := SaveKernelPlot(path, nil); !errors.Is(err, models.ErrDegenerateInput) {
		t.Errorf("Expected ErrDegenerateInput, got %v", err)
	}
}
