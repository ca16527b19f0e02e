package phantom

import (
	"errors"
	"math"
	"testing"

	"sinorecon/internal/models"
)

func TestDetectorPosition(t *testing.T) {
	samples := 11 // centre at 5
	cases := []struct {
		x, y    float64
		degrees float64
		want    float64
	}{
		{7, 5, 0, 7},
		{7, 5, 90, 5},
		{5, 2, 90, 8},
		{7, 5, 180, 3},
		{5, 5, 37, 5},
	}

	for _, tc := range cases {
		got := DetectorPosition(samples, tc.x, tc.y, tc.degrees)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("Expected detector position %f for (%f,%f) at %f degrees, got %f",
				tc.want, tc.x, tc.y, tc.degrees, got)
		}
	}
}

// TestPointSourceConservesIntensity checks every projection carries the full intensity
func TestPointSourceConservesIntensity(t *testing.T) {
	ch, err := PointSource(36, 32, 12.3, 18.6, 2.5)
	if err != nil {
		t.Fatalf("PointSource failed: %v", err)
	}
	if ch.AngleCount != 36 || ch.SampleCount != 32 {
		t.Fatalf("Expected 36x32 channel, got %dx%d", ch.AngleCount, ch.SampleCount)
	}
	for i := 0; i < ch.AngleCount; i++ {
		sum := 0.0
		for _, v := range ch.Row(i) {
			sum += v
		}
		if math.Abs(sum-2.5) > 1e-9 {
			t.Errorf("Expected projection %d to sum to 2.5, got %f", i, sum)
		}
	}
}

// TestPointSourceAtCentre puts the same value on the same sample at every angle
func TestPointSourceAtCentre(t *testing.T) {
	ch, err := PointSource(12, 9, 4, 4, 1)
	if err != nil {
		t.Fatalf("PointSource failed: %v", err)
	}
	for i := 0; i < ch.AngleCount; i++ {
		if v := ch.Values.At(i, 4); math.Abs(v-1) > 1e-9 {
			t.Errorf("Expected centre sample 1 at angle %d, got %f", i, v)
		}
	}
}

func TestPointSourceRejectsEmptyShape(t *testing.T) {
	if _, err := PointSource(0, 10, 1, 1, 1); !errors.Is(err, models.ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch, got %v", err)
	}
}

func TestPointImage(t *testing.T) {
	m := PointImage(5, 1.4, 2.6)
	if m.At(3, 1) != 1 {
		t.Errorf("Expected unit value at row 3, column 1")
	}
	sum := 0.0
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			sum += m.At(i, j)
		}
	}
	if sum != 1 {
		t.Errorf("Expected a single unit pixel, got total %f", sum)
	}
}

// TestSinogramAndRender checks colour separation and the shared scaling
func TestSinogramAndRender(t *testing.T) {
	points := []Point{
		{X: 10, Y: 12, Intensity: [3]float64{1, 0.5, 0}},
		{X: 20, Y: 15, Intensity: [3]float64{0, 0.5, 1}},
	}
	sino, err := Sinogram(18, 32, points)
	if err != nil {
		t.Fatalf("Sinogram failed: %v", err)
	}

	img := Render(sino)
	if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 18 {
		t.Fatalf("Expected 32x18 image, got %v", img.Bounds())
	}

	var maxR, maxG uint8
	for y := 0; y < 18; y++ {
		for x := 0; x < 32; x++ {
			c := img.NRGBAAt(x, y)
			if c.R > maxR {
				maxR = c.R
			}
			if c.G > maxG {
				maxG = c.G
			}
			if c.A != 255 {
				t.Fatalf("Expected opaque pixel, got alpha %d", c.A)
			}
		}
	}
	if maxR != 255 {
		t.Errorf("Expected red peak to reach 255, got %d", maxR)
	}
	if maxG >= maxR {
		t.Errorf("Expected green to stay below red, got %d vs %d", maxG, maxR)
	}
}
