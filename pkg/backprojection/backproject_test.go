package backprojection

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"sinorecon/internal/models"
)

const epsilon = 1e-9

// TestRotateZeroIsIdentity verifies that no rotation reproduces the input exactly
func TestRotateZeroIsIdentity(t *testing.T) {
	for _, size := range []int{1, 4, 7} {
		m := mat.NewDense(size, size, nil)
		for i := 0; i < size; i++ {
			for j := 0; j < size; j++ {
				m.Set(i, j, float64(i*size+j)+0.5)
			}
		}
		got := Rotate(m, 0)
		if !mat.Equal(got, m) {
			t.Errorf("Expected identity rotation for size %d, got\n%v", size, mat.Formatted(got))
		}
	}
}

// TestRotateQuarterTurn checks the rotation direction and centre on a 3x3 grid
func TestRotateQuarterTurn(t *testing.T) {
	m := mat.NewDense(3, 3, []float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	})

	got := Rotate(m, 90)

	// dst(r, c) samples src(y = c, x = 2 - r)
	want := mat.NewDense(3, 3, []float64{
		3, 6, 9,
		2, 5, 8,
		1, 4, 7,
	})
	if !mat.EqualApprox(got, want, epsilon) {
		t.Errorf("Unexpected 90 degree rotation:\n%v", mat.Formatted(got))
	}

	half := Rotate(Rotate(m, 90), 90)
	full := Rotate(m, 180)
	if !mat.EqualApprox(half, full, epsilon) {
		t.Errorf("Expected two quarter turns to equal a half turn")
	}
}

// TestRotateFillsOutsideWithZero checks corners leaving the source at 45 degrees
func TestRotateFillsOutsideWithZero(t *testing.T) {
	size := 21
	m := mat.NewDense(size, size, nil)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			m.Set(i, j, 1)
		}
	}

	got := Rotate(m, 45)
	if v := got.At(0, 0); v != 0 {
		t.Errorf("Expected corner outside the source to be zero, got %f", v)
	}
	if v := got.At(size/2, size/2); math.Abs(v-1) > epsilon {
		t.Errorf("Expected centre to stay 1, got %f", v)
	}
}

// TestBackProjectSingleConstantAngle yields a constant plane for one flat projection
func TestBackProjectSingleConstantAngle(t *testing.T) {
	samples := 16
	data := make([]float64, samples)
	for i := range data {
		data[i] = 3.25
	}
	ch, err := models.NewChannel(1, samples, data)
	if err != nil {
		t.Fatalf("Failed to create channel: %v", err)
	}

	plane, err := BackProject(ch)
	if err != nil {
		t.Fatalf("BackProject failed: %v", err)
	}

	rows, cols := plane.Dims()
	if rows != samples || cols != samples {
		t.Fatalf("Expected %dx%d plane, got %dx%d", samples, samples, rows, cols)
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if math.Abs(plane.At(i, j)-3.25) > epsilon {
				t.Fatalf("Expected 3.25 everywhere, got %f at (%d,%d)", plane.At(i, j), i, j)
			}
		}
	}
}

// TestBackProjectSingleAngleReplicatesRow checks the vertical smear at angle zero
func TestBackProjectSingleAngleReplicatesRow(t *testing.T) {
	row := []float64{0, 1, 2, 3, 4}
	ch, _ := models.NewChannel(1, len(row), row)

	plane, err := BackProject(ch)
	if err != nil {
		t.Fatalf("BackProject failed: %v", err)
	}
	for i := 0; i < len(row); i++ {
		got := mat.Row(nil, i, plane)
		for j := range row {
			if got[j] != row[j] {
				t.Errorf("Expected row %d to equal %v, got %v", i, row, got)
				break
			}
		}
	}
}

// TestBackProjectOrderIndependent compares against summing rotations in reverse
func TestBackProjectOrderIndependent(t *testing.T) {
	angles, samples := 6, 9
	data := make([]float64, angles*samples)
	for i := range data {
		data[i] = math.Cos(float64(i) * 0.7)
	}
	ch, _ := models.NewChannel(angles, samples, data)

	plane, err := BackProject(ch)
	if err != nil {
		t.Fatalf("BackProject failed: %v", err)
	}

	reverse := mat.NewDense(samples, samples, nil)
	for i := angles - 1; i >= 0; i-- {
		tile := mat.NewDense(samples, samples, nil)
		for r := 0; r < samples; r++ {
			tile.SetRow(r, ch.Row(i))
		}
		reverse.Add(reverse, Rotate(tile, ch.AngleStep()*float64(i)))
	}

	if !mat.EqualApprox(plane, reverse, 1e-9) {
		t.Errorf("Expected accumulation order not to change the laminogram")
	}
}

func TestBackProjectProgress(t *testing.T) {
	ch, _ := models.NewChannel(4, 3, make([]float64, 12))
	calls := 0
	_, err := BackProjectWithProgress(ch, func(completed, total int) {
		calls++
		if total != 4 || completed != calls {
			t.Errorf("Unexpected progress %d/%d on call %d", completed, total, calls)
		}
	})
	if err != nil {
		t.Fatalf("BackProject failed: %v", err)
	}
	if calls != 4 {
		t.Errorf("Expected 4 progress calls, got %d", calls)
	}
}

func TestBackProjectRejectsMalformedChannel(t *testing.T) {
	ch := &models.Channel{AngleCount: 3, SampleCount: 3, Values: mat.NewDense(1, 3, nil)}
	if _, err := BackProject(ch); !errors.Is(err, models.ErrShapeMismatch) {
		t.Errorf("Expected ErrShapeMismatch, got %v", err)
	}
}
