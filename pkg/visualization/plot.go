package visualization

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"sinorecon/internal/models"
)

// PlotViewer renders planes as heat maps with axes and a title, and saves
// images the same way DirViewer does
type PlotViewer struct {
	*DirViewer

	// Width and Height are the size of each saved plot
	Width, Height vg.Length
}

// NewPlotViewer creates a plot viewer writing into dir
func NewPlotViewer(dir string) (*PlotViewer, error) {
	d, err := NewDirViewer(dir)
	if err != nil {
		return nil, err
	}
	return &PlotViewer{DirViewer: d, Width: 6 * vg.Inch, Height: 6 * vg.Inch}, nil
}

// ShowImage saves img unchanged
func (v *PlotViewer) ShowImage(title string, img image.Image) error {
	return v.DirViewer.ShowImage(title, img)
}

// ShowPlane saves m as a heat map with row 0 at the top
func (v *PlotViewer) ShowPlane(title string, m mat.Matrix) error {
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return fmt.Errorf("cannot plot empty plane %q: %w", title, models.ErrShapeMismatch)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Column"
	p.Y.Label.Text = "Row (from bottom)"

	h := plotter.NewHeatMap(planeGrid{m: m}, palette.Heat(256, 1))
	if h.Min == h.Max {
		h.Max = h.Min + 1
	}
	p.Add(h)

	if err := p.Save(v.Width, v.Height, v.Path(title)); err != nil {
		return fmt.Errorf("failed to save plot %q: %v: %w", title, err, models.ErrIO)
	}
	return nil
}

// planeGrid adapts a matrix to plotter.GridXYZ, flipping rows so the plot
// reads like the image
type planeGrid struct {
	m mat.Matrix
}

func (g planeGrid) Dims() (c, r int) {
	rows, cols := g.m.Dims()
	return cols, rows
}

func (g planeGrid) Z(c, r int) float64 {
	rows, _ := g.m.Dims()
	return g.m.At(rows-1-r, c)
}

func (g planeGrid) X(c int) float64 { return float64(c) }
func (g planeGrid) Y(r int) float64 { return float64(r) }

// SaveKernelPlot draws each named kernel as a line against its index and
// saves the plot to path. The format follows the file extension.
func SaveKernelPlot(path string, kernels map[string][]float64) error {
	if len(kernels) == 0 {
		return fmt.Errorf("no kernels to plot: %w", models.ErrDegenerateInput)
	}

	p := plot.New()
	p.Title.Text = "Filter kernels"
	p.X.Label.Text = "Frequency index"
	p.Y.Label.Text = "Weight"
	p.Legend.Top = true
	p.Legend.Left = true

	names := make([]string, 0, len(kernels))
	for name := range kernels {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		values := kernels[name]
		pts := make(plotter.XYs, len(values))
		for j, v := range values {
			pts[j] = plotter.XY{X: float64(j), Y: v}
		}

		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("kernel %s: %w", name, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(name, line)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create plot directory: %v: %w", err, models.ErrIO)
	}
	if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save kernel plot: %v: %w", err, models.ErrIO)
	}
	return nil
}
