package backprojection

import (
	"math"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// Rotate returns m rotated counter-clockwise by the given angle in degrees
// about its centre ((cols-1)/2, (rows-1)/2). Output pixels are sampled
// from the source with bilinear interpolation; positions that fall outside
// the source blend with zero. The output has the same shape as m.
func Rotate(m mat.Matrix, degrees float64) *mat.Dense {
	rows, cols := m.Dims()
	src := mat.DenseCopyOf(m)
	dst := mat.NewDense(rows, cols, nil)
	rotateAdd(dst.RawMatrix(), src.RawMatrix(), degrees)
	return dst
}

// rotateAdd rotates src by degrees and adds the result into dst.
// Each destination pixel is mapped back into the source:
//
//	src = R(theta) * (dst - c) + c
//
// with x along columns and y along rows.
func rotateAdd(dst, src blas64.General, degrees float64) {
	theta := degrees * math.Pi / 180
	sin, cos := math.Sincos(theta)

	cx := float64(src.Cols-1) / 2
	cy := float64(src.Rows-1) / 2

	for r := 0; r < dst.Rows; r++ {
		dy := float64(r) - cy
		out := dst.Data[r*dst.Stride : r*dst.Stride+dst.Cols]
		for c := range out {
			dx := float64(c) - cx
			x := cos*dx - sin*dy + cx
			y := sin*dx + cos*dy + cy
			out[c] += bilinear(src, x, y)
		}
	}
}

// bilinear samples src at a fractional position, treating everything
// outside the matrix as zero. Integer positions return the stored value
// exactly.
func bilinear(src blas64.General, x, y float64) float64 {
	if x <= -1 || y <= -1 || x >= float64(src.Cols) || y >= float64(src.Rows) {
		return 0
	}

	x0 := math.Floor(x)
	y0 := math.Floor(y)
	fx := x - x0
	fy := y - y0
	c0 := int(x0)
	r0 := int(y0)

	top := (1-fx)*pixel(src, r0, c0) + fx*pixel(src, r0, c0+1)
	bottom := (1-fx)*pixel(src, r0+1, c0) + fx*pixel(src, r0+1, c0+1)
	return (1-fy)*top + fy*bottom
}

func pixel(src blas64.General, r, c int) float64 {
	if r < 0 || c < 0 || r >= src.Rows || c >= src.Cols {
		return 0
	}
	return src.Data[r*src.Stride+c]
}
