package grid

import (
	"fmt"

	"mesh-patch-sampler/internal/mathutil"
)

// Grid is a Side×Side lattice over [-s, s]² in frame coordinates, stored
// row-major. Row r has plane coordinate y = Ys[r]; column c has x = Xs[c].
type Grid struct {
	Frame Frame
	Side  int
	Xs    []float64
	Ys    []float64
	Mask  []bool // true inside the sampling disk
	Valid int
}

// RayBatch is the compacted set of rays for the valid grid cells.
// Index[i] is the flat grid position of Origins[i].
type RayBatch struct {
	Origins   []mathutil.Vec3
	Direction mathutil.Vec3
	Index     []int
}

// Len returns the number of rays.
func (b RayBatch) Len() int { return len(b.Origins) }

// NewGrid builds a 2*lenPixel square grid over the frame's extent.
func NewGrid(frame Frame, lenPixel int) (Grid, error) {
	if lenPixel < 1 {
		return Grid{}, fmt.Errorf("grid: len_pixel must be positive, got %d", lenPixel)
	}
	if frame.Extent <= 0 {
		return Grid{}, fmt.Errorf("grid: extent must be positive, got %g", frame.Extent)
	}
	side := 2 * lenPixel
	s := frame.Extent
	xs := Linspace(-s, s, side)
	ys := Linspace(-s, s, side)

	g := Grid{
		Frame: frame,
		Side:  side,
		Xs:    xs,
		Ys:    ys,
		Mask:  make([]bool, side*side),
	}
	for r := 0; r < side; r++ {
		for c := 0; c < side; c++ {
			if InDisk(xs[c], ys[r], s) {
				g.Mask[r*side+c] = true
				g.Valid++
			}
		}
	}
	return g, nil
}

// InDisk reports whether (x, y) lies in the closed disk of radius s.
func InDisk(x, y, s float64) bool {
	return x*x+y*y <= s*s
}

// Linspace returns n evenly spaced values from a to b inclusive.
func Linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = a
		return out
	}
	step := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + float64(i)*step
	}
	out[n-1] = b
	return out
}

// At returns the plane coordinates of flat grid position i.
func (g Grid) At(i int) (x, y float64) {
	return g.Xs[i%g.Side], g.Ys[i/g.Side]
}

// Rays compacts the valid cells into a ray batch pointing along -Normal.
func (g Grid) Rays() RayBatch {
	b := RayBatch{
		Origins:   make([]mathutil.Vec3, 0, g.Valid),
		Direction: g.Frame.Normal.Scale(-1),
		Index:     make([]int, 0, g.Valid),
	}
	for i, ok := range g.Mask {
		if !ok {
			continue
		}
		x, y := g.At(i)
		b.Origins = append(b.Origins, g.Frame.PlanePoint(x, y))
		b.Index = append(b.Index, i)
	}
	return b
}
