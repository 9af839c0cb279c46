package correspond

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"

	"mesh-patch-sampler/internal/mathutil"
)

// vertexPoint is a position tagged with its index in the indexed point set.
type vertexPoint struct {
	pos   mathutil.Vec3
	index int
}

func (p vertexPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(vertexPoint)
	return p.pos[d] - q.pos[d]
}

func (p vertexPoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance, as kdtree expects.
func (p vertexPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(vertexPoint)
	return p.pos.Sub(q.pos).Len2()
}

type vertexPoints []vertexPoint

func (p vertexPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p vertexPoints) Len() int                      { return len(p) }
func (p vertexPoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}
func (p vertexPoints) Pivot(d kdtree.Dim) int {
	pl := plane{Dim: d, vertexPoints: p}
	return kdtree.Partition(pl, kdtree.MedianOfMedians(pl))
}

// plane sorts points along one dimension for median partitioning.
type plane struct {
	kdtree.Dim
	vertexPoints
}

func (p plane) Less(i, j int) bool {
	return p.vertexPoints[i].pos[p.Dim] < p.vertexPoints[j].pos[p.Dim]
}
func (p plane) Swap(i, j int) {
	p.vertexPoints[i], p.vertexPoints[j] = p.vertexPoints[j], p.vertexPoints[i]
}
func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.vertexPoints = p.vertexPoints[start:end]
	return p
}

// ErrEmptyIndex is returned when building an index over no points.
var ErrEmptyIndex = errors.New("correspond: empty point set")

// Index answers nearest-point queries over a fixed point set.
type Index struct {
	tree *kdtree.Tree
	n    int
}

// NewIndex builds a kd-tree over points. The slice is copied.
func NewIndex(points []mathutil.Vec3) (*Index, error) {
	if len(points) == 0 {
		return nil, ErrEmptyIndex
	}
	pts := make(vertexPoints, len(points))
	for i, p := range points {
		pts[i] = vertexPoint{pos: p, index: i}
	}
	return &Index{tree: kdtree.New(pts, false), n: len(points)}, nil
}

// Len returns the number of indexed points.
func (ix *Index) Len() int { return ix.n }

// Nearest returns the index of the closest point to q and its distance.
func (ix *Index) Nearest(q mathutil.Vec3) (int, float64) {
	c, d2 := ix.tree.Nearest(vertexPoint{pos: q})
	return c.(vertexPoint).index, math.Sqrt(d2)
}
