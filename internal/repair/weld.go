package repair

import (
	"math"

	"github.com/dhconnelly/rtreego"

	"mesh-patch-sampler/internal/mathutil"
)

// weldPoint is a representative vertex stored in the R-tree.
type weldPoint struct {
	pos   mathutil.Vec3
	index int
	rect  rtreego.Rect
}

func (w *weldPoint) Bounds() rtreego.Rect {
	return w.rect
}

// weldVertices maps every vertex to the first earlier vertex within tol,
// or to itself. It returns the map and the number of merged vertices.
func weldVertices(verts []mathutil.Vec3, tol float64) ([]int, int) {
	if tol <= 0 || math.IsNaN(tol) {
		tol = 1e-12
	}

	tree := rtreego.NewTree(3, 8, 32)
	remap := make([]int, len(verts))
	merged := 0

	for i, v := range verts {
		p := rtreego.Point{v[0], v[1], v[2]}
		query := p.ToRect(tol)

		best, bestDist := -1, math.Inf(1)
		for _, s := range tree.SearchIntersect(query) {
			wp := s.(*weldPoint)
			if d := wp.pos.Dist(v); d <= tol && d < bestDist {
				best, bestDist = wp.index, d
			}
		}
		if best >= 0 {
			remap[i] = best
			merged++
			continue
		}

		remap[i] = i
		tree.Insert(&weldPoint{pos: v, index: i, rect: query})
	}
	return remap, merged
}
