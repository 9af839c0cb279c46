// Package repair cleans raw triangle soups into manifold geometry and
// reports whether the result is watertight.
package repair

import (
	"fmt"
	"sort"

	"mesh-patch-sampler/internal/mathutil"
	"mesh-patch-sampler/internal/mesh"
)

// Options controls the cleanup tolerances. Both are relative to the mesh's
// bounding box diagonal.
type Options struct {
	WeldTolerance float64 // vertices closer than this are merged
	AreaTolerance float64 // faces with smaller area (relative to diagonal²) are degenerate
}

// DefaultOptions returns tolerances suitable for scanned and CAD meshes alike.
func DefaultOptions() Options {
	return Options{
		WeldTolerance: 1e-8,
		AreaTolerance: 1e-14,
	}
}

// Stats counts what Clean removed.
type Stats struct {
	WeldedVertices       int
	DegenerateFaces      int
	DuplicateFaces       int
	NonManifoldFaces     int
	UnreferencedVertices int
}

// Result is the cleaned geometry. The mesh carries no UVs.
type Result struct {
	Mesh       *mesh.Mesh
	Watertight bool
	Stats      Stats
}

type edge [2]int

func makeEdge(a, b int) edge {
	if a > b {
		a, b = b, a
	}
	return edge{a, b}
}

// Clean welds coincident vertices, removes degenerate and duplicate faces,
// removes faces that make an edge non-manifold, prunes unreferenced
// vertices and checks watertightness. The input mesh is not modified.
func Clean(m *mesh.Mesh, opts Options) (Result, error) {
	if err := m.Validate(); err != nil {
		return Result{}, fmt.Errorf("repair: %w", err)
	}

	diag := m.Diagonal()
	if diag <= 0 {
		diag = 1
	}
	var stats Stats

	// Weld
	weldTol := opts.WeldTolerance * diag
	remap, welded := weldVertices(m.Vertices, weldTol)
	stats.WeldedVertices = welded

	faces := make([][3]int, 0, len(m.Faces))
	for _, f := range m.Faces {
		faces = append(faces, [3]int{remap[f[0]], remap[f[1]], remap[f[2]]})
	}

	// Degenerate
	minArea := opts.AreaTolerance * diag * diag
	kept := faces[:0]
	for _, f := range faces {
		if f[0] == f[1] || f[1] == f[2] || f[0] == f[2] || triArea(m.Vertices, f) <= minArea {
			stats.DegenerateFaces++
			continue
		}
		kept = append(kept, f)
	}
	faces = kept

	// Duplicate (same vertex set regardless of winding)
	seen := make(map[[3]int]struct{}, len(faces))
	kept = make([][3]int, 0, len(faces))
	for _, f := range faces {
		key := [3]int{f[0], f[1], f[2]}
		sort.Ints(key[:])
		if _, dup := seen[key]; dup {
			stats.DuplicateFaces++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, f)
	}
	faces = kept

	// Non-manifold edges
	faces, stats.NonManifoldFaces = removeNonManifold(m.Vertices, faces)

	// Prune and reindex
	index := make([]int, len(m.Vertices))
	for i := range index {
		index[i] = -1
	}
	var verts []mathutil.Vec3
	for fi, f := range faces {
		for k, vi := range f {
			if index[vi] < 0 {
				index[vi] = len(verts)
				verts = append(verts, m.Vertices[vi])
			}
			faces[fi][k] = index[vi]
		}
	}
	referenced := 0
	for i, vi := range remap {
		if vi == i {
			referenced++
		}
	}
	stats.UnreferencedVertices = referenced - len(verts)

	out := mesh.New(verts, faces)
	out.Name = m.Name

	return Result{
		Mesh:       out,
		Watertight: IsWatertight(faces),
		Stats:      stats,
	}, nil
}

// IsWatertight reports whether every edge is shared by exactly two faces.
func IsWatertight(faces [][3]int) bool {
	if len(faces) == 0 {
		return false
	}
	counts := edgeCounts(faces)
	for _, n := range counts {
		if n != 2 {
			return false
		}
	}
	return true
}

func edgeCounts(faces [][3]int) map[edge]int {
	counts := make(map[edge]int, len(faces)*3/2)
	for _, f := range faces {
		counts[makeEdge(f[0], f[1])]++
		counts[makeEdge(f[1], f[2])]++
		counts[makeEdge(f[2], f[0])]++
	}
	return counts
}

// removeNonManifold keeps, for every edge shared by more than two faces,
// the two largest faces and drops the others.
func removeNonManifold(verts []mathutil.Vec3, faces [][3]int) ([][3]int, int) {
	adj := make(map[edge][]int)
	for fi, f := range faces {
		for k := 0; k < 3; k++ {
			e := makeEdge(f[k], f[(k+1)%3])
			adj[e] = append(adj[e], fi)
		}
	}

	var crowded []edge
	for e, fs := range adj {
		if len(fs) > 2 {
			crowded = append(crowded, e)
		}
	}
	sort.Slice(crowded, func(i, j int) bool {
		if crowded[i][0] != crowded[j][0] {
			return crowded[i][0] < crowded[j][0]
		}
		return crowded[i][1] < crowded[j][1]
	})

	drop := make(map[int]bool)
	for _, e := range crowded {
		fs := adj[e]
		live := fs[:0:0]
		for _, fi := range fs {
			if !drop[fi] {
				live = append(live, fi)
			}
		}
		if len(live) <= 2 {
			continue
		}
		sort.SliceStable(live, func(i, j int) bool {
			return triArea(verts, faces[live[i]]) > triArea(verts, faces[live[j]])
		})
		for _, fi := range live[2:] {
			drop[fi] = true
		}
	}

	if len(drop) == 0 {
		return faces, 0
	}
	kept := make([][3]int, 0, len(faces)-len(drop))
	for fi, f := range faces {
		if !drop[fi] {
			kept = append(kept, f)
		}
	}
	return kept, len(drop)
}

func triArea(verts []mathutil.Vec3, f [3]int) float64 {
	a, b, c := verts[f[0]], verts[f[1]], verts[f[2]]
	return 0.5 * b.Sub(a).Cross(c.Sub(a)).Len()
}
