// Package sampler picks the surface points patches are extracted at.
package sampler

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"mesh-patch-sampler/internal/mathutil"
	"mesh-patch-sampler/internal/mesh"
)

// Policy names a point selection strategy.
type Policy string

const (
	PolicyRandom Policy = "random"
	PolicyCenter Policy = "center"
)

// Point is a surface location. Random points carry their face and its
// original normal. Center points sit on a vertex shared by several faces,
// so Face is -1 and Normal is the vertex normal.
type Point struct {
	Position mathutil.Vec3
	Normal   mathutil.Vec3
	Face     int
}

// Select dispatches on policy. count and seed only apply to random.
func Select(m *mesh.Mesh, p Policy, count int, seed int64) ([]Point, error) {
	switch p {
	case PolicyRandom, "":
		return Random(m, count, seed)
	case PolicyCenter:
		pt, err := Center(m)
		if err != nil {
			return nil, err
		}
		return []Point{pt}, nil
	}
	return nil, fmt.Errorf("sampler: unknown policy %q", p)
}

// Random draws count points uniformly over the surface area. The same seed
// yields the same points.
func Random(m *mesh.Mesh, count int, seed int64) ([]Point, error) {
	if count < 1 {
		return nil, fmt.Errorf("sampler: count must be positive, got %d", count)
	}
	cum := make([]float64, len(m.Faces))
	total := 0.0
	for i := range m.Faces {
		total += m.FaceArea(i)
		cum[i] = total
	}
	if total == 0 {
		return nil, fmt.Errorf("sampler: %w: zero surface area", mesh.ErrEmptyMesh)
	}

	rng := rand.New(rand.NewSource(seed))
	out := make([]Point, count)
	for k := range out {
		f := sort.SearchFloat64s(cum, rng.Float64()*total)
		if f >= len(cum) {
			f = len(cum) - 1
		}
		a, b, c := m.Triangle(f)
		// uniform point in the triangle
		r1 := math.Sqrt(rng.Float64())
		r2 := rng.Float64()
		out[k] = Point{
			Position: mathutil.Weighted(a, b, c, 1-r1, r1*(1-r2), r1*r2),
			Normal:   m.FaceNormals[f],
			Face:     f,
		}
	}
	return out, nil
}

// Center returns the vertex closest to the bounding-box centre.
func Center(m *mesh.Mesh) (Point, error) {
	if len(m.Vertices) == 0 || len(m.Faces) == 0 {
		return Point{}, mesh.ErrEmptyMesh
	}
	if err := m.RequireVertexNormals(); err != nil {
		return Point{}, err
	}
	lo, hi := m.Bounds()
	centre := lo.Add(hi).Scale(0.5)

	best, bestD := -1, math.Inf(1)
	for i, v := range m.Vertices {
		if d := v.Dist(centre); d < bestD {
			best, bestD = i, d
		}
	}
	used := false
	for _, f := range m.Faces {
		if f[0] == best || f[1] == best || f[2] == best {
			used = true
			break
		}
	}
	if !used {
		return Point{}, fmt.Errorf("sampler: centre vertex %d is not on any face", best)
	}
	return Point{Position: m.Vertices[best], Normal: m.VertexNormals[best], Face: -1}, nil
}
