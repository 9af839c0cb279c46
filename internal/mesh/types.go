// Package mesh holds the indexed triangle mesh shared by every pipeline stage.
package mesh

import (
	"errors"
	"fmt"
	"math"

	"mesh-patch-sampler/internal/mathutil"
)

var (
	// ErrMissingUV means a textured mesh has no per-vertex UV coordinates.
	ErrMissingUV = errors.New("mesh: texture coordinates missing")
	// ErrMissingNormals means a mesh has no per-vertex normals.
	ErrMissingNormals = errors.New("mesh: vertex normals missing")
	// ErrEmptyMesh means a mesh has no vertices or no faces.
	ErrEmptyMesh = errors.New("mesh: no geometry")
)

// Mesh is an indexed triangle mesh. Faces index into Vertices; UVs and
// VertexNormals, when present, are parallel to Vertices and FaceNormals is
// parallel to Faces.
type Mesh struct {
	Name          string
	Vertices      []mathutil.Vec3
	Faces         [][3]int
	UVs           [][2]float64 // nil when the source carried no texture coordinates
	FaceNormals   []mathutil.Vec3
	VertexNormals []mathutil.Vec3
	MaterialLib   string // mtllib reference from the source file, if any
}

// New builds a mesh and derives its face and vertex normals.
func New(vertices []mathutil.Vec3, faces [][3]int) *Mesh {
	m := &Mesh{Vertices: vertices, Faces: faces}
	m.ComputeFaceNormals()
	m.ComputeVertexNormals()
	return m
}

// Triangle returns the corner positions of face i.
func (m *Mesh) Triangle(i int) (a, b, c mathutil.Vec3) {
	f := m.Faces[i]
	return m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
}

// HasUV reports whether every vertex carries a UV coordinate.
func (m *Mesh) HasUV() bool {
	return len(m.UVs) > 0 && len(m.UVs) == len(m.Vertices)
}

// RequireUV returns ErrMissingUV unless every vertex has a UV.
func (m *Mesh) RequireUV() error {
	if !m.HasUV() {
		return fmt.Errorf("%w: %d uvs for %d vertices", ErrMissingUV, len(m.UVs), len(m.Vertices))
	}
	return nil
}

// RequireVertexNormals returns ErrMissingNormals unless every vertex has a normal.
func (m *Mesh) RequireVertexNormals() error {
	if len(m.VertexNormals) == 0 || len(m.VertexNormals) != len(m.Vertices) {
		return fmt.Errorf("%w: %d normals for %d vertices", ErrMissingNormals, len(m.VertexNormals), len(m.Vertices))
	}
	return nil
}

// Validate checks that the mesh is non-empty and every face index is in range.
func (m *Mesh) Validate() error {
	if len(m.Vertices) == 0 || len(m.Faces) == 0 {
		return fmt.Errorf("%w: %d vertices, %d faces", ErrEmptyMesh, len(m.Vertices), len(m.Faces))
	}
	n := len(m.Vertices)
	for i, f := range m.Faces {
		for _, vi := range f {
			if vi < 0 || vi >= n {
				return fmt.Errorf("mesh: face %d references vertex %d of %d", i, vi, n)
			}
		}
	}
	return nil
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *Mesh) Bounds() (min, max mathutil.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	min = mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	max = mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, v := range m.Vertices {
		min = min.Min(v)
		max = max.Max(v)
	}
	return min, max
}

// Diagonal returns the bounding box diagonal length, the mesh's object size.
func (m *Mesh) Diagonal() float64 {
	min, max := m.Bounds()
	return max.Sub(min).Len()
}

// FaceArea returns the area of face i.
func (m *Mesh) FaceArea(i int) float64 {
	a, b, c := m.Triangle(i)
	return 0.5 * b.Sub(a).Cross(c.Sub(a)).Len()
}

// Clone returns a deep copy.
func (m *Mesh) Clone() *Mesh {
	out := &Mesh{
		Name:        m.Name,
		MaterialLib: m.MaterialLib,
		Vertices:    append([]mathutil.Vec3(nil), m.Vertices...),
		Faces:       append([][3]int(nil), m.Faces...),
	}
	if m.UVs != nil {
		out.UVs = append([][2]float64(nil), m.UVs...)
	}
	if m.FaceNormals != nil {
		out.FaceNormals = append([]mathutil.Vec3(nil), m.FaceNormals...)
	}
	if m.VertexNormals != nil {
		out.VertexNormals = append([]mathutil.Vec3(nil), m.VertexNormals...)
	}
	return out
}
