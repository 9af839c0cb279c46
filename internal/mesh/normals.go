package mesh

import "mesh-patch-sampler/internal/mathutil"

// ComputeFaceNormals sets FaceNormals from the winding of each face.
// Zero-area faces get the zero vector.
func (m *Mesh) ComputeFaceNormals() {
	m.FaceNormals = make([]mathutil.Vec3, len(m.Faces))
	for i := range m.Faces {
		a, b, c := m.Triangle(i)
		m.FaceNormals[i] = b.Sub(a).Cross(c.Sub(a)).Normalize()
	}
}

// ComputeVertexNormals sets VertexNormals to the area-weighted average of
// the adjacent face normals. Isolated vertices get the zero vector.
func (m *Mesh) ComputeVertexNormals() {
	acc := make([]mathutil.Vec3, len(m.Vertices))
	for _, f := range m.Faces {
		a, b, c := m.Vertices[f[0]], m.Vertices[f[1]], m.Vertices[f[2]]
		// unnormalised cross product carries twice the face area
		n := b.Sub(a).Cross(c.Sub(a))
		acc[f[0]] = acc[f[0]].Add(n)
		acc[f[1]] = acc[f[1]].Add(n)
		acc[f[2]] = acc[f[2]].Add(n)
	}
	for i := range acc {
		acc[i] = acc[i].Normalize()
	}
	m.VertexNormals = acc
}
