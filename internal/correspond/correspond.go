// Package correspond maps vertices of an original mesh onto its repaired
// and smoothed counterpart, whose vertex order and count differ.
package correspond

import (
	"fmt"

	"mesh-patch-sampler/internal/mathutil"
)

// NormalEpsilon is the cross-product length below which a smoothed face
// normal is reported unnormalised.
const NormalEpsilon = 1e-12

// Map is a dense lookup: Map[originalVertex] = nearest smoothed vertex.
type Map []int

// Build indexes the smoothed vertices once and queries every original
// vertex against it.
func Build(original, smoothed []mathutil.Vec3) (Map, error) {
	ix, err := NewIndex(smoothed)
	if err != nil {
		return nil, fmt.Errorf("correspond: build index: %w", err)
	}
	m := make(Map, len(original))
	for i, v := range original {
		m[i], _ = ix.Nearest(v)
	}
	return m, nil
}

// SmoothedFaceNormals computes, for every original face, the normal of the
// triangle formed by its corners' mapped smoothed positions. The result is
// indexed like faces. Near-zero cross products are returned as-is.
func SmoothedFaceNormals(faces [][3]int, smoothed []mathutil.Vec3, m Map) []mathutil.Vec3 {
	out := make([]mathutil.Vec3, len(faces))
	for i, f := range faces {
		a := smoothed[m[f[0]]]
		b := smoothed[m[f[1]]]
		c := smoothed[m[f[2]]]
		out[i] = b.Sub(a).Cross(c.Sub(a)).NormalizeEps(NormalEpsilon)
	}
	return out
}
