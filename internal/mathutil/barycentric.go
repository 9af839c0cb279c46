package mathutil

// BarycentricEpsilon floors the Gram determinant of degenerate triangles.
const BarycentricEpsilon = 1e-12

// Barycentric returns weights (u, v, w) with p ≈ u*a + v*b + w*c and
// u+v+w = 1, solving the least-squares system in the triangle's plane.
//
// Zero-area triangles do not fail: the denominator is floored to
// BarycentricEpsilon and the weights are approximate.
func Barycentric(p, a, b, c Vec3) (u, v, w float64) {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)

	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)

	// Gram determinant, >= 0 up to rounding
	denom := d00*d11 - d01*d01
	if denom < BarycentricEpsilon {
		denom = BarycentricEpsilon
	}

	v = (d11*d20 - d01*d21) / denom
	w = (d00*d21 - d01*d20) / denom
	u = 1.0 - v - w
	return u, v, w
}

// BarycentricBatch solves Barycentric row by row. All slices must have the
// same length; the result has one [u, v, w] row per input row.
func BarycentricBatch(p, a, b, c []Vec3) [][3]float64 {
	out := make([][3]float64, len(p))
	for i := range p {
		u, v, w := Barycentric(p[i], a[i], b[i], c[i])
		out[i] = [3]float64{u, v, w}
	}
	return out
}
