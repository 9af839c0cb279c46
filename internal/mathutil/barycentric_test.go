package mathutil

import (
	"math"
	"testing"
)

func TestBarycentricRecoversWeights(t *testing.T) {
	tris := [][3]Vec3{
		{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		{{1, 2, 3}, {-4, 0.5, 2}, {0, 7, -1}},
		{{10, 10, 10}, {10.5, 10, 10}, {10, 10, 11}},
	}
	weights := [][3]float64{
		{1.0 / 3, 1.0 / 3, 1.0 / 3},
		{0.2, 0.5, 0.3},
		{1, 0, 0},
		{0, 0, 1},
		{0.7, -0.2, 0.5}, // outside the triangle, same plane
	}

	for ti, tri := range tris {
		for wi, want := range weights {
			p := Weighted(tri[0], tri[1], tri[2], want[0], want[1], want[2])
			u, v, w := Barycentric(p, tri[0], tri[1], tri[2])
			if math.Abs(u-want[0]) > 1e-9 || math.Abs(v-want[1]) > 1e-9 || math.Abs(w-want[2]) > 1e-9 {
				t.Errorf("tri %d weights %d: got (%f, %f, %f), want %v", ti, wi, u, v, w, want)
			}
			if s := u + v + w; math.Abs(s-1) > 1e-12 {
				t.Errorf("tri %d weights %d: sum = %f, want 1", ti, wi, s)
			}
		}
	}
}

func TestBarycentricDegenerateDoesNotPanic(t *testing.T) {
	a := Vec3{0, 0, 0}
	u, v, w := Barycentric(Vec3{1, 1, 1}, a, a, a)
	for _, x := range []float64{u, v, w} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			t.Fatalf("degenerate triangle produced non-finite weight: (%f, %f, %f)", u, v, w)
		}
	}
	if s := u + v + w; math.Abs(s-1) > 1e-12 {
		t.Errorf("sum = %f, want 1", s)
	}

	// Collinear vertices
	u, v, w = Barycentric(Vec3{0.5, 0, 0}, a, Vec3{1, 0, 0}, Vec3{2, 0, 0})
	if math.IsNaN(u) || math.IsNaN(v) || math.IsNaN(w) {
		t.Fatalf("collinear triangle produced NaN")
	}
}

func TestBarycentricBatch(t *testing.T) {
	a := []Vec3{{0, 0, 0}, {0, 0, 0}}
	b := []Vec3{{1, 0, 0}, {2, 0, 0}}
	c := []Vec3{{0, 1, 0}, {0, 2, 0}}
	p := []Vec3{{0.25, 0.25, 0}, {1, 0, 0}}

	got := BarycentricBatch(p, a, b, c)
	if len(got) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(got))
	}
	want := [][3]float64{{0.5, 0.25, 0.25}, {0.5, 0.5, 0}}
	for i := range want {
		for k := 0; k < 3; k++ {
			if math.Abs(got[i][k]-want[i][k]) > 1e-12 {
				t.Errorf("row %d: got %v, want %v", i, got[i], want[i])
				break
			}
		}
	}
}

func TestMat3RowsProjectsOntoBasis(t *testing.T) {
	m := Mat3Rows(Vec3{0, 1, 0}, Vec3{0, 0, 1}, Vec3{1, 0, 0})
	got := m.MulVec3(Vec3{3, 4, 5})
	if got != (Vec3{4, 5, 3}) {
		t.Errorf("MulVec3 = %v, want [4 5 3]", got)
	}
}
