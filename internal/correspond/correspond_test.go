package correspond

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"mesh-patch-sampler/internal/mathutil"
	"mesh-patch-sampler/internal/meshtest"
)

func TestIndexMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pts := make([]mathutil.Vec3, 500)
	for i := range pts {
		pts[i] = mathutil.Vec3{rng.Float64(), rng.Float64(), rng.Float64()}
	}
	ix, err := NewIndex(pts)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	if ix.Len() != 500 {
		t.Errorf("Len = %d", ix.Len())
	}

	for q := 0; q < 200; q++ {
		query := mathutil.Vec3{rng.Float64()*1.2 - 0.1, rng.Float64()*1.2 - 0.1, rng.Float64()*1.2 - 0.1}
		want, wantD := -1, math.Inf(1)
		for i, p := range pts {
			if d := p.Dist(query); d < wantD {
				want, wantD = i, d
			}
		}
		got, gotD := ix.Nearest(query)
		if got != want && math.Abs(gotD-wantD) > 1e-12 {
			t.Fatalf("query %v: nearest %d (%f), brute force %d (%f)", query, got, gotD, want, wantD)
		}
	}
}

func TestNewIndexEmpty(t *testing.T) {
	if _, err := NewIndex(nil); !errors.Is(err, ErrEmptyIndex) {
		t.Errorf("expected ErrEmptyIndex, got %v", err)
	}
	if _, err := Build([]mathutil.Vec3{{0, 0, 0}}, nil); !errors.Is(err, ErrEmptyIndex) {
		t.Errorf("Build with empty smoothed set: got %v", err)
	}
}

func TestBuildMapsSoupOntoWeldedCube(t *testing.T) {
	soup := meshtest.CubeSoup(1)
	cube := meshtest.Cube(1)

	m, err := Build(soup.Vertices, cube.Vertices)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(m) != len(soup.Vertices) {
		t.Fatalf("map length %d, want %d", len(m), len(soup.Vertices))
	}
	for i, si := range m {
		if soup.Vertices[i] != cube.Vertices[si] {
			t.Errorf("vertex %d mapped to %v, want coincident %v", i, cube.Vertices[si], soup.Vertices[i])
		}
	}

	normals := SmoothedFaceNormals(soup.Faces, cube.Vertices, m)
	for i, n := range normals {
		if d := n.Dot(soup.FaceNormals[i]); math.Abs(d-1) > 1e-12 {
			t.Errorf("face %d: smoothed normal %v differs from %v", i, n, soup.FaceNormals[i])
		}
	}
}

func TestSmoothedFaceNormalsFollowSmoothedGeometry(t *testing.T) {
	orig := []mathutil.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	// smoothed copy stored in a different order and lifted out of the plane
	smoothed := []mathutil.Vec3{{0, 0.9, 0.3}, {0.02, 0, 0}, {1, 0, 0.01}}
	m, err := Build(orig, smoothed)
	if err != nil {
		t.Fatal(err)
	}
	if m[0] != 1 || m[1] != 2 || m[2] != 0 {
		t.Fatalf("unexpected map %v", m)
	}

	normals := SmoothedFaceNormals([][3]int{{0, 1, 2}}, smoothed, m)
	a, b, c := smoothed[1], smoothed[2], smoothed[0]
	want := b.Sub(a).Cross(c.Sub(a)).Normalize()
	if normals[0].Sub(want).Len() > 1e-12 {
		t.Errorf("normal %v, want %v", normals[0], want)
	}
	if math.Abs(normals[0].Len()-1) > 1e-12 {
		t.Errorf("normal not unit: %v", normals[0])
	}
}

func TestSmoothedFaceNormalsDegenerate(t *testing.T) {
	pts := []mathutil.Vec3{{1, 1, 1}}
	normals := SmoothedFaceNormals([][3]int{{0, 1, 2}}, pts, Map{0, 0, 0})
	if normals[0] != (mathutil.Vec3{}) {
		t.Errorf("collapsed face should give zero normal, got %v", normals[0])
	}
}
