package sampler

import (
	"math"
	"testing"

	"mesh-patch-sampler/internal/mathutil"
	"mesh-patch-sampler/internal/mesh"
	"mesh-patch-sampler/internal/meshtest"
)

func TestRandomPointsLieOnTheirFace(t *testing.T) {
	m := meshtest.Cube(1)
	pts, err := Random(m, 200, 42)
	if err != nil {
		t.Fatal(err)
	}
	perAxis := map[int]int{}
	for i, p := range pts {
		a, b, c := m.Triangle(p.Face)
		u, v, w := mathutil.Barycentric(p.Position, a, b, c)
		if u < -1e-9 || v < -1e-9 || w < -1e-9 {
			t.Fatalf("point %d outside face %d: (%f,%f,%f)", i, p.Face, u, v, w)
		}
		if p.Normal != m.FaceNormals[p.Face] {
			t.Errorf("point %d normal %v, want face normal", i, p.Normal)
		}
		perAxis[p.Face/2]++
	}
	// six equal-area sides should all be visited
	if len(perAxis) != 6 {
		t.Errorf("visited sides %v", perAxis)
	}
}

func TestRandomIsSeeded(t *testing.T) {
	m := meshtest.Cube(1)
	a, _ := Random(m, 5, 9)
	b, _ := Random(m, 5, 9)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed gave different point %d", i)
		}
	}
}

func TestRandomRejectsBadInput(t *testing.T) {
	if _, err := Random(meshtest.Cube(1), 0, 1); err == nil {
		t.Error("expected error for zero count")
	}
	flat := mesh.New([]mathutil.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}, [][3]int{{0, 1, 2}})
	if _, err := Random(flat, 1, 1); err == nil {
		t.Error("expected error for zero-area mesh")
	}
}

func TestCenter(t *testing.T) {
	m := meshtest.GridPlane(5, 0)
	p, err := Center(m)
	if err != nil {
		t.Fatal(err)
	}
	if p.Position.Len() > 1e-12 {
		t.Errorf("centre vertex at %v", p.Position)
	}
	if math.Abs(p.Normal[2]-1) > 1e-9 {
		t.Errorf("normal %v", p.Normal)
	}
	if p.Face != -1 {
		t.Errorf("face = %d, want -1 for a vertex sample", p.Face)
	}
}

func TestSelect(t *testing.T) {
	m := meshtest.Cube(1)
	pts, err := Select(m, PolicyCenter, 10, 0)
	if err != nil || len(pts) != 1 {
		t.Fatalf("center: %d points, %v", len(pts), err)
	}
	pts, err = Select(m, PolicyRandom, 3, 0)
	if err != nil || len(pts) != 3 {
		t.Fatalf("random: %d points, %v", len(pts), err)
	}
	if _, err := Select(m, "poisson", 1, 0); err == nil {
		t.Error("expected error for unknown policy")
	}
}
