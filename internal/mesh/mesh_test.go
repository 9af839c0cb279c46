package mesh

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"mesh-patch-sampler/internal/mathutil"
)

const quadOBJ = `mtllib quad.mtl
o quad
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
usemtl skin
f 1/1 2/2 3/3 4/4
`

const quadMTL = `newmtl skin
Kd 1 1 1
map_Kd skin.png
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadOBJWithUV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "quad.obj", quadOBJ)
	writeFile(t, dir, "quad.mtl", quadMTL)

	m, err := LoadOBJ(path)
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if len(m.Vertices) != 4 {
		t.Errorf("expected 4 vertices, got %d", len(m.Vertices))
	}
	if len(m.Faces) != 2 {
		t.Errorf("expected quad triangulated into 2 faces, got %d", len(m.Faces))
	}
	if err := m.RequireUV(); err != nil {
		t.Errorf("RequireUV: %v", err)
	}
	for i, n := range m.FaceNormals {
		if math.Abs(math.Abs(n[2])-1) > 1e-9 {
			t.Errorf("face %d normal = %v, want ±Z", i, n)
		}
	}
	if m.Name != "quad" {
		t.Errorf("name = %q, want quad", m.Name)
	}

	tex, err := TexturePathFromMaterial(path, m)
	if err != nil {
		t.Fatalf("TexturePathFromMaterial: %v", err)
	}
	if tex != filepath.Join(dir, "skin.png") {
		t.Errorf("texture path = %q, want %q", tex, filepath.Join(dir, "skin.png"))
	}
}

func TestLoadOBJWithoutUV(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tri.obj", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")

	m, err := LoadOBJ(path)
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if m.HasUV() {
		t.Error("mesh without vt records should have no UVs")
	}
	if err := m.RequireUV(); !errors.Is(err, ErrMissingUV) {
		t.Errorf("RequireUV error = %v, want ErrMissingUV", err)
	}
}

func TestLoadOBJMissingFile(t *testing.T) {
	if _, err := LoadOBJ(filepath.Join(t.TempDir(), "nope.obj")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestVertexNormalsAreaWeighted(t *testing.T) {
	// Two faces sharing an edge: a large one in the XY plane, a tiny one in XZ.
	verts := []mathutil.Vec3{{0, 0, 0}, {10, 0, 0}, {0, 10, 0}, {0, 0, 0.1}}
	faces := [][3]int{{0, 1, 2}, {0, 3, 1}}
	m := New(verts, faces)

	n := m.VertexNormals[0]
	if n[2] < 0.99 {
		t.Errorf("vertex 0 normal %v should be dominated by the large face", n)
	}
	if math.Abs(n.Len()-1) > 1e-9 {
		t.Errorf("vertex normal not unit length: %v", n)
	}
	if err := m.RequireVertexNormals(); err != nil {
		t.Errorf("RequireVertexNormals: %v", err)
	}
}

func TestValidate(t *testing.T) {
	m := &Mesh{Vertices: []mathutil.Vec3{{0, 0, 0}}, Faces: [][3]int{{0, 1, 2}}}
	if err := m.Validate(); err == nil {
		t.Error("expected out-of-range index error")
	}
	empty := &Mesh{}
	if err := empty.Validate(); !errors.Is(err, ErrEmptyMesh) {
		t.Errorf("empty mesh error = %v, want ErrEmptyMesh", err)
	}
	noNormals := &Mesh{Vertices: []mathutil.Vec3{{0, 0, 0}}}
	if err := noNormals.RequireVertexNormals(); !errors.Is(err, ErrMissingNormals) {
		t.Errorf("RequireVertexNormals error = %v, want ErrMissingNormals", err)
	}
}

func TestBoundsAndClone(t *testing.T) {
	m := New([]mathutil.Vec3{{-1, 0, 2}, {3, 4, 2}, {0, 0, 5}}, [][3]int{{0, 1, 2}})
	min, max := m.Bounds()
	if min != (mathutil.Vec3{-1, 0, 2}) || max != (mathutil.Vec3{3, 4, 5}) {
		t.Errorf("bounds = %v..%v", min, max)
	}
	if d := m.Diagonal(); math.Abs(d-math.Sqrt(16+16+9)) > 1e-12 {
		t.Errorf("diagonal = %f", d)
	}

	c := m.Clone()
	c.Vertices[0] = mathutil.Vec3{9, 9, 9}
	if m.Vertices[0] == c.Vertices[0] {
		t.Error("Clone shares vertex storage")
	}
}

func TestSaveOBJRoundTrip(t *testing.T) {
	src := New(
		[]mathutil.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0.5}},
		[][3]int{{0, 1, 2}, {0, 2, 3}},
	)
	src.UVs = [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 0.25}}
	path := filepath.Join(t.TempDir(), "out.obj")
	if err := SaveOBJ(path, src); err != nil {
		t.Fatalf("SaveOBJ: %v", err)
	}
	back, err := LoadOBJ(path)
	if err != nil {
		t.Fatalf("LoadOBJ: %v", err)
	}
	if len(back.Faces) != 2 || !back.HasUV() {
		t.Fatalf("faces %d uv %v", len(back.Faces), back.HasUV())
	}
	for fi, f := range back.Faces {
		for k := 0; k < 3; k++ {
			want := src.Vertices[src.Faces[fi][k]]
			if got := back.Vertices[f[k]]; got.Dist(want) > 1e-6 {
				t.Errorf("face %d corner %d at %v, want %v", fi, k, got, want)
			}
			wantUV := src.UVs[src.Faces[fi][k]]
			gotUV := back.UVs[f[k]]
			if math.Abs(gotUV[0]-wantUV[0]) > 1e-6 || math.Abs(gotUV[1]-wantUV[1]) > 1e-6 {
				t.Errorf("face %d corner %d uv %v, want %v", fi, k, gotUV, wantUV)
			}
		}
	}
}
