// Package meshtest builds small synthetic meshes and textures for tests.
package meshtest

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"mesh-patch-sampler/internal/mathutil"
	"mesh-patch-sampler/internal/mesh"
)

var (
	Red  = color.NRGBA{R: 220, G: 30, B: 40, A: 255}
	Blue = color.NRGBA{R: 20, G: 60, B: 200, A: 255}
)

// cubeFaces lists the 12 outward-wound triangles of the cube corners below.
var cubeFaces = [][3]int{
	{0, 2, 1}, {0, 3, 2}, // -Z
	{4, 5, 6}, {4, 6, 7}, // +Z
	{0, 1, 5}, {0, 5, 4}, // -Y
	{3, 7, 6}, {3, 6, 2}, // +Y
	{0, 4, 7}, {0, 7, 3}, // -X
	{1, 2, 6}, {1, 6, 5}, // +X
}

func cubeCorners(half float64) []mathutil.Vec3 {
	h := half
	return []mathutil.Vec3{
		{-h, -h, -h}, {h, -h, -h}, {h, h, -h}, {-h, h, -h},
		{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h},
	}
}

// Cube returns an axis-aligned cube centred on the origin with 8 shared
// vertices and 12 triangles. Every UV lies in the left half of the texture
// produced by SplitTexture, so the whole surface samples Red.
func Cube(half float64) *mesh.Mesh {
	m := mesh.New(cubeCorners(half), append([][3]int(nil), cubeFaces...))
	m.Name = "cube"
	m.UVs = [][2]float64{
		{0.1, 0.1}, {0.4, 0.1}, {0.4, 0.4}, {0.1, 0.4},
		{0.1, 0.1}, {0.4, 0.1}, {0.4, 0.4}, {0.1, 0.4},
	}
	return m
}

// CubeSoup returns the same cube with 3 unshared vertices per triangle,
// as exporters produce at UV seams.
func CubeSoup(half float64) *mesh.Mesh {
	corners := cubeCorners(half)
	var verts []mathutil.Vec3
	var faces [][3]int
	for _, f := range cubeFaces {
		base := len(verts)
		verts = append(verts, corners[f[0]], corners[f[1]], corners[f[2]])
		faces = append(faces, [3]int{base, base + 1, base + 2})
	}
	m := mesh.New(verts, faces)
	m.Name = "cube-soup"
	return m
}

// Quad returns the unit square [0,1]² at z=0 facing +Z, with UV equal to
// its XY position.
func Quad() *mesh.Mesh {
	m := mesh.New(
		[]mathutil.Vec3{{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
		[][3]int{{0, 1, 2}, {0, 2, 3}},
	)
	m.Name = "quad"
	m.UVs = [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	return m
}

// GridPlane returns an n×n vertex grid over [-1,1]² at z=0 with a small
// bump of the given height at the centre vertex (n odd).
func GridPlane(n int, bump float64) *mesh.Mesh {
	var verts []mathutil.Vec3
	var uvs [][2]float64
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			x := -1 + 2*float64(i)/float64(n-1)
			y := -1 + 2*float64(j)/float64(n-1)
			z := 0.0
			if i == n/2 && j == n/2 {
				z = bump
			}
			verts = append(verts, mathutil.Vec3{x, y, z})
			uvs = append(uvs, [2]float64{float64(i) / float64(n-1), float64(j) / float64(n-1)})
		}
	}
	var faces [][3]int
	for j := 0; j < n-1; j++ {
		for i := 0; i < n-1; i++ {
			a := j*n + i
			faces = append(faces, [3]int{a, a + 1, a + n + 1}, [3]int{a, a + n + 1, a + n})
		}
	}
	m := mesh.New(verts, faces)
	m.Name = "grid"
	m.UVs = uvs
	return m
}

// SplitTexture returns a w×h texture whose left half is Red and right half Blue.
func SplitTexture(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < w/2 {
				img.SetNRGBA(x, y, Red)
			} else {
				img.SetNRGBA(x, y, Blue)
			}
		}
	}
	return img
}

// GradientTexture returns a texture where R encodes the column and G the row.
func GradientTexture(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

// WriteFixture saves m as <name>.obj with a material library pointing at
// <name>.png holding tex, and returns both paths.
func WriteFixture(dir, name string, m *mesh.Mesh, tex image.Image) (objPath, texPath string, err error) {
	texPath = filepath.Join(dir, name+".png")
	f, err := os.Create(texPath)
	if err != nil {
		return "", "", err
	}
	if err := png.Encode(f, tex); err != nil {
		f.Close()
		return "", "", err
	}
	if err := f.Close(); err != nil {
		return "", "", err
	}

	mtl := fmt.Sprintf("newmtl skin\nKd 1 1 1\nmap_Kd %s.png\n", name)
	if err := os.WriteFile(filepath.Join(dir, name+".mtl"), []byte(mtl), 0644); err != nil {
		return "", "", err
	}

	withLib := *m
	withLib.MaterialLib = name + ".mtl"
	objPath = filepath.Join(dir, name+".obj")
	if err := mesh.SaveOBJ(objPath, &withLib); err != nil {
		return "", "", err
	}
	return objPath, texPath, nil
}
