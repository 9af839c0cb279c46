package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"sort"

	"mesh-patch-sampler/internal/mesh"
	"mesh-patch-sampler/internal/repair"
	"mesh-patch-sampler/internal/smooth"
)

func main() {
	writeRepaired := flag.String("write", "", "Write the repaired (and smoothed) mesh to this OBJ path")
	method := flag.String("method", "taubin", "Smoothing method for -write: taubin or laplacian")
	iterations := flag.Int("iterations", 0, "Smoothing iterations for -write")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: inspect [flags] mesh.obj\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	path := flag.Arg(0)

	m, err := mesh.LoadOBJ(path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	lo, hi := m.Bounds()
	fmt.Printf("Mesh %q: verts=%d, tris=%d, uv=%v\n", m.Name, len(m.Vertices), len(m.Faces), m.HasUV())
	fmt.Printf("  BBox: X[%.3f, %.3f] Y[%.3f, %.3f] Z[%.3f, %.3f]\n", lo[0], hi[0], lo[1], hi[1], lo[2], hi[2])
	fmt.Printf("  Size: %.3f x %.3f x %.3f, diagonal %.3f\n", hi[0]-lo[0], hi[1]-lo[1], hi[2]-lo[2], m.Diagonal())

	if tex, err := mesh.TexturePathFromMaterial(path, m); err != nil {
		fmt.Printf("  Material: %v\n", err)
	} else if tex != "" {
		fmt.Printf("  Texture: %s\n", tex)
	}

	// Surface area by dominant normal axis
	areaByDir := map[string]float64{}
	total := 0.0
	for i, n := range m.FaceNormals {
		a := m.FaceArea(i)
		total += a
		areaByDir[dominantAxis(n[0], n[1], n[2])] += a
	}
	dirs := make([]string, 0, len(areaByDir))
	for d := range areaByDir {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	fmt.Printf("  Area: %.4f\n", total)
	for _, d := range dirs {
		fmt.Printf("    %s: %5.1f%%\n", d, 100*areaByDir[d]/total)
	}

	res, err := repair.Clean(m, repair.DefaultOptions())
	if err != nil {
		fmt.Printf("Repair error: %v\n", err)
		os.Exit(1)
	}
	s := res.Stats
	fmt.Printf("Repair: verts=%d, tris=%d, watertight=%v\n", len(res.Mesh.Vertices), len(res.Mesh.Faces), res.Watertight)
	fmt.Printf("  welded=%d degenerate=%d duplicate=%d nonmanifold=%d unreferenced=%d\n",
		s.WeldedVertices, s.DegenerateFaces, s.DuplicateFaces, s.NonManifoldFaces, s.UnreferencedVertices)

	if *writeRepaired == "" {
		return
	}
	out := res.Mesh
	if *iterations > 0 {
		if !res.Watertight {
			fmt.Println("Not watertight: writing unsmoothed geometry")
		} else {
			mt, err := smooth.ParseMethod(*method)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(2)
			}
			verts, err := smooth.Smooth(res.Mesh, mt, *iterations, smooth.DefaultParams())
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			out = mesh.New(verts, res.Mesh.Faces)
			out.Name = res.Mesh.Name
		}
	}
	if err := mesh.SaveOBJ(*writeRepaired, out); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *writeRepaired)
}

func dominantAxis(x, y, z float64) string {
	ax, ay, az := math.Abs(x), math.Abs(y), math.Abs(z)
	switch {
	case ax >= ay && ax >= az:
		if x >= 0 {
			return "+X"
		}
		return "-X"
	case ay >= az:
		if y >= 0 {
			return "+Y"
		}
		return "-Y"
	default:
		if z >= 0 {
			return "+Z"
		}
		return "-Z"
	}
}
