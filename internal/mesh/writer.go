package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
)

// WriteOBJ writes m as Wavefront OBJ. UVs are written when present and
// faces reference them with the same index as the position.
func WriteOBJ(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)
	if m.MaterialLib != "" {
		fmt.Fprintf(bw, "mtllib %s\n", m.MaterialLib)
	}
	if m.Name != "" {
		fmt.Fprintf(bw, "o %s\n", m.Name)
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, v := range m.Vertices {
		fmt.Fprintf(bw, "v %s %s %s\n", f(v[0]), f(v[1]), f(v[2]))
	}
	hasUV := m.HasUV()
	if hasUV {
		for _, uv := range m.UVs {
			fmt.Fprintf(bw, "vt %s %s\n", f(uv[0]), f(uv[1]))
		}
	}
	for _, face := range m.Faces {
		a, b, c := face[0]+1, face[1]+1, face[2]+1
		if hasUV {
			fmt.Fprintf(bw, "f %d/%d %d/%d %d/%d\n", a, a, b, b, c, c)
		} else {
			fmt.Fprintf(bw, "f %d %d %d\n", a, b, c)
		}
	}
	return bw.Flush()
}

// SaveOBJ writes m to path.
func SaveOBJ(path string, m *Mesh) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("mesh: create %s: %w", path, err)
	}
	if err := WriteOBJ(out, m); err != nil {
		out.Close()
		return fmt.Errorf("mesh: write %s: %w", path, err)
	}
	return out.Close()
}
