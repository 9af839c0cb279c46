package mesh

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/udhos/gwob"
	"go.uber.org/zap"

	"mesh-patch-sampler/internal/logger"
	"mesh-patch-sampler/internal/mathutil"
)

func parserOptions() *gwob.ObjParserOptions {
	return &gwob.ObjParserOptions{
		LogStats:      false,
		Logger:        func(s string) { logger.Debug("obj parser", zap.String("msg", s)) },
		IgnoreNormals: true,
	}
}

// LoadOBJ reads a Wavefront OBJ file. Polygons are triangulated by the
// parser; vertices are split wherever position/UV pairs differ, so UVs are
// always per-vertex. UVs is nil when the file has no vt records.
// Face and vertex normals are recomputed from the geometry.
func LoadOBJ(path string) (*Mesh, error) {
	obj, err := gwob.NewObjFromFile(path, parserOptions())
	if err != nil {
		return nil, fmt.Errorf("mesh: read %s: %w", path, err)
	}

	stride := obj.StrideSize / 4
	if stride <= 0 {
		return nil, fmt.Errorf("mesh: %s: invalid vertex stride %d", path, obj.StrideSize)
	}
	posOff := obj.StrideOffsetPosition / 4
	texOff := obj.StrideOffsetTexture / 4
	count := len(obj.Coord) / stride

	m := &Mesh{
		Name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Vertices: make([]mathutil.Vec3, count),
		Faces:    make([][3]int, 0, len(obj.Indices)/3),
	}
	if obj.Mtllib != "" {
		m.MaterialLib = obj.Mtllib
	}
	if obj.TextCoordFound {
		m.UVs = make([][2]float64, count)
	}

	for i := 0; i < count; i++ {
		base := i * stride
		m.Vertices[i] = mathutil.Vec3{
			obj.Coord64(base + posOff),
			obj.Coord64(base + posOff + 1),
			obj.Coord64(base + posOff + 2),
		}
		if m.UVs != nil {
			m.UVs[i] = [2]float64{obj.Coord64(base + texOff), obj.Coord64(base + texOff + 1)}
		}
	}

	for i := 0; i+2 < len(obj.Indices); i += 3 {
		m.Faces = append(m.Faces, [3]int{obj.Indices[i], obj.Indices[i+1], obj.Indices[i+2]})
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("mesh: %s: %w", path, err)
	}

	m.ComputeFaceNormals()
	m.ComputeVertexNormals()
	return m, nil
}

// TexturePathFromMaterial returns the diffuse texture (map_Kd) referenced by
// the mesh's material library, resolved relative to the OBJ file. It returns
// "" when no library or no diffuse map exists.
func TexturePathFromMaterial(objPath string, m *Mesh) (string, error) {
	if m.MaterialLib == "" {
		return "", nil
	}
	libPath := m.MaterialLib
	if !filepath.IsAbs(libPath) {
		libPath = filepath.Join(filepath.Dir(objPath), libPath)
	}

	lib, err := gwob.ReadMaterialLibFromFile(libPath, parserOptions())
	if err != nil {
		return "", fmt.Errorf("mesh: read material library %s: %w", libPath, err)
	}

	names := make([]string, 0, len(lib.Lib))
	for name := range lib.Lib {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		mat := lib.Lib[name]
		if mat.MapKd == "" {
			continue
		}
		tex := mat.MapKd
		if !filepath.IsAbs(tex) {
			tex = filepath.Join(filepath.Dir(libPath), tex)
		}
		return tex, nil
	}
	return "", nil
}
