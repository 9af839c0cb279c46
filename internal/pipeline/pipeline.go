// Package pipeline prepares a mesh/texture pair once and extracts patches
// from it at any number of surface points.
package pipeline

import (
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"

	"mesh-patch-sampler/internal/correspond"
	"mesh-patch-sampler/internal/extract"
	"mesh-patch-sampler/internal/grid"
	"mesh-patch-sampler/internal/logger"
	"mesh-patch-sampler/internal/mathutil"
	"mesh-patch-sampler/internal/mesh"
	"mesh-patch-sampler/internal/postprocess"
	"mesh-patch-sampler/internal/repair"
	"mesh-patch-sampler/internal/sampler"
	"mesh-patch-sampler/internal/smooth"
	"mesh-patch-sampler/internal/texture"
)

// ErrNoTexture is returned when no texture path is given and the mesh's
// material library names none.
var ErrNoTexture = errors.New("pipeline: no texture")

// Prepared is the per-mesh precomputation shared by every sample. It is
// read-only after Prepare and safe for concurrent ExtractAt calls.
type Prepared struct {
	Original *mesh.Mesh
	Smoothed *mesh.Mesh
	Texture  *image.NRGBA

	Repair           repair.Result
	SmoothingApplied bool

	Correspondence      correspond.Map
	SmoothedFaceNormals []mathutil.Vec3

	Extractor *extract.Extractor
	Extent    float64
	Offset    float64

	opts Options
}

// Sample is one extracted patch with its frame.
type Sample struct {
	Index    int
	Point    sampler.Point
	Frame    grid.Frame
	Hits     int // colour-pass hits
	GeomHits int
	*postprocess.Result
}

// Prepare loads the mesh and texture and runs the one-time precomputation.
// An empty texturePath falls back to the mesh's material library.
func Prepare(meshPath, texturePath string, opts Options) (*Prepared, error) {
	m, err := mesh.LoadOBJ(meshPath)
	if err != nil {
		return nil, err
	}
	if err := m.RequireUV(); err != nil {
		return nil, fmt.Errorf("pipeline: %s: %w", meshPath, err)
	}
	if texturePath == "" {
		texturePath, err = mesh.TexturePathFromMaterial(meshPath, m)
		if err != nil {
			return nil, err
		}
		if texturePath == "" {
			return nil, fmt.Errorf("%w for %s", ErrNoTexture, meshPath)
		}
	}

	var tex *image.NRGBA
	if opts.Textures != nil {
		tex, err = opts.Textures.Get(texturePath)
	} else {
		tex, err = texture.Load(texturePath)
	}
	if err != nil {
		return nil, err
	}
	return PrepareMesh(m, tex, opts)
}

// PrepareMesh repairs and smooths m, maps its vertices onto the smoothed
// copy and builds both ray casters. When repair cannot make m watertight
// smoothing is skipped and the original geometry stands in for the
// smoothed mesh.
func PrepareMesh(m *mesh.Mesh, tex *image.NRGBA, opts Options) (*Prepared, error) {
	if err := m.RequireUV(); err != nil {
		return nil, err
	}
	if opts.LenPixel < 1 {
		return nil, fmt.Errorf("pipeline: len_pixel must be positive, got %d", opts.LenPixel)
	}
	rep, err := repair.Clean(m, opts.Repair)
	if err != nil {
		return nil, err
	}

	p := &Prepared{Original: m, Texture: tex, Repair: rep, opts: opts}
	switch {
	case !rep.Watertight:
		logger.Warn("mesh repair incomplete, skipping smoothing",
			zap.String("mesh", m.Name),
			zap.Int("nonmanifold_faces", rep.Stats.NonManifoldFaces))
		p.Smoothed = mesh.New(m.Vertices, m.Faces)
	case opts.Iterations > 0:
		verts, err := smooth.Smooth(rep.Mesh, opts.Method, opts.Iterations, opts.Params)
		if err != nil {
			return nil, err
		}
		p.Smoothed = mesh.New(verts, rep.Mesh.Faces)
		p.SmoothingApplied = true
	default:
		p.Smoothed = rep.Mesh
	}
	p.Smoothed.Name = m.Name + "-smoothed"
	if len(p.Smoothed.VertexNormals) == 0 {
		p.Smoothed.ComputeFaceNormals()
		p.Smoothed.ComputeVertexNormals()
	}

	p.Correspondence, err = correspond.Build(m.Vertices, p.Smoothed.Vertices)
	if err != nil {
		return nil, err
	}
	p.SmoothedFaceNormals = correspond.SmoothedFaceNormals(m.Faces, p.Smoothed.Vertices, p.Correspondence)

	p.Extractor, err = extract.New(m, p.Smoothed, tex, opts.Filter)
	if err != nil {
		return nil, err
	}

	diag := m.Diagonal()
	p.Extent = opts.Extent
	if p.Extent <= 0 {
		p.Extent = opts.ExtentRatio * diag
	}
	p.Offset = opts.OffsetRatio * diag
	if p.Extent <= 0 || p.Offset <= 0 {
		return nil, fmt.Errorf("pipeline: %s: degenerate patch size (extent %g, offset %g)", m.Name, p.Extent, p.Offset)
	}

	logger.Info("prepared mesh",
		zap.String("mesh", m.Name),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("faces", len(m.Faces)),
		zap.Bool("watertight", rep.Watertight),
		zap.Bool("smoothed", p.SmoothingApplied),
		zap.Float64("extent", p.Extent))
	return p, nil
}
