package extract

import (
	"fmt"
	"image"

	"go.uber.org/zap"

	"mesh-patch-sampler/internal/grid"
	"mesh-patch-sampler/internal/logger"
	"mesh-patch-sampler/internal/mathutil"
	"mesh-patch-sampler/internal/mesh"
	"mesh-patch-sampler/internal/raycast"
	"mesh-patch-sampler/internal/texture"
)

// NormalEpsilon guards renormalisation of interpolated vertex normals.
const NormalEpsilon = 1e-12

// Extractor samples patches from a textured original mesh (colour) and a
// smoothed mesh (depth and normals). It only reads its inputs and may be
// shared by concurrent callers.
type Extractor struct {
	Original       *mesh.Mesh
	Smoothed       *mesh.Mesh
	OriginalCaster *raycast.Caster
	SmoothedCaster *raycast.Caster
	Texture        *image.NRGBA
	Filter         texture.Filter
}

// New checks the inputs and builds both ray casters. The original mesh
// must carry UVs and the smoothed mesh vertex normals.
func New(original, smoothed *mesh.Mesh, tex *image.NRGBA, filter texture.Filter) (*Extractor, error) {
	if err := original.RequireUV(); err != nil {
		return nil, err
	}
	if err := smoothed.RequireVertexNormals(); err != nil {
		return nil, err
	}
	if tex == nil || tex.Rect.Empty() {
		return nil, fmt.Errorf("extract: empty texture")
	}
	e := &Extractor{
		Original:       original,
		Smoothed:       smoothed,
		OriginalCaster: raycast.NewCaster(original),
		SmoothedCaster: raycast.NewCaster(smoothed),
		Texture:        tex,
		Filter:         filter,
	}
	if n := e.OriginalCaster.Skipped() + e.SmoothedCaster.Skipped(); n > 0 {
		logger.Debug("zero-area faces left out of ray casting", zap.Int("count", n))
	}
	return e, nil
}

// Extract runs the colour pass and the geometry pass for one grid.
// Missing every face is not an error; the patch is simply empty.
func (e *Extractor) Extract(g grid.Grid) (*Patch, error) {
	if err := e.Original.RequireUV(); err != nil {
		return nil, err
	}
	if err := e.Smoothed.RequireVertexNormals(); err != nil {
		return nil, err
	}
	rays := g.Rays()
	p := NewPatch(g.Side)
	e.ColorPass(rays, p)
	e.GeometryPass(rays, p)
	return p, nil
}

// ColorPass casts rays against the original mesh and writes the texture
// colour at each hit's interpolated UV.
func (e *Extractor) ColorPass(rays grid.RayBatch, p *Patch) {
	hits := e.OriginalCaster.Cast(rays.Origins, rays.Direction)
	m := e.Original
	for k, ri := range hits.RayIndex {
		f := m.Faces[hits.FaceIndex[k]]
		a, b, c := m.Triangle(hits.FaceIndex[k])
		wa, wb, wc := mathutil.Barycentric(hits.Locations[k], a, b, c)

		ua, ub, uc := m.UVs[f[0]], m.UVs[f[1]], m.UVs[f[2]]
		u := wa*ua[0] + wb*ub[0] + wc*uc[0]
		v := wa*ua[1] + wb*ub[1] + wc*uc[1]
		col := e.Filter.Sample(e.Texture, u, v)

		pi := rays.Index[ri]
		p.Color[pi*3] = col.R
		p.Color[pi*3+1] = col.G
		p.Color[pi*3+2] = col.B
		p.ColorMask[pi] = 255
	}
	p.ColorHits = hits.Len()
}

// GeometryPass casts rays against the smoothed mesh and writes the depth
// below the sampling plane and the encoded interpolated vertex normal.
func (e *Extractor) GeometryPass(rays grid.RayBatch, p *Patch) {
	hits := e.SmoothedCaster.Cast(rays.Origins, rays.Direction)
	m := e.Smoothed
	view := rays.Direction.Scale(-1)
	for k, ri := range hits.RayIndex {
		f := m.Faces[hits.FaceIndex[k]]
		a, b, c := m.Triangle(hits.FaceIndex[k])
		loc := hits.Locations[k]
		wa, wb, wc := mathutil.Barycentric(loc, a, b, c)

		n := mathutil.Weighted(m.VertexNormals[f[0]], m.VertexNormals[f[1]], m.VertexNormals[f[2]], wa, wb, wc)
		enc := EncodeNormal(n.NormalizeEps(NormalEpsilon))

		pi := rays.Index[ri]
		p.Depth[pi] = rays.Origins[ri].Sub(loc).Dot(view)
		p.Normal[pi*3] = enc[0]
		p.Normal[pi*3+1] = enc[1]
		p.Normal[pi*3+2] = enc[2]
		p.GeomMask[pi] = 255
	}
	p.GeomHits = hits.Len()
}
