// Package raycast answers closest-hit ray queries against a triangle mesh
// using a bounding volume hierarchy.
package raycast

import (
	"github.com/unixpickle/model3d/model3d"

	"mesh-patch-sampler/internal/mathutil"
	"mesh-patch-sampler/internal/mesh"
)

// HitSet holds parallel arrays for the rays that hit. RayIndex points into
// the input origins; rays that miss are absent.
type HitSet struct {
	Locations   []mathutil.Vec3
	RayIndex    []int
	FaceIndex   []int
	Barycentric [][3]float64
}

// Len returns the number of hits.
func (h HitSet) Len() int { return len(h.RayIndex) }

// Caster is safe for concurrent use once built.
type Caster struct {
	collider model3d.Collider
	faces    map[*model3d.Triangle]int
	skipped  int
}

func toCoord(v mathutil.Vec3) model3d.Coord3D {
	return model3d.Coord3D{X: v[0], Y: v[1], Z: v[2]}
}

func fromCoord(c model3d.Coord3D) mathutil.Vec3 {
	return mathutil.Vec3{c.X, c.Y, c.Z}
}

// NewCaster builds the hierarchy over m's faces. Zero-area faces can never
// be hit and are left out.
func NewCaster(m *mesh.Mesh) *Caster {
	c := &Caster{faces: make(map[*model3d.Triangle]int, len(m.Faces))}
	tm := model3d.NewMesh()
	for i := range m.Faces {
		if m.FaceArea(i) == 0 {
			c.skipped++
			continue
		}
		a, b, cc := m.Triangle(i)
		t := &model3d.Triangle{toCoord(a), toCoord(b), toCoord(cc)}
		tm.Add(t)
		c.faces[t] = i
	}
	c.collider = model3d.MeshToCollider(tm)
	return c
}

// Skipped returns how many faces were left out of the hierarchy.
func (c *Caster) Skipped() int { return c.skipped }

// First returns the closest hit along origin + t*dir for t >= 0.
func (c *Caster) First(origin, dir mathutil.Vec3) (loc mathutil.Vec3, face int, bary [3]float64, ok bool) {
	ray := &model3d.Ray{Origin: toCoord(origin), Direction: toCoord(dir)}
	coll, hit := c.collider.FirstRayCollision(ray)
	if !hit {
		return loc, -1, bary, false
	}
	tc, isTri := coll.Extra.(*model3d.TriangleCollision)
	if !isTri {
		return loc, -1, bary, false
	}
	idx, known := c.faces[tc.Triangle]
	if !known {
		return loc, -1, bary, false
	}
	loc = fromCoord(ray.Origin.Add(ray.Direction.Scale(coll.Scale)))
	return loc, idx, tc.Barycentric, true
}

// Cast shoots one ray per origin along the shared direction and keeps the
// closest hit of each.
func (c *Caster) Cast(origins []mathutil.Vec3, dir mathutil.Vec3) HitSet {
	var hs HitSet
	for i, o := range origins {
		loc, face, bary, ok := c.First(o, dir)
		if !ok {
			continue
		}
		hs.Locations = append(hs.Locations, loc)
		hs.RayIndex = append(hs.RayIndex, i)
		hs.FaceIndex = append(hs.FaceIndex, face)
		hs.Barycentric = append(hs.Barycentric, bary)
	}
	return hs
}
