// Package grid builds the local tangent-plane sampling frame and the
// square ray grid a patch is sampled from.
package grid

import (
	"math"

	"mesh-patch-sampler/internal/mathutil"
)

// parallelThreshold is the |n·Z| above which Z is too close to the normal
// to serve as the reference axis.
const parallelThreshold = 0.9

// Frame is the orthonormal tangent frame at a sample point. Origin sits
// Offset units above Point along Normal; rays leave the plane through
// Origin and travel along -Normal.
type Frame struct {
	Point  mathutil.Vec3
	Normal mathutil.Vec3
	T1     mathutil.Vec3
	T2     mathutil.Vec3
	Origin mathutil.Vec3
	Extent float64 // patch half-width s
	Offset float64
}

// NewFrame builds the frame for a unit normal. The basis is undefined for
// a zero normal.
func NewFrame(point, normal mathutil.Vec3, extent, offset float64) Frame {
	n := normal.Normalize()
	t1, t2 := Basis(n)
	return Frame{
		Point:  point,
		Normal: n,
		T1:     t1,
		T2:     t2,
		Origin: point.Add(n.Scale(offset)),
		Extent: extent,
		Offset: offset,
	}
}

// Basis returns two unit vectors spanning the plane perpendicular to n.
func Basis(n mathutil.Vec3) (t1, t2 mathutil.Vec3) {
	ref := mathutil.AxisZ
	if math.Abs(n.Dot(ref)) >= parallelThreshold {
		ref = mathutil.AxisY
	}
	t1 = n.Cross(ref).Normalize()
	t2 = n.Cross(t1).Normalize()
	return t1, t2
}

// View returns the world-to-frame rotation with rows T1, T2, Normal.
func (f Frame) View() mathutil.Mat3 {
	return mathutil.Mat3Rows(f.T1, f.T2, f.Normal)
}

// ToLocal expresses a world point in frame coordinates relative to Origin.
// The third component is the height above the sampling plane.
func (f Frame) ToLocal(p mathutil.Vec3) mathutil.Vec3 {
	return f.View().MulVec3(p.Sub(f.Origin))
}

// PlanePoint returns the world position of plane coordinates (x, y).
func (f Frame) PlanePoint(x, y float64) mathutil.Vec3 {
	return f.Origin.Add(f.T1.Scale(x)).Add(f.T2.Scale(y))
}
