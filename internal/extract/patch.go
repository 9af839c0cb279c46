// Package extract casts a patch grid against the original and smoothed
// meshes and scatters the hits into flat per-pixel buffers.
package extract

import (
	"image"
	"math"

	"mesh-patch-sampler/internal/mathutil"
)

// Patch holds one sample's raw buffers, row-major, Side×Side pixels.
// Unhit pixels are zero in every buffer and 0 in the masks; hit pixels
// have mask 255.
type Patch struct {
	Side      int
	Color     []uint8   // RGB interleaved, len = Side*Side*3
	ColorMask []uint8   // len = Side*Side
	Depth     []float64 // signed distance from the sampling plane
	Normal    []uint8   // RGB-encoded unit normals
	GeomMask  []uint8

	ColorHits int
	GeomHits  int
}

// NewPatch allocates a zeroed patch.
func NewPatch(side int) *Patch {
	n := side * side
	return &Patch{
		Side:      side,
		Color:     make([]uint8, n*3),
		ColorMask: make([]uint8, n),
		Depth:     make([]float64, n),
		Normal:    make([]uint8, n*3),
		GeomMask:  make([]uint8, n),
	}
}

// Pixels returns Side*Side.
func (p *Patch) Pixels() int { return p.Side * p.Side }

// EncodeNormal maps each component from [-1, 1] to [0, 255].
func EncodeNormal(n mathutil.Vec3) [3]uint8 {
	var out [3]uint8
	for i := 0; i < 3; i++ {
		v := math.Round((n[i] + 1) / 2 * 255)
		out[i] = uint8(math.Max(0, math.Min(255, v)))
	}
	return out
}

// DecodeNormal is the inverse of EncodeNormal up to quantisation.
func DecodeNormal(c [3]uint8) mathutil.Vec3 {
	return mathutil.Vec3{
		float64(c[0])/255*2 - 1,
		float64(c[1])/255*2 - 1,
		float64(c[2])/255*2 - 1,
	}
}

// RGBImage wraps an interleaved RGB buffer as an opaque NRGBA image.
func RGBImage(pix []uint8, side int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, side, side))
	for i, j := 0, 0; i < side*side; i, j = i+1, j+4 {
		img.Pix[j] = pix[i*3]
		img.Pix[j+1] = pix[i*3+1]
		img.Pix[j+2] = pix[i*3+2]
		img.Pix[j+3] = 255
	}
	return img
}

// GrayImage wraps a single-channel buffer as an image.Gray.
func GrayImage(pix []uint8, side int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, side, side))
	copy(img.Pix, pix)
	return img
}
