// Package postprocess turns raw patch buffers into export-ready 8-bit
// images: depth normalisation, hole filling and resizing.
package postprocess

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// MinDepthRange floors the depth span so flat patches do not blow up.
const MinDepthRange = 1.0

// NormalizeDepth maps hit depths to [0, 255] relative to the hit minimum.
// It returns the span used, floored to MinDepthRange, or 0 when nothing
// was hit. Unhit pixels stay 0.
func NormalizeDepth(depth []float64, mask []uint8) ([]uint8, float64) {
	out := make([]uint8, len(depth))
	hit := make([]float64, 0, len(depth))
	for i, m := range mask {
		if m != 0 {
			hit = append(hit, depth[i])
		}
	}
	if len(hit) == 0 {
		// raw depth is all zero here, cast as-is
		for i, d := range depth {
			out[i] = clamp8(d)
		}
		return out, 0.0
	}

	dmin := floats.Min(hit)
	drange := math.Max(floats.Max(hit)-dmin, MinDepthRange)
	for i, m := range mask {
		if m == 0 {
			continue
		}
		out[i] = clamp8(math.Round((depth[i] - dmin) / drange * 255))
	}
	return out, drange
}
