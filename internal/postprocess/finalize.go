package postprocess

import (
	"mesh-patch-sampler/internal/extract"
)

// Result is one finished sample: 8-bit images of side Side plus the depth
// span used for normalisation (0 when the geometry pass hit nothing).
type Result struct {
	Side          int
	Color         []uint8 // RGB
	Mask          []uint8 // colour-pass hits
	ColorInpaint  []uint8 // RGB
	GeomMask      []uint8 // geometry-pass hits
	Depth         []uint8
	DepthInpaint  []uint8
	Normal        []uint8 // RGB
	NormalInpaint []uint8 // RGB
	DRange        float64
}

// Finalize normalises depth and inpaints the colour, depth and normal
// buffers against their own pass's mask.
func Finalize(p *extract.Patch, radius int) (*Result, error) {
	s := p.Side
	depth, drange := NormalizeDepth(p.Depth, p.GeomMask)

	colorIn, err := Inpaint(p.Color, s, s, 3, p.ColorMask, radius)
	if err != nil {
		return nil, err
	}
	depthIn, err := Inpaint(depth, s, s, 1, p.GeomMask, radius)
	if err != nil {
		return nil, err
	}
	normalIn, err := Inpaint(p.Normal, s, s, 3, p.GeomMask, radius)
	if err != nil {
		return nil, err
	}

	return &Result{
		Side:          s,
		Color:         p.Color,
		Mask:          p.ColorMask,
		ColorInpaint:  colorIn,
		GeomMask:      p.GeomMask,
		Depth:         depth,
		DepthInpaint:  depthIn,
		Normal:        p.Normal,
		NormalInpaint: normalIn,
		DRange:        drange,
	}, nil
}
