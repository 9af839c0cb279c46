package texture

import (
	"fmt"
	"image"
	"image/color"
	"math"
)

// Filter selects how a UV coordinate is turned into a texel colour.
type Filter int

const (
	Nearest Filter = iota
	Bilinear
)

func (f Filter) String() string {
	switch f {
	case Nearest:
		return "nearest"
	case Bilinear:
		return "bilinear"
	}
	return fmt.Sprintf("Filter(%d)", int(f))
}

// ParseFilter maps a config name to a Filter. The empty string is Nearest.
func ParseFilter(name string) (Filter, error) {
	switch name {
	case "", "nearest":
		return Nearest, nil
	case "bilinear":
		return Bilinear, nil
	}
	return Nearest, fmt.Errorf("texture: unknown filter %q", name)
}

// Sample looks up (u, v) with the given filter.
func (f Filter) Sample(tex *image.NRGBA, u, v float64) color.NRGBA {
	if f == Bilinear {
		return SampleBilinear(tex, u, v)
	}
	return SampleNearest(tex, u, v)
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// PixelCoord returns the texel for (u, v). The v axis is flipped so v=1 is
// row 0, and the result is clamped to the image.
func PixelCoord(w, h int, u, v float64) (x, y int) {
	x = int(math.Round(u * float64(w-1)))
	y = int(math.Round((1 - v) * float64(h-1)))
	return clampInt(x, 0, w-1), clampInt(y, 0, h-1)
}

// SampleNearest returns the texel nearest to (u, v).
func SampleNearest(tex *image.NRGBA, u, v float64) color.NRGBA {
	w, h := tex.Rect.Dx(), tex.Rect.Dy()
	x, y := PixelCoord(w, h, u, v)
	i := y*tex.Stride + x*4
	p := tex.Pix[i : i+4 : i+4]
	return color.NRGBA{R: p[0], G: p[1], B: p[2], A: p[3]}
}

// SampleBilinear blends the four texels around (u, v), with the same v flip
// and edge clamping as SampleNearest.
func SampleBilinear(tex *image.NRGBA, u, v float64) color.NRGBA {
	w := tex.Rect.Dx()
	h := tex.Rect.Dy()

	fx := math.Min(math.Max(u, 0), 1) * float64(w-1)
	fy := math.Min(math.Max(1-v, 0), 1) * float64(h-1)
	x0 := int(fx)
	y0 := int(fy)
	x1 := clampInt(x0+1, 0, w-1)
	y1 := clampInt(y0+1, 0, h-1)
	dx := fx - float64(x0)
	dy := fy - float64(y0)

	stride := tex.Stride
	pix := tex.Pix

	// Four texels
	i00 := y0*stride + x0*4
	i10 := y0*stride + x1*4
	i01 := y1*stride + x0*4
	i11 := y1*stride + x1*4

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	var out [4]uint8
	for c := 0; c < 4; c++ {
		f := float64(pix[i00+c])*w00 + float64(pix[i10+c])*w10 + float64(pix[i01+c])*w01 + float64(pix[i11+c])*w11
		out[c] = uint8(f + 0.5)
	}
	return color.NRGBA{R: out[0], G: out[1], B: out[2], A: out[3]}
}
