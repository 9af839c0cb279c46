package postprocess

import (
	"container/heap"
	"fmt"
	"math"
)

// DefaultInpaintRadius is the neighbourhood radius in pixels.
const DefaultInpaintRadius = 3

// pixel states of the fast marching front
const (
	known uint8 = iota
	band
	inside
)

// farTime is the arrival time of pixels the front has not reached.
const farTime = 1e6

type frontItem struct {
	t   float64
	idx int
}

type front []frontItem

func (f front) Len() int { return len(f) }
func (f front) Less(i, j int) bool {
	return f[i].t < f[j].t || (f[i].t == f[j].t && f[i].idx < f[j].idx)
}
func (f front) Swap(i, j int)       { f[i], f[j] = f[j], f[i] }
func (f *front) Push(x interface{}) { *f = append(*f, x.(frontItem)) }
func (f *front) Pop() interface{} {
	old := *f
	it := old[len(old)-1]
	*f = old[:len(old)-1]
	return it
}

// inpainter carries the state of one fast-marching fill.
type inpainter struct {
	w, h, ch int
	radius   int
	pix      []uint8
	flag     []uint8
	t        []float64
}

// Inpaint fills the pixels whose mask is 0 by marching inward from the
// known region, each hole pixel taking a distance- and direction-weighted
// average of filled neighbours within radius. pix is interleaved with
// ch channels; mask has one entry per pixel. The input is not modified.
// With no holes or no known pixels the result equals the input.
func Inpaint(pix []uint8, w, h, ch int, mask []uint8, radius int) ([]uint8, error) {
	if len(pix) != w*h*ch || len(mask) != w*h {
		return nil, fmt.Errorf("postprocess: inpaint buffer size mismatch: %d pixels, %d mask for %dx%dx%d",
			len(pix), len(mask), w, h, ch)
	}
	if radius < 1 {
		radius = 1
	}
	out := append([]uint8(nil), pix...)

	holes, knowns := 0, 0
	for _, m := range mask {
		if m == 0 {
			holes++
		} else {
			knowns++
		}
	}
	if holes == 0 || knowns == 0 {
		return out, nil
	}

	ip := &inpainter{
		w: w, h: h, ch: ch, radius: radius,
		pix:  out,
		flag: make([]uint8, w*h),
		t:    make([]float64, w*h),
	}
	var q front
	for i, m := range mask {
		if m == 0 {
			ip.flag[i] = inside
			ip.t[i] = farTime
		}
	}
	// seed the front with known pixels touching a hole
	for i, m := range mask {
		if m != 0 && ip.touchesHole(i) {
			ip.flag[i] = band
			q = append(q, frontItem{t: 0, idx: i})
		}
	}
	heap.Init(&q)

	for q.Len() > 0 {
		it := heap.Pop(&q).(frontItem)
		if ip.flag[it.idx] == known {
			continue
		}
		ip.flag[it.idx] = known
		x, y := it.idx%w, it.idx/w
		for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || ny < 0 || nx >= w || ny >= h {
				continue
			}
			ni := ny*w + nx
			if ip.flag[ni] != inside {
				continue
			}
			ip.t[ni] = math.Min(
				math.Min(ip.solve(nx-1, ny, nx, ny-1), ip.solve(nx+1, ny, nx, ny-1)),
				math.Min(ip.solve(nx-1, ny, nx, ny+1), ip.solve(nx+1, ny, nx, ny+1)),
			)
			ip.fill(nx, ny)
			ip.flag[ni] = band
			heap.Push(&q, frontItem{t: ip.t[ni], idx: ni})
		}
	}
	return out, nil
}

func (ip *inpainter) touchesHole(i int) bool {
	x, y := i%ip.w, i/ip.w
	return (x > 0 && ip.flag[i-1] == inside) ||
		(x < ip.w-1 && ip.flag[i+1] == inside) ||
		(y > 0 && ip.flag[i-ip.w] == inside) ||
		(y < ip.h-1 && ip.flag[i+ip.w] == inside)
}

func (ip *inpainter) valid(x, y int) bool {
	return x >= 0 && y >= 0 && x < ip.w && y < ip.h
}

// state treats out-of-image pixels as unreached.
func (ip *inpainter) state(x, y int) (uint8, float64) {
	if !ip.valid(x, y) {
		return inside, farTime
	}
	i := y*ip.w + x
	return ip.flag[i], ip.t[i]
}

// solve returns the eikonal arrival time from two orthogonal neighbours.
func (ip *inpainter) solve(x1, y1, x2, y2 int) float64 {
	f1, a1 := ip.state(x1, y1)
	f2, a2 := ip.state(x2, y2)
	switch {
	case f1 != inside && f2 != inside:
		if math.Abs(a1-a2) >= 1 {
			return 1 + math.Min(a1, a2)
		}
		d := a1 - a2
		return (a1 + a2 + math.Sqrt(2-d*d)) * 0.5
	case f1 != inside:
		return 1 + a1
	case f2 != inside:
		return 1 + a2
	}
	return farTime
}

// gradT is the arrival-time gradient at (x, y) from reached neighbours.
func (ip *inpainter) gradT(x, y int) (gx, gy float64) {
	t := ip.t[y*ip.w+x]
	fr, tr := ip.state(x+1, y)
	fl, tl := ip.state(x-1, y)
	switch {
	case fr != inside && fl != inside:
		gx = (tr - tl) * 0.5
	case fr != inside:
		gx = tr - t
	case fl != inside:
		gx = t - tl
	}
	fd, td := ip.state(x, y+1)
	fu, tu := ip.state(x, y-1)
	switch {
	case fd != inside && fu != inside:
		gy = (td - tu) * 0.5
	case fd != inside:
		gy = td - t
	case fu != inside:
		gy = t - tu
	}
	return gx, gy
}

// fill sets pixel (x, y) from the reached pixels within radius.
func (ip *inpainter) fill(x, y int) {
	gx, gy := ip.gradT(x, y)
	ti := ip.t[y*ip.w+x]
	r2 := ip.radius * ip.radius

	acc := make([]float64, ip.ch)
	var wsum float64

	for ky := y - ip.radius; ky <= y+ip.radius; ky++ {
		for kx := x - ip.radius; kx <= x+ip.radius; kx++ {
			if !ip.valid(kx, ky) || (kx == x && ky == y) {
				continue
			}
			k := ky*ip.w + kx
			if ip.flag[k] == inside {
				continue
			}
			rx, ry := float64(x-kx), float64(y-ky)
			lenSq := rx*rx + ry*ry
			if lenSq > float64(r2) {
				continue
			}
			dst := 1 / (lenSq * math.Sqrt(lenSq))
			lev := 1 / (1 + math.Abs(ip.t[k]-ti))
			dir := rx*gx + ry*gy
			if math.Abs(dir) <= 0.01 {
				dir = 1e-6
			}
			w := math.Abs(dst * lev * dir)
			base := k * ip.ch
			for c := range acc {
				acc[c] += w * float64(ip.pix[base+c])
			}
			wsum += w
		}
	}
	if wsum == 0 {
		return
	}
	base := (y*ip.w + x) * ip.ch
	for c := range acc {
		ip.pix[base+c] = clamp8(acc[c] / wsum)
	}
}
