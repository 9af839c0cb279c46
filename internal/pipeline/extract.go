package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"mesh-patch-sampler/internal/correspond"
	"mesh-patch-sampler/internal/grid"
	"mesh-patch-sampler/internal/logger"
	"mesh-patch-sampler/internal/mathutil"
	"mesh-patch-sampler/internal/postprocess"
	"mesh-patch-sampler/internal/sampler"
	"mesh-patch-sampler/internal/smooth"
)

// ErrZeroNormal is returned when a sample has no usable normal.
var ErrZeroNormal = errors.New("pipeline: zero sample normal")

// FaceNormal is the sampling normal for a point on original face f: the
// smoothed face normal, or the original one when that collapsed.
func (p *Prepared) FaceNormal(f int) mathutil.Vec3 {
	if f >= 0 && f < len(p.SmoothedFaceNormals) {
		if n := p.SmoothedFaceNormals[f]; n.Len() > correspond.NormalEpsilon {
			return n.Normalize()
		}
		return p.Original.FaceNormals[f]
	}
	return mathutil.Vec3{}
}

// ExtractAt samples one patch looking down normal at point.
func (p *Prepared) ExtractAt(point, normal mathutil.Vec3) (*Sample, error) {
	if normal.Len() <= correspond.NormalEpsilon {
		return nil, ErrZeroNormal
	}
	frame := grid.NewFrame(point, normal, p.Extent, p.Offset)
	g, err := grid.NewGrid(frame, p.opts.LenPixel)
	if err != nil {
		return nil, err
	}
	patch, err := p.Extractor.Extract(g)
	if err != nil {
		return nil, err
	}
	logger.Debug("patch passes",
		zap.String("mesh", p.Original.Name),
		zap.Int("rays", g.Valid),
		zap.Int("color_hits", patch.ColorHits),
		zap.Int("geom_hits", patch.GeomHits))

	res, err := postprocess.Finalize(patch, p.opts.InpaintRadius)
	if err != nil {
		return nil, err
	}
	return &Sample{
		Point:    sampler.Point{Position: point, Normal: frame.Normal, Face: -1},
		Frame:    frame,
		Hits:     patch.ColorHits,
		GeomHits: patch.GeomHits,
		Result:   res,
	}, nil
}

// ExtractPoint samples at a selected surface point, using FaceNormal when
// the point knows its face.
func (p *Prepared) ExtractPoint(pt sampler.Point) (*Sample, error) {
	n := pt.Normal
	if pt.Face >= 0 {
		if fn := p.FaceNormal(pt.Face); fn.Len() > correspond.NormalEpsilon {
			n = fn
		}
	}
	s, err := p.ExtractAt(pt.Position, n)
	if err != nil {
		return nil, err
	}
	s.Point = pt
	return s, nil
}

// ExtractPoints runs ExtractPoint over points with up to workers
// goroutines. Failed samples are nil in the result and their errors are
// combined; the others still complete.
func (p *Prepared) ExtractPoints(points []sampler.Point, workers int) ([]*Sample, error) {
	if workers < 1 {
		workers = 1
	}
	out := make([]*Sample, len(points))
	errs := make([]error, len(points))

	jobs := make(chan int, len(points))
	for i := range points {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				s, err := p.ExtractPoint(points[i])
				if err != nil {
					logger.Warn("sample failed",
						zap.String("mesh", p.Original.Name),
						zap.Int("sample", i),
						zap.Error(err))
					errs[i] = fmt.Errorf("sample %d: %w", i, err)
					continue
				}
				s.Index = i
				out[i] = s
			}
		}()
	}
	wg.Wait()

	var combined error
	for _, err := range errs {
		combined = multierr.Append(combined, err)
	}
	return out, combined
}

// SelectPoints picks sample points on the original mesh per the options.
func (p *Prepared) SelectPoints() ([]sampler.Point, error) {
	return sampler.Select(p.Original, p.opts.Policy, p.opts.Samples, p.opts.Seed)
}

// Run selects points and extracts every sample.
func (p *Prepared) Run() ([]*Sample, error) {
	points, err := p.SelectPoints()
	if err != nil {
		return nil, err
	}
	return p.ExtractPoints(points, p.opts.Workers)
}

// Extract is the single-call entry point: load the mesh and texture,
// prepare once with the given resolution and smoothing, and extract one
// randomly placed sample.
func Extract(meshPath, texturePath string, lenPixel int, method smooth.Method, iterations int) ([]*Sample, error) {
	opts := DefaultOptions()
	opts.LenPixel = lenPixel
	opts.Method = method
	opts.Iterations = iterations
	p, err := Prepare(meshPath, texturePath, opts)
	if err != nil {
		return nil, err
	}
	return p.Run()
}
