package batch

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"mesh-patch-sampler/internal/config"
	"mesh-patch-sampler/internal/extract"
	"mesh-patch-sampler/internal/logger"
	"mesh-patch-sampler/internal/pipeline"
	"mesh-patch-sampler/internal/postprocess"
	"mesh-patch-sampler/internal/texture"
)

// Config holds all shared resources for a batch run.
type Config struct {
	OutputDir  string
	Format     string // webp or png
	ExportSize int    // 0 keeps the native patch size
	Workers    int
	Options    pipeline.Options
	Textures   *texture.Cache
}

// Result holds the outcome of processing one mesh.
type Result struct {
	Name    string
	Mesh    string
	Texture string
	Samples []SampleRecord
	Success bool
	Error   string
}

// SampleRecord describes one written sample.
type SampleRecord struct {
	Index    int        `json:"index"`
	Dir      string     `json:"dir"`
	Position [3]float64 `json:"position"`
	Normal   [3]float64 `json:"normal"`
	Face     int        `json:"face"`
	DRange   float64    `json:"d_range"`
	Hits     int        `json:"hits"`
	GeomHits int        `json:"geom_hits"`
}

// Run processes all jobs using a worker pool. Failed jobs are reported in
// their Result and do not stop the others.
func Run(cfg Config, jobs []config.Job) []Result {
	total := len(jobs)
	results := make([]Result, total)
	var processed atomic.Int64

	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Textures == nil {
		cfg.Textures = texture.NewCache()
	}
	cfg.Options.Textures = cfg.Textures
	// parallelism is across meshes
	cfg.Options.Workers = 1

	start := time.Now()

	// Progress reporter
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p := processed.Load()
				if p > 0 {
					elapsed := time.Since(start).Seconds()
					logger.Info("progress",
						zap.Int64("done", p),
						zap.Int("total", total),
						zap.Float64("meshes_per_sec", float64(p)/elapsed))
				}
			}
		}
	}()

	// Worker pool
	jobChan := make(chan int, cfg.Workers*2)
	var wg sync.WaitGroup

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobChan {
				results[idx] = processJob(cfg, jobs[idx])
				processed.Add(1)
			}
		}()
	}

	// Send work
	for i := range jobs {
		jobChan <- i
	}
	close(jobChan)

	wg.Wait()
	close(done)

	return results
}

func processJob(cfg Config, job config.Job) Result {
	res := Result{Name: job.Name, Mesh: job.Mesh, Texture: job.Texture}
	fail := func(err error) Result {
		logger.Warn("mesh failed", zap.String("mesh", job.Mesh), zap.Error(err))
		res.Error = err.Error()
		return res
	}

	p, err := pipeline.Prepare(job.Mesh, job.Texture, cfg.Options)
	if err != nil {
		return fail(err)
	}
	samples, errs := p.Run()
	if errs != nil {
		// partial success: keep the samples that worked
		logger.Warn("some samples failed", zap.String("mesh", job.Mesh), zap.Error(errs))
	}

	for _, s := range samples {
		if s == nil {
			continue
		}
		dir := filepath.Join(cfg.OutputDir, job.Name, fmt.Sprintf("%03d", s.Index))
		if err := WriteSample(dir, s, cfg.Format, cfg.ExportSize); err != nil {
			logger.Warn("sample write failed", zap.String("dir", dir), zap.Error(err))
			errs = multierr.Append(errs, err)
			continue
		}
		rel, _ := filepath.Rel(cfg.OutputDir, dir)
		res.Samples = append(res.Samples, SampleRecord{
			Index:    s.Index,
			Dir:      filepath.ToSlash(rel),
			Position: s.Point.Position,
			Normal:   s.Frame.Normal,
			Face:     s.Point.Face,
			DRange:   s.DRange,
			Hits:     s.Hits,
			GeomHits: s.GeomHits,
		})
	}
	if errs != nil {
		res.Error = errs.Error()
	}
	res.Success = len(res.Samples) > 0
	return res
}

// ImageNames lists the files WriteSample produces, without extension.
var ImageNames = []string{
	"color", "mask", "color_inpaint",
	"depth", "depth_inpaint",
	"normal", "normal_inpaint",
}

// WriteSample writes the seven patch images of s into dir.
func WriteSample(dir string, s *pipeline.Sample, format string, size int) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	side := s.Side
	rgb := func(pix []uint8) image.Image {
		return postprocess.Resize(extract.RGBImage(pix, side), size)
	}
	gray := func(pix []uint8, nearest bool) image.Image {
		return postprocess.ResizeGray(extract.GrayImage(pix, side), size, nearest)
	}
	images := map[string]image.Image{
		"color":          rgb(s.Color),
		"mask":           gray(s.Mask, true),
		"color_inpaint":  rgb(s.ColorInpaint),
		"depth":          gray(s.Depth, false),
		"depth_inpaint":  gray(s.DepthInpaint, false),
		"normal":         rgb(s.Normal),
		"normal_inpaint": rgb(s.NormalInpaint),
	}
	for _, name := range ImageNames {
		if err := writeImage(filepath.Join(dir, name+"."+format), images[name], format); err != nil {
			return err
		}
	}
	return nil
}

func writeImage(path string, img image.Image, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(format) {
	case "png":
		err = png.Encode(f, img)
	case "webp":
		err = nativewebp.Encode(f, texture.ToNRGBA(img), nil)
	default:
		return fmt.Errorf("batch: unknown image format %q", format)
	}
	if err != nil {
		return fmt.Errorf("batch: encode %s: %w", path, err)
	}
	return f.Close()
}
