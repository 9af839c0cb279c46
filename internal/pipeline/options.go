package pipeline

import (
	"mesh-patch-sampler/internal/config"
	"mesh-patch-sampler/internal/postprocess"
	"mesh-patch-sampler/internal/repair"
	"mesh-patch-sampler/internal/sampler"
	"mesh-patch-sampler/internal/smooth"
	"mesh-patch-sampler/internal/texture"
)

// Options are the per-mesh extraction settings.
type Options struct {
	LenPixel      int
	Method        smooth.Method
	Iterations    int
	Params        smooth.Params
	Repair        repair.Options
	ExtentRatio   float64 // of the bounding box diagonal
	Extent        float64 // absolute half-width, overrides ExtentRatio when > 0
	OffsetRatio   float64 // plane height above the sample, of the diagonal
	InpaintRadius int
	Filter        texture.Filter
	Policy        sampler.Policy
	Samples       int
	Seed          int64
	Workers       int

	// Textures, when set, is shared between meshes using the same image.
	Textures *texture.Cache
}

// DefaultOptions mirrors config.Default.
func DefaultOptions() Options {
	return Options{
		LenPixel:      32,
		Method:        smooth.Taubin,
		Iterations:    10,
		Params:        smooth.DefaultParams(),
		Repair:        repair.DefaultOptions(),
		ExtentRatio:   0.05,
		OffsetRatio:   1.0,
		InpaintRadius: postprocess.DefaultInpaintRadius,
		Filter:        texture.Nearest,
		Policy:        sampler.PolicyRandom,
		Samples:       1,
		Workers:       1,
	}
}

// OptionsFromConfig converts a validated config.
func OptionsFromConfig(cfg config.Config) (Options, error) {
	method, err := smooth.ParseMethod(cfg.Smoothing.Method)
	if err != nil {
		return Options{}, err
	}
	filter, err := texture.ParseFilter(cfg.Filter.Filter)
	if err != nil {
		return Options{}, err
	}
	return Options{
		LenPixel:      cfg.LenPixel,
		Method:        method,
		Iterations:    cfg.Smoothing.Iterations,
		Params:        smooth.Params{Lambda: cfg.Smoothing.Lambda, Mu: cfg.Smoothing.Mu},
		Repair:        repair.Options{WeldTolerance: cfg.Repair.WeldTolerance, AreaTolerance: cfg.Repair.AreaTolerance},
		ExtentRatio:   cfg.Patch.ExtentRatio,
		Extent:        cfg.Patch.Extent,
		OffsetRatio:   cfg.Patch.OffsetRatio,
		InpaintRadius: cfg.Inpaint.Radius,
		Filter:        filter,
		Policy:        sampler.Policy(cfg.Sampling.Policy),
		Samples:       cfg.Sampling.Count,
		Seed:          cfg.Sampling.Seed,
		Workers:       cfg.Workers,
	}, nil
}
