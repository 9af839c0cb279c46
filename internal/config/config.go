package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidMethod is returned for smoothing methods other than taubin/laplacian.
	ErrInvalidMethod = errors.New("config: invalid smoothing method")
	// ErrInvalidValue is returned for out-of-range numeric settings.
	ErrInvalidValue = errors.New("config: invalid value")
)

// Config holds all configurable paths and extraction settings.
type Config struct {
	// Paths
	Mesh      string `yaml:"mesh"`
	Texture   string `yaml:"texture"`
	OutputDir string `yaml:"output_dir"`
	Manifest  []Job  `yaml:"manifest"`

	// Extraction settings
	LenPixel  int             `yaml:"len_pixel"`
	Smoothing SmoothingConfig `yaml:"smoothing"`
	Repair    RepairConfig    `yaml:"repair"`
	Sampling  SamplingConfig  `yaml:"sampling"`
	Patch     PatchConfig     `yaml:"patch"`
	Inpaint   InpaintConfig   `yaml:"inpaint"`
	Filter    TextureConfig   `yaml:"texture_filter"`
	Export    ExportConfig    `yaml:"export"`
	Workers   int             `yaml:"workers"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// Job is one mesh/texture pair of a batch. An empty Texture is looked up
// through the mesh's material library.
type Job struct {
	Name    string `yaml:"name"`
	Mesh    string `yaml:"mesh"`
	Texture string `yaml:"texture"`
}

type SmoothingConfig struct {
	Method     string  `yaml:"method"`
	Iterations int     `yaml:"iterations"`
	Lambda     float64 `yaml:"lambda"`
	Mu         float64 `yaml:"mu"`
}

type RepairConfig struct {
	WeldTolerance float64 `yaml:"weld_tolerance"`
	AreaTolerance float64 `yaml:"area_tolerance"`
}

type SamplingConfig struct {
	Policy string `yaml:"policy"`
	Count  int    `yaml:"count"`
	Seed   int64  `yaml:"seed"`
}

// PatchConfig sizes the sampling disk. Ratios are of the bounding box
// diagonal; a positive Extent overrides ExtentRatio.
type PatchConfig struct {
	ExtentRatio float64 `yaml:"extent_ratio"`
	Extent      float64 `yaml:"extent"`
	OffsetRatio float64 `yaml:"offset_ratio"`
}

type InpaintConfig struct {
	Radius int `yaml:"radius"`
}

type TextureConfig struct {
	Filter string `yaml:"filter"`
}

// ExportConfig controls written images. Size 0 keeps the native 2*len_pixel.
type ExportConfig struct {
	Size   int    `yaml:"size"`
	Format string `yaml:"format"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		OutputDir: "patches",
		LenPixel:  32,
		Smoothing: SmoothingConfig{Method: "taubin", Iterations: 10, Lambda: 0.5, Mu: -0.53},
		Repair:    RepairConfig{WeldTolerance: 1e-8, AreaTolerance: 1e-14},
		Sampling:  SamplingConfig{Policy: "random", Count: 1},
		Patch:     PatchConfig{ExtentRatio: 0.05, OffsetRatio: 1.0},
		Inpaint:   InpaintConfig{Radius: 3},
		Filter:    TextureConfig{Filter: "nearest"},
		Export:    ExportConfig{Format: "webp"},
		Logging:   LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML config file over Default. Fields not set in the file
// keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	// relative paths in the file are relative to the file
	base := filepath.Dir(path)
	cfg.Mesh = resolvePath(base, cfg.Mesh)
	cfg.Texture = resolvePath(base, cfg.Texture)
	for i := range cfg.Manifest {
		cfg.Manifest[i].Mesh = resolvePath(base, cfg.Manifest[i].Mesh)
		cfg.Manifest[i].Texture = resolvePath(base, cfg.Manifest[i].Texture)
	}
	return cfg, nil
}

// SaveTo writes the config as YAML, creating the parent directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Mesh       string
	Texture    string
	OutputDir  string
	LenPixel   int
	Method     string
	Iterations int // negative means unset; 0 disables smoothing
	Samples    int
	Workers    int
	Debug      bool
}

// Resolve applies flags over the config and fills derived defaults.
// CLI flags take priority when set.
func (c *Config) Resolve(flags Flags) {
	if flags.Mesh != "" {
		c.Mesh = flags.Mesh
	}
	if flags.Texture != "" {
		c.Texture = flags.Texture
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.LenPixel > 0 {
		c.LenPixel = flags.LenPixel
	}
	if flags.Method != "" {
		c.Smoothing.Method = flags.Method
	}
	if flags.Iterations >= 0 {
		c.Smoothing.Iterations = flags.Iterations
	}
	if flags.Samples > 0 {
		c.Sampling.Count = flags.Samples
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Debug {
		c.Logging.Level = "debug"
	}

	c.Smoothing.Method = strings.ToLower(c.Smoothing.Method)
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Sampling.Count <= 0 {
		c.Sampling.Count = 1
	}
	if c.Export.Format == "" {
		c.Export.Format = "webp"
	}

	// a single mesh becomes a one-job manifest
	if c.Mesh != "" && len(c.Manifest) == 0 {
		name := strings.TrimSuffix(filepath.Base(c.Mesh), filepath.Ext(c.Mesh))
		c.Manifest = []Job{{Name: name, Mesh: c.Mesh, Texture: c.Texture}}
	}
	for i := range c.Manifest {
		if c.Manifest[i].Name == "" {
			m := c.Manifest[i].Mesh
			c.Manifest[i].Name = strings.TrimSuffix(filepath.Base(m), filepath.Ext(m))
		}
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Smoothing.Method {
	case "taubin", "laplacian":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMethod, c.Smoothing.Method)
	}
	if c.LenPixel < 1 {
		return fmt.Errorf("%w: len_pixel %d", ErrInvalidValue, c.LenPixel)
	}
	if c.Smoothing.Iterations < 0 {
		return fmt.Errorf("%w: smoothing.iterations %d", ErrInvalidValue, c.Smoothing.Iterations)
	}
	if c.Inpaint.Radius < 1 {
		return fmt.Errorf("%w: inpaint.radius %d", ErrInvalidValue, c.Inpaint.Radius)
	}
	if c.Patch.Extent <= 0 && c.Patch.ExtentRatio <= 0 {
		return fmt.Errorf("%w: patch extent must be positive", ErrInvalidValue)
	}
	if c.Patch.OffsetRatio <= 0 {
		return fmt.Errorf("%w: patch.offset_ratio %g", ErrInvalidValue, c.Patch.OffsetRatio)
	}
	switch c.Sampling.Policy {
	case "random", "center":
	default:
		return fmt.Errorf("%w: sampling.policy %q", ErrInvalidValue, c.Sampling.Policy)
	}
	switch c.Filter.Filter {
	case "", "nearest", "bilinear":
	default:
		return fmt.Errorf("%w: texture_filter.filter %q", ErrInvalidValue, c.Filter.Filter)
	}
	switch c.Export.Format {
	case "webp", "png":
	default:
		return fmt.Errorf("%w: export.format %q", ErrInvalidValue, c.Export.Format)
	}
	if c.Export.Size < 0 {
		return fmt.Errorf("%w: export.size %d", ErrInvalidValue, c.Export.Size)
	}
	if len(c.Manifest) == 0 {
		return fmt.Errorf("%w: no mesh given", ErrInvalidValue)
	}
	return nil
}
