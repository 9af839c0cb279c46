package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.LenPixel != 32 {
		t.Errorf("expected len_pixel 32, got %d", cfg.LenPixel)
	}
	if cfg.Smoothing.Method != "taubin" || cfg.Smoothing.Iterations != 10 {
		t.Errorf("unexpected smoothing defaults %+v", cfg.Smoothing)
	}
	if cfg.Patch.ExtentRatio != 0.05 || cfg.Patch.OffsetRatio != 1.0 {
		t.Errorf("unexpected patch defaults %+v", cfg.Patch)
	}
	if cfg.Inpaint.Radius != 3 {
		t.Errorf("expected inpaint radius 3, got %d", cfg.Inpaint.Radius)
	}
}

func TestLoadMergesOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
mesh: models/bunny.obj
len_pixel: 16
smoothing:
  method: laplacian
manifest:
  - mesh: a.obj
    texture: /abs/a.png
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LenPixel != 16 {
		t.Errorf("len_pixel = %d", cfg.LenPixel)
	}
	if cfg.Smoothing.Method != "laplacian" {
		t.Errorf("method = %q", cfg.Smoothing.Method)
	}
	// untouched nested fields keep defaults
	if cfg.Smoothing.Iterations != 10 || cfg.Smoothing.Mu != -0.53 {
		t.Errorf("smoothing defaults lost: %+v", cfg.Smoothing)
	}
	if cfg.Mesh != filepath.Join(dir, "models", "bunny.obj") {
		t.Errorf("mesh path not resolved: %s", cfg.Mesh)
	}
	if cfg.Manifest[0].Mesh != filepath.Join(dir, "a.obj") || cfg.Manifest[0].Texture != "/abs/a.png" {
		t.Errorf("manifest paths: %+v", cfg.Manifest[0])
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("len_pixel: [1, 2"), 0644)
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestResolveFlagsOverride(t *testing.T) {
	cfg := Default()
	cfg.Resolve(Flags{
		Mesh:       "/data/cube.obj",
		LenPixel:   8,
		Method:     "Laplacian",
		Iterations: 0,
		Samples:    4,
		Debug:      true,
	})
	if cfg.LenPixel != 8 || cfg.Smoothing.Method != "laplacian" || cfg.Smoothing.Iterations != 0 {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.Sampling.Count != 4 || cfg.Logging.Level != "debug" {
		t.Errorf("sampling/logging: %+v %+v", cfg.Sampling, cfg.Logging)
	}
	if cfg.Workers != runtime.NumCPU() {
		t.Errorf("workers = %d", cfg.Workers)
	}
	if len(cfg.Manifest) != 1 || cfg.Manifest[0].Name != "cube" {
		t.Errorf("manifest = %+v", cfg.Manifest)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestResolveKeepsIterationsWhenUnset(t *testing.T) {
	cfg := Default()
	cfg.Resolve(Flags{Iterations: -1})
	if cfg.Smoothing.Iterations != 10 {
		t.Errorf("iterations = %d, want default 10", cfg.Smoothing.Iterations)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := Default()
		c.Resolve(Flags{Mesh: "m.obj", Iterations: -1})
		return c
	}

	c := valid()
	c.Smoothing.Method = "bilateral"
	if err := c.Validate(); !errors.Is(err, ErrInvalidMethod) {
		t.Errorf("expected ErrInvalidMethod, got %v", err)
	}

	for name, mutate := range map[string]func(*Config){
		"len_pixel": func(c *Config) { c.LenPixel = 0 },
		"radius":    func(c *Config) { c.Inpaint.Radius = 0 },
		"policy":    func(c *Config) { c.Sampling.Policy = "grid" },
		"filter":    func(c *Config) { c.Filter.Filter = "cubic" },
		"format":    func(c *Config) { c.Export.Format = "gif" },
		"no mesh":   func(c *Config) { c.Manifest = nil },
		"extent":    func(c *Config) { c.Patch.ExtentRatio = 0 },
	} {
		c := valid()
		mutate(&c)
		if err := c.Validate(); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("%s: expected ErrInvalidValue, got %v", name, err)
		}
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")
	cfg := Default()
	cfg.LenPixel = 24
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.LenPixel != 24 || back.Smoothing.Lambda != 0.5 {
		t.Errorf("round trip lost values: %+v", back)
	}
}
