package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"mesh-patch-sampler/internal/batch"
	"mesh-patch-sampler/internal/config"
	"mesh-patch-sampler/internal/logger"
	"mesh-patch-sampler/internal/pipeline"
	"mesh-patch-sampler/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.yaml file")
	meshPath := flag.String("mesh", "", "Path to a textured OBJ mesh")
	texPath := flag.String("texture", "", "Path to the texture image (default: map_Kd from the mesh's .mtl)")
	outputDir := flag.String("output", "", "Output directory (default: patches)")
	lenPixel := flag.Int("len-pixel", 0, "Patch half-resolution; patches are 2*len-pixel square (default: 32)")
	method := flag.String("method", "", "Smoothing method: taubin or laplacian (default: taubin)")
	iterations := flag.Int("iterations", -1, "Smoothing iterations, 0 disables smoothing (default: 10)")
	samples := flag.Int("samples", 0, "Samples per mesh (default: 1)")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	debug := flag.Bool("debug", false, "Enable debug logging")

	flag.Parse()

	// Load config
	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		Mesh:       *meshPath,
		Texture:    *texPath,
		OutputDir:  *outputDir,
		LenPixel:   *lenPixel,
		Method:     *method,
		Iterations: *iterations,
		Samples:    *samples,
		Workers:    *workers,
		Debug:      *debug,
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "Error initialising logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	opts, err := pipeline.OptionsFromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	// Print summary
	fmt.Printf("Mesh patch sampler: %d mesh(es), %d sample(s) each, %dx%d patches\n",
		len(cfg.Manifest), cfg.Sampling.Count, 2*cfg.LenPixel, 2*cfg.LenPixel)
	fmt.Printf("Smoothing: %s x%d, Workers: %d\n", cfg.Smoothing.Method, cfg.Smoothing.Iterations, cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	// Run batch
	batchCfg := batch.Config{
		OutputDir:  cfg.OutputDir,
		Format:     cfg.Export.Format,
		ExportSize: cfg.Export.Size,
		Workers:    cfg.Workers,
		Options:    opts,
		Textures:   texture.NewCache(),
	}

	results := batch.Run(batchCfg, cfg.Manifest)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed, written := 0, 0, 0
	var errs []batch.Result
	for _, r := range results {
		written += len(r.Samples)
		if r.Success {
			success++
		} else {
			failed++
			errs = append(errs, r)
		}
	}

	fmt.Printf("Meshes: %d/%d, samples written: %d\n", success, len(results), written)

	if len(errs) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		limit := 20
		if len(errs) < limit {
			limit = len(errs)
		}
		for _, e := range errs[:limit] {
			fmt.Printf("  %s: %s\n", e.Name, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		logger.Error("manifest write failed", zap.Error(err))
		failed++
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		logger.Sync()
		os.Exit(1)
	}
}
