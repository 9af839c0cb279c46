package batch

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/webp"

	"mesh-patch-sampler/internal/config"
	"mesh-patch-sampler/internal/meshtest"
	"mesh-patch-sampler/internal/pipeline"
)

func testConfig(t *testing.T, format string) Config {
	t.Helper()
	opts := pipeline.DefaultOptions()
	opts.LenPixel = 4
	opts.Iterations = 1
	opts.Samples = 2
	return Config{
		OutputDir: t.TempDir(),
		Format:    format,
		Workers:   2,
		Options:   opts,
	}
}

func TestRunWritesSamplesAndManifest(t *testing.T) {
	fixtures := t.TempDir()
	objPath, texPath, err := meshtest.WriteFixture(fixtures, "cube", meshtest.Cube(1), meshtest.SplitTexture(8, 8))
	if err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(t, "png")
	cfg.ExportSize = 16

	jobs := []config.Job{
		{Name: "cube", Mesh: objPath, Texture: texPath},
		{Name: "missing", Mesh: filepath.Join(fixtures, "nope.obj")},
	}
	results := Run(cfg, jobs)
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}
	if !results[0].Success || len(results[0].Samples) != 2 {
		t.Fatalf("cube result: %+v", results[0])
	}
	if results[1].Success || results[1].Error == "" {
		t.Errorf("missing mesh should fail: %+v", results[1])
	}

	for _, s := range results[0].Samples {
		for _, name := range ImageNames {
			path := filepath.Join(cfg.OutputDir, filepath.FromSlash(s.Dir), name+".png")
			f, err := os.Open(path)
			if err != nil {
				t.Fatalf("missing output %s: %v", path, err)
			}
			img, err := png.Decode(f)
			f.Close()
			if err != nil {
				t.Fatalf("decode %s: %v", path, err)
			}
			if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
				t.Errorf("%s is %v, want 16x16", name, b)
			}
		}
	}

	manifest := filepath.Join(cfg.OutputDir, "manifest.json")
	if err := WriteManifest(manifest, results); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	entries, err := ReadManifest(manifest)
	if err != nil {
		t.Fatalf("ReadManifest: %v", err)
	}
	if len(entries) != 2 || entries[0].Name != "cube" || len(entries[0].Samples) != 2 {
		t.Errorf("manifest = %+v", entries)
	}
	if entries[1].Samples == nil || entries[1].Error == "" {
		t.Errorf("failed entry = %+v", entries[1])
	}
}

func TestRunWebP(t *testing.T) {
	fixtures := t.TempDir()
	objPath, _, err := meshtest.WriteFixture(fixtures, "cube", meshtest.Cube(1), meshtest.SplitTexture(8, 8))
	if err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(t, "webp")
	cfg.Options.Samples = 1
	results := Run(cfg, []config.Job{{Name: "cube", Mesh: objPath}})
	if !results[0].Success {
		t.Fatalf("result: %+v", results[0])
	}
	path := filepath.Join(cfg.OutputDir, "cube", "000", "color.webp")
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := webp.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 8 {
		t.Errorf("native size %v, want 8", b)
	}
}

func TestWriteImageUnknownFormat(t *testing.T) {
	if err := writeImage(filepath.Join(t.TempDir(), "x.gif"), nil, "gif"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestRunKeepsWrittenSamplesWhenOneWriteFails(t *testing.T) {
	fixtures := t.TempDir()
	objPath, _, err := meshtest.WriteFixture(fixtures, "cube", meshtest.Cube(1), meshtest.SplitTexture(8, 8))
	if err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(t, "png")
	// a plain file where sample 001's directory should go
	blocked := filepath.Join(cfg.OutputDir, "cube", "001")
	if err := os.MkdirAll(filepath.Dir(blocked), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(blocked, nil, 0644); err != nil {
		t.Fatal(err)
	}

	res := Run(cfg, []config.Job{{Name: "cube", Mesh: objPath}})[0]
	if !res.Success || res.Error == "" {
		t.Fatalf("want partial success with an error, got %+v", res)
	}
	if len(res.Samples) != 1 || res.Samples[0].Index != 0 {
		t.Fatalf("samples = %+v, want only sample 0", res.Samples)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "cube", "000", "color.png")); err != nil {
		t.Errorf("sample 0 not on disk: %v", err)
	}
}

func TestWriteManifestCreatesDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "manifest.json")
	if err := WriteManifest(path, []Result{{Name: "a", Mesh: "a.obj"}}); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	entries, err := ReadManifest(path)
	if err != nil || len(entries) != 1 {
		t.Fatalf("ReadManifest: %v, %+v", err, entries)
	}
}

func TestWriteManifestReportsDirError(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "out")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := WriteManifest(filepath.Join(file, "manifest.json"), nil); err == nil {
		t.Error("expected error when the output dir is a file")
	}
}
