package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.DataDir == "" {
		t.Fatalf("Default() has empty data dir")
	}
	if cfg.MaxCanvases <= 0 {
		t.Fatalf("Default() max canvases = %d", cfg.MaxCanvases)
	}
	if cfg.FrameBudget <= 0 {
		t.Fatalf("Default() frame budget = %v", cfg.FrameBudget)
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := Config{DataDir: filepath.Join("data", "campus")}

	if got := cfg.DatabasePath(); got != filepath.Join("data", "campus", "database.db") {
		t.Fatalf("DatabasePath() = %q", got)
	}
	if got := cfg.VideoDir(); got != filepath.Join("data", "campus", "videos", "video") {
		t.Fatalf("VideoDir() = %q", got)
	}
	if got := cfg.ThumbnailDir(); got != filepath.Join("data", "campus", "videos", "thumbnail") {
		t.Fatalf("ThumbnailDir() = %q", got)
	}
}

func TestEnsureDirs(t *testing.T) {
	cfg := Config{DataDir: filepath.Join(t.TempDir(), "campus")}

	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs() error: %v", err)
	}
	for _, dir := range []string{cfg.DataDir, cfg.VideoDir(), cfg.ThumbnailDir()} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("missing directory %s: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("%s is not a directory", dir)
		}
	}

	// A second call over the existing layout succeeds.
	if err := cfg.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs() second call error: %v", err)
	}
}
