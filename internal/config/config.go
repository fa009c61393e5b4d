package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const appDirName = "campus-app"

// Config carries the process-wide settings injected at startup. Everything
// here is decided once by the command line (or defaults) and treated as
// read-only afterwards.
type Config struct {
	// DataDir is the per-user application data directory. The SQLite
	// catalog, imported videos and generated thumbnails live under it.
	DataDir string
	// MaxCanvases bounds how many canvas surfaces may exist at once.
	MaxCanvases int
	// PauseOnBlur pauses a playing video when its surface loses focus.
	PauseOnBlur bool
	// FrameBudget is the per-frame decode budget on the render path.
	FrameBudget time.Duration
	// Debug switches console logging to debug level.
	Debug bool
}

// Default returns the configuration used when no flags override it.
func Default() Config {
	return Config{
		DataDir:     userDataDir(),
		MaxCanvases: 8,
		PauseOnBlur: true,
		FrameBudget: 33 * time.Millisecond,
	}
}

// userDataDir resolves the platform data directory the same way the
// original application did: LOCALAPPDATA on Windows, Application Support on
// macOS, ~/.local/share elsewhere.
func userDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	switch runtime.GOOS {
	case "windows":
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, appDirName)
		}
		return filepath.Join(home, appDirName)
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appDirName)
	default:
		return filepath.Join(home, ".local", "share", appDirName)
	}
}

// DatabasePath is the SQLite catalog location.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "database.db")
}

// VideoDir holds imported video files.
func (c Config) VideoDir() string {
	return filepath.Join(c.DataDir, "videos", "video")
}

// ThumbnailDir holds generated video thumbnails.
func (c Config) ThumbnailDir() string {
	return filepath.Join(c.DataDir, "videos", "thumbnail")
}

// EnsureDirs creates the data directory layout.
func (c Config) EnsureDirs() error {
	for _, dir := range []string{c.DataDir, c.VideoDir(), c.ThumbnailDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
