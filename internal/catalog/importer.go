package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/divnaoki/campus-app/internal/logger"
	"github.com/divnaoki/campus-app/internal/media"
)

// Thumbnailer produces a thumbnail file for a video file. The production
// implementation is media.GenerateThumbnail; tests substitute a stub.
type Thumbnailer func(videoPath, thumbnailPath string, frameTime time.Duration) error

// Importer copies video files into the managed data directory, generates
// their thumbnails and records them in the store. File naming follows the
// original application: `<canvasID>_<filename>` for the video and
// `thumb_<stem>.jpg` for the thumbnail.
type Importer struct {
	store        *Store
	opener       media.Opener
	thumbnail    Thumbnailer
	videoDir     string
	thumbnailDir string
	log          logger.Logger
}

func NewImporter(store *Store, opener media.Opener, thumbnail Thumbnailer, videoDir, thumbnailDir string, log logger.Logger) *Importer {
	if log == nil {
		log = logger.Nop{}
	}
	return &Importer{
		store:        store,
		opener:       opener,
		thumbnail:    thumbnail,
		videoDir:     videoDir,
		thumbnailDir: thumbnailDir,
		log:          log,
	}
}

// ImportVideo copies sourcePath into the video directory, probes its
// duration, generates a thumbnail and records the asset. Partially imported
// files are removed when a later step fails.
func (imp *Importer) ImportVideo(ctx context.Context, canvasID, sourcePath string) (VideoAsset, error) {
	filename := filepath.Base(sourcePath)
	destPath := filepath.Join(imp.videoDir, fmt.Sprintf("%s_%s", canvasID, filename))

	if err := copyFile(sourcePath, destPath); err != nil {
		return VideoAsset{}, media.IOError(err)
	}

	duration, err := imp.probeDuration(ctx, destPath)
	if err != nil {
		os.Remove(destPath)
		return VideoAsset{}, err
	}

	stem := strings.TrimSuffix(filepath.Base(destPath), filepath.Ext(destPath))
	thumbnailPath := filepath.Join(imp.thumbnailDir, fmt.Sprintf("thumb_%s.jpg", stem))
	if err := imp.thumbnail(destPath, thumbnailPath, 0); err != nil {
		// A video without a thumbnail is still usable; keep going.
		imp.log.Warning("Importer", "thumbnail generation failed", map[string]interface{}{
			"video": destPath,
			"error": err.Error(),
		})
		thumbnailPath = ""
	}

	asset, err := imp.store.AddVideoAsset(ctx, VideoAsset{
		CanvasID:        canvasID,
		Name:            filename,
		FilePath:        destPath,
		ThumbnailPath:   thumbnailPath,
		DurationSeconds: duration.Seconds(),
	})
	if err != nil {
		os.Remove(destPath)
		if thumbnailPath != "" {
			os.Remove(thumbnailPath)
		}
		return VideoAsset{}, err
	}

	imp.log.Info("Importer", "video imported", map[string]interface{}{
		"canvas":   canvasID,
		"video":    destPath,
		"duration": duration.String(),
	})
	return asset, nil
}

// RemoveVideo deletes the asset record and its files.
func (imp *Importer) RemoveVideo(ctx context.Context, asset VideoAsset) error {
	if err := imp.store.DeleteVideoAsset(ctx, asset.ID); err != nil {
		return err
	}
	if asset.FilePath != "" {
		os.Remove(asset.FilePath)
	}
	if asset.ThumbnailPath != "" {
		os.Remove(asset.ThumbnailPath)
	}
	return nil
}

func (imp *Importer) probeDuration(ctx context.Context, path string) (time.Duration, error) {
	dec, err := imp.opener.Open(ctx, path)
	if err != nil {
		return 0, err
	}
	defer dec.Close()

	video, ok := dec.(media.VideoDecoder)
	if !ok {
		return 0, media.UnsupportedFormat(path)
	}
	return video.Duration(), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
