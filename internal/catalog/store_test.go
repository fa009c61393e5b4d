package catalog

import (
	"context"
	"errors"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:", nil)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCanvasCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateCanvas(ctx, "holiday photos", "image")
	if err != nil {
		t.Fatalf("CreateCanvas() error: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("created canvas has no id")
	}

	got, err := store.GetCanvas(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetCanvas() error: %v", err)
	}
	if got.Name != "holiday photos" || got.Kind != "image" {
		t.Fatalf("GetCanvas() = %+v", got)
	}

	if err := store.RenameCanvas(ctx, created.ID, "2026 holiday"); err != nil {
		t.Fatalf("RenameCanvas() error: %v", err)
	}
	got, err = store.GetCanvas(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetCanvas() error: %v", err)
	}
	if got.Name != "2026 holiday" {
		t.Fatalf("rename did not stick: %q", got.Name)
	}

	if err := store.DeleteCanvas(ctx, created.ID); err != nil {
		t.Fatalf("DeleteCanvas() error: %v", err)
	}
	if _, err := store.GetCanvas(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetCanvas(deleted) = %v, want ErrNotFound", err)
	}
}

func TestGetCanvasNotFound(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.GetCanvas(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetCanvas(missing) = %v, want ErrNotFound", err)
	}
	if err := store.RenameCanvas(context.Background(), "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("RenameCanvas(missing) = %v, want ErrNotFound", err)
	}
}

func TestListCanvasesNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		if _, err := store.CreateCanvas(ctx, name, "image"); err != nil {
			t.Fatalf("CreateCanvas(%s) error: %v", name, err)
		}
	}

	canvases, err := store.ListCanvases(ctx)
	if err != nil {
		t.Fatalf("ListCanvases() error: %v", err)
	}
	if len(canvases) != 3 {
		t.Fatalf("ListCanvases() returned %d canvases, want 3", len(canvases))
	}
}

func TestImageAssetSlotAssignment(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	canvas, err := store.CreateCanvas(ctx, "grid", "image")
	if err != nil {
		t.Fatalf("CreateCanvas() error: %v", err)
	}

	first, err := store.AddImageAsset(ctx, canvas.ID, "a.png", []byte{1})
	if err != nil {
		t.Fatalf("AddImageAsset() error: %v", err)
	}
	if first.SortOrder != 1 {
		t.Fatalf("first slot = %d, want 1", first.SortOrder)
	}

	second, err := store.AddImageAsset(ctx, canvas.ID, "b.png", []byte{2})
	if err != nil {
		t.Fatalf("AddImageAsset() error: %v", err)
	}
	if second.SortOrder != 2 {
		t.Fatalf("second slot = %d, want 2", second.SortOrder)
	}
}

func TestImageAssetWrapAroundReusesFreedSlot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	canvas, err := store.CreateCanvas(ctx, "grid", "image")
	if err != nil {
		t.Fatalf("CreateCanvas() error: %v", err)
	}

	assets := make([]ImageAsset, 0, ImageCapacity)
	for i := 0; i < ImageCapacity; i++ {
		asset, err := store.AddImageAsset(ctx, canvas.ID, "x.png", []byte{byte(i)})
		if err != nil {
			t.Fatalf("AddImageAsset(%d) error: %v", i, err)
		}
		assets = append(assets, asset)
	}

	// Free a slot in the middle; the next insert wraps around to it.
	if err := store.DeleteImageAsset(ctx, assets[4].ID); err != nil {
		t.Fatalf("DeleteImageAsset() error: %v", err)
	}
	replacement, err := store.AddImageAsset(ctx, canvas.ID, "y.png", []byte{99})
	if err != nil {
		t.Fatalf("AddImageAsset() after delete error: %v", err)
	}
	if replacement.SortOrder != assets[4].SortOrder {
		t.Fatalf("replacement slot = %d, want %d", replacement.SortOrder, assets[4].SortOrder)
	}
}

func TestImageAssetCapacity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	canvas, err := store.CreateCanvas(ctx, "grid", "image")
	if err != nil {
		t.Fatalf("CreateCanvas() error: %v", err)
	}
	for i := 0; i < ImageCapacity; i++ {
		if _, err := store.AddImageAsset(ctx, canvas.ID, "x.png", []byte{byte(i)}); err != nil {
			t.Fatalf("AddImageAsset(%d) error: %v", i, err)
		}
	}

	if _, err := store.AddImageAsset(ctx, canvas.ID, "overflow.png", []byte{0}); !errors.Is(err, ErrCanvasFull) {
		t.Fatalf("AddImageAsset(full canvas) = %v, want ErrCanvasFull", err)
	}
}

func TestImageAssetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	canvas, err := store.CreateCanvas(ctx, "grid", "image")
	if err != nil {
		t.Fatalf("CreateCanvas() error: %v", err)
	}
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02}
	if _, err := store.AddImageAsset(ctx, canvas.ID, "photo.jpg", payload); err != nil {
		t.Fatalf("AddImageAsset() error: %v", err)
	}

	assets, err := store.ListImageAssets(ctx, canvas.ID)
	if err != nil {
		t.Fatalf("ListImageAssets() error: %v", err)
	}
	if len(assets) != 1 {
		t.Fatalf("ListImageAssets() returned %d assets, want 1", len(assets))
	}
	if string(assets[0].Data) != string(payload) {
		t.Fatalf("stored blob does not round-trip")
	}
}

func TestVideoAssetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	canvas, err := store.CreateCanvas(ctx, "clips", "video")
	if err != nil {
		t.Fatalf("CreateCanvas() error: %v", err)
	}

	added, err := store.AddVideoAsset(ctx, VideoAsset{
		CanvasID:        canvas.ID,
		Name:            "clip.mp4",
		FilePath:        "/data/videos/video/abc_clip.mp4",
		ThumbnailPath:   "/data/videos/thumbnail/thumb_abc_clip.jpg",
		DurationSeconds: 42.5,
	})
	if err != nil {
		t.Fatalf("AddVideoAsset() error: %v", err)
	}
	if added.ID == "" {
		t.Fatalf("video asset got no id")
	}

	assets, err := store.ListVideoAssets(ctx, canvas.ID)
	if err != nil {
		t.Fatalf("ListVideoAssets() error: %v", err)
	}
	if len(assets) != 1 {
		t.Fatalf("ListVideoAssets() returned %d assets, want 1", len(assets))
	}
	got := assets[0]
	if got.FilePath != added.FilePath || got.DurationSeconds != 42.5 {
		t.Fatalf("video asset does not round-trip: %+v", got)
	}

	if err := store.DeleteVideoAsset(ctx, added.ID); err != nil {
		t.Fatalf("DeleteVideoAsset() error: %v", err)
	}
	if err := store.DeleteVideoAsset(ctx, added.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("DeleteVideoAsset(gone) = %v, want ErrNotFound", err)
	}
}
