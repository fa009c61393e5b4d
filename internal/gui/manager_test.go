package gui

import (
	"context"
	"image"
	"testing"
	"time"

	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/test"

	"github.com/divnaoki/campus-app/internal/canvas"
	"github.com/divnaoki/campus-app/internal/catalog"
	"github.com/divnaoki/campus-app/internal/config"
	"github.com/divnaoki/campus-app/internal/media"
)

type clipOpener struct {
	duration time.Duration
}

func (o clipOpener) Open(ctx context.Context, sourcePath string) (media.Decoder, error) {
	return clipDecoder{duration: o.duration}, nil
}

type clipDecoder struct {
	duration time.Duration
}

func (clipDecoder) Kind() media.Kind { return media.KindVideo }
func (clipDecoder) Dimensions() (int, int) { return 320, 240 }
func (d clipDecoder) Duration() time.Duration { return d.duration }
func (clipDecoder) FrameRate() float64 { return 25 }
func (clipDecoder) Close() error { return nil }
func (clipDecoder) DecodeFrame(at time.Duration) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 320, 240)), nil
}

func newTestManager(t *testing.T) (*Manager, *canvas.Controller) {
	t.Helper()
	test.NewApp()

	store, err := catalog.NewStore(":memory:", nil)
	if err != nil {
		t.Fatalf("NewStore() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	controller := canvas.NewController(clipOpener{duration: 10 * time.Second},
		canvas.Policy{MaxSurfaces: 4}, nil)
	cfg := config.Config{MaxCanvases: 4, FrameBudget: 33 * time.Millisecond}

	return NewManager(context.Background(), test.NewWindow(nil), controller, store, nil, cfg, nil), controller
}

func registerTab(t *testing.T, m *Manager, controller *canvas.Controller, slotID string) *container.TabItem {
	t.Helper()
	if err := controller.DispatchLoad(context.Background(), slotID, "a.mp4"); err != nil {
		t.Fatalf("DispatchLoad() error: %v", err)
	}
	display := NewSurfaceDisplay(controller.Surface(slotID))
	item := container.NewTabItem(slotID, display.Content())

	m.mu.Lock()
	m.displays[slotID] = display
	m.tabItems[slotID] = item
	m.tabSlots[item] = slotID
	m.mu.Unlock()
	return item
}

func TestTabSelectionCachesSlotForCompose(t *testing.T) {
	m, controller := newTestManager(t)
	item := registerTab(t, m, controller, "c1")

	// The driver reports selection through OnSelected; the compose loop works
	// off the cached slot and never reads widget state.
	m.tabs.OnSelected(item)

	m.mu.Lock()
	got := m.selectedSlot
	m.mu.Unlock()
	if got != "c1" {
		t.Fatalf("cached selection = %q, want c1", got)
	}

	surface := controller.Surface("c1")
	if err := surface.Resource().Play(); err != nil {
		t.Fatalf("Play() error: %v", err)
	}

	// Two compose passes: the first establishes the playback clock, the
	// second advances it, proving the cached slot reaches the render path.
	m.composeSelected()
	time.Sleep(20 * time.Millisecond)
	m.composeSelected()

	if pos := surface.Resource().Snapshot().Position; pos <= 0 {
		t.Fatalf("compose did not render the cached selection: position %v", pos)
	}
}

func TestComposeWithoutSelectionIsNoop(t *testing.T) {
	m, _ := newTestManager(t)
	// No tab selected yet; the compose tick must not touch anything.
	m.composeSelected()
}

func TestCloseSlotClearsCachedSelection(t *testing.T) {
	m, controller := newTestManager(t)
	item := registerTab(t, m, controller, "c1")
	m.tabs.OnSelected(item)

	m.closeSlot("c1")

	m.mu.Lock()
	got := m.selectedSlot
	m.mu.Unlock()
	if got != "" {
		t.Fatalf("cached selection after close = %q, want empty", got)
	}
	m.composeSelected()
}
