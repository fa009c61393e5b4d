package canvas

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/divnaoki/campus-app/internal/logger"
	"github.com/divnaoki/campus-app/internal/media"
)

const (
	zoomStep = 1.25
	zoomMin  = 0.1
	zoomMax  = 10.0
)

// ViewState holds the zoom/pan/crop parameters of a surface. It is
// independent of the media kind and survives resource swaps.
type ViewState struct {
	Zoom float64
	PanX float64
	PanY float64
	Crop image.Rectangle
}

func defaultViewState() ViewState {
	return ViewState{Zoom: 1.0}
}

// RenderResult is one composed frame pulled by the shell. An empty surface
// yields Empty=true; that is a valid steady state, not a failure.
type RenderResult struct {
	Empty    bool
	Frame    image.Image
	Kind     media.Kind
	Width    int
	Height   int
	Position time.Duration
	Duration time.Duration
	Playing  bool
	Dropped  bool
	View     ViewState
}

// Surface is one canvas slot. It owns at most one media resource and
// mediates every load, unload and render against it. Surfaces never share
// resources, so no cross-surface locking exists anywhere on the render path.
type Surface struct {
	id  string
	log logger.Logger

	mu         sync.Mutex
	active     *media.Resource
	view       ViewState
	lastRender time.Time
	dropped    uint64
}

func NewSurface(id string, log logger.Logger) *Surface {
	if log == nil {
		log = logger.Nop{}
	}
	return &Surface{
		id:   id,
		log:  log,
		view: defaultViewState(),
	}
}

func (s *Surface) ID() string { return s.id }

// LoadInto loads sourcePath into the surface. The previous resource is
// released only after the new one is confirmed loaded, so an observer never
// sees an empty frame during a swap. On failure the previous resource stays
// active and the error is returned to the caller. The view state is
// preserved either way.
func (s *Surface) LoadInto(ctx context.Context, opener media.Opener, sourcePath string) error {
	resource, err := media.Load(ctx, opener, sourcePath)
	if err != nil {
		s.log.Warning("CanvasSurface", "load failed", map[string]interface{}{
			"surface": s.id,
			"source":  sourcePath,
			"error":   err.Error(),
		})
		return err
	}

	s.mu.Lock()
	previous := s.active
	s.active = resource
	s.lastRender = time.Time{}
	s.mu.Unlock()

	if previous != nil {
		previous.Release()
	}

	snap := resource.Snapshot()
	s.log.Info("CanvasSurface", "resource installed", map[string]interface{}{
		"surface": s.id,
		"kind":    snap.Kind.String(),
		"width":   snap.Width,
		"height":  snap.Height,
		"source":  sourcePath,
	})
	return nil
}

// Unload releases the active resource and leaves the surface empty.
// Idempotent.
func (s *Surface) Unload() {
	s.mu.Lock()
	previous := s.active
	s.active = nil
	s.mu.Unlock()

	if previous != nil {
		previous.Release()
	}
}

// Resource returns the active resource, or nil for an empty surface.
func (s *Surface) Resource() *media.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Render produces the frame for the shell's compose step. Images return
// their static pixel buffer. Videos advance by elapsed wall time while
// playing and decode the frame at the current position within frameBudget;
// when the decode overruns, the previous frame is reused and the drop is
// recorded as an observability event, not an error.
func (s *Surface) Render(frameBudget time.Duration) (RenderResult, error) {
	s.mu.Lock()
	resource := s.active
	view := s.view
	now := time.Now()
	var elapsed time.Duration
	if !s.lastRender.IsZero() {
		elapsed = now.Sub(s.lastRender)
	}
	s.lastRender = now
	s.mu.Unlock()

	if resource == nil {
		return RenderResult{Empty: true, View: view}, nil
	}

	snap := resource.Snapshot()
	if snap.State == media.StateFailed {
		return RenderResult{}, resource.Failure()
	}

	switch snap.Kind {
	case media.KindImage:
		pixels, err := resource.Pixels()
		if err != nil {
			return RenderResult{}, err
		}
		return RenderResult{
			Frame:  pixels,
			Kind:   media.KindImage,
			Width:  snap.Width,
			Height: snap.Height,
			View:   view,
		}, nil

	case media.KindVideo:
		if snap.Playback == media.PlaybackPlaying {
			if _, err := resource.Advance(elapsed); err != nil {
				return RenderResult{}, err
			}
		}

		frame, droppedFrame, err := resource.Frame(frameBudget)
		if err != nil {
			return RenderResult{}, err
		}
		if droppedFrame {
			s.mu.Lock()
			s.dropped++
			total := s.dropped
			s.mu.Unlock()
			s.log.Debug("CanvasSurface", "frame budget exceeded, reusing previous frame", map[string]interface{}{
				"surface":       s.id,
				"budget_ms":     frameBudget.Milliseconds(),
				"dropped_total": total,
			})
		}

		snap = resource.Snapshot()
		return RenderResult{
			Frame:    frame,
			Kind:     media.KindVideo,
			Width:    snap.Width,
			Height:   snap.Height,
			Position: snap.Position,
			Duration: snap.Duration,
			Playing:  snap.Playback == media.PlaybackPlaying,
			Dropped:  droppedFrame,
			View:     view,
		}, nil

	default:
		return RenderResult{}, media.InvalidState("resource has no usable kind")
	}
}

// DroppedFrames reports the total render calls that reused a stale frame.
func (s *Surface) DroppedFrames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// View returns the current view state.
func (s *Surface) View() ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

func (s *Surface) ZoomIn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Zoom *= zoomStep
	if s.view.Zoom > zoomMax {
		s.view.Zoom = zoomMax
	}
}

func (s *Surface) ZoomOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Zoom /= zoomStep
	if s.view.Zoom < zoomMin {
		s.view.Zoom = zoomMin
	}
}

func (s *Surface) SetPan(x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.PanX = x
	s.view.PanY = y
}

func (s *Surface) SetCrop(crop image.Rectangle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Crop = crop
}

// ResetView restores zoom/pan/crop defaults without touching the resource.
func (s *Surface) ResetView() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = defaultViewState()
}
