package canvas

import (
	"context"
	"sync"

	"github.com/divnaoki/campus-app/internal/logger"
	"github.com/divnaoki/campus-app/internal/media"
)

// Policy configures controller-wide behavior.
type Policy struct {
	// MaxSurfaces bounds lazy surface creation. Zero or negative means
	// unbounded.
	MaxSurfaces int
	// PauseOnBlur pauses a playing video when its surface loses focus.
	PauseOnBlur bool
}

// Controller orchestrates the canvas surfaces: it routes sidebar events to
// the right slot, creates surfaces lazily up to the configured capacity and
// keeps at most one surface focused. The controller lock guards structural
// mutation of the surface list only; rendering and loading run against the
// individual surfaces without it.
type Controller struct {
	opener media.Opener
	log    logger.Logger
	policy Policy

	mu       sync.Mutex
	order    []string
	surfaces map[string]*Surface
	focused  string
}

func NewController(opener media.Opener, policy Policy, log logger.Logger) *Controller {
	if log == nil {
		log = logger.Nop{}
	}
	return &Controller{
		opener:   opener,
		log:      log,
		policy:   policy,
		surfaces: make(map[string]*Surface),
	}
}

// SelectSurface moves focus to slotID. When the pause-on-blur policy is set,
// a playing video on the previously focused surface is paused.
func (c *Controller) SelectSurface(slotID string) error {
	c.mu.Lock()
	_, ok := c.surfaces[slotID]
	if !ok {
		c.mu.Unlock()
		return media.NewError(media.ErrUnknownSlot, slotID, nil)
	}
	previousID := c.focused
	var previous *Surface
	if previousID != "" && previousID != slotID {
		previous = c.surfaces[previousID]
	}
	c.focused = slotID
	c.mu.Unlock()

	if previous != nil && c.policy.PauseOnBlur {
		if resource := previous.Resource(); resource != nil {
			snap := resource.Snapshot()
			if snap.Kind == media.KindVideo && snap.Playback == media.PlaybackPlaying {
				if err := resource.Pause(); err == nil {
					c.log.Debug("CanvasController", "paused on blur", map[string]interface{}{
						"surface": previousID,
					})
				}
			}
		}
	}

	return nil
}

// DispatchLoad routes a load request to slotID, creating the surface lazily.
// Beyond the configured maximum the request fails with CapacityExceeded and
// no surface is created. A load failure leaves a freshly created surface in
// place but empty; an existing surface keeps its previous resource.
func (c *Controller) DispatchLoad(ctx context.Context, slotID, sourcePath string) error {
	c.mu.Lock()
	surface, ok := c.surfaces[slotID]
	if !ok {
		if c.policy.MaxSurfaces > 0 && len(c.order) >= c.policy.MaxSurfaces {
			c.mu.Unlock()
			return media.NewError(media.ErrCapacityExceeded, slotID, nil)
		}
		surface = NewSurface(slotID, c.log)
		c.surfaces[slotID] = surface
		c.order = append(c.order, slotID)
		if c.focused == "" {
			c.focused = slotID
		}
		c.log.Info("CanvasController", "surface created", map[string]interface{}{
			"surface": slotID,
			"count":   len(c.order),
		})
	}
	c.mu.Unlock()

	return surface.LoadInto(ctx, c.opener, sourcePath)
}

// CloseSurface unloads and removes slotID. When the closed surface was
// focused, focus moves to the surface now occupying its position in
// insertion order, falling back to the last remaining one, or to none.
func (c *Controller) CloseSurface(slotID string) error {
	c.mu.Lock()
	surface, ok := c.surfaces[slotID]
	if !ok {
		c.mu.Unlock()
		return media.NewError(media.ErrUnknownSlot, slotID, nil)
	}

	index := -1
	for i, id := range c.order {
		if id == slotID {
			index = i
			break
		}
	}
	c.order = append(c.order[:index], c.order[index+1:]...)
	delete(c.surfaces, slotID)

	if c.focused == slotID {
		switch {
		case len(c.order) == 0:
			c.focused = ""
		case index < len(c.order):
			c.focused = c.order[index]
		default:
			c.focused = c.order[len(c.order)-1]
		}
	}
	c.mu.Unlock()

	surface.Unload()
	c.log.Info("CanvasController", "surface closed", map[string]interface{}{
		"surface": slotID,
	})
	return nil
}

// Surface returns the surface for slotID, or nil.
func (c *Controller) Surface(slotID string) *Surface {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surfaces[slotID]
}

// FocusedSurface returns the focused surface, or nil when none exists.
func (c *Controller) FocusedSurface() *Surface {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.focused == "" {
		return nil
	}
	return c.surfaces[c.focused]
}

// FocusedSlot returns the focused slot id, or "".
func (c *Controller) FocusedSlot() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focused
}

// Slots returns the slot ids in insertion order.
func (c *Controller) Slots() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	slots := make([]string, len(c.order))
	copy(slots, c.order)
	return slots
}

// Shutdown unloads every surface. Registered with the shutdown manager.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	surfaces := make([]*Surface, 0, len(c.order))
	for _, id := range c.order {
		surfaces = append(surfaces, c.surfaces[id])
	}
	c.order = nil
	c.surfaces = make(map[string]*Surface)
	c.focused = ""
	c.mu.Unlock()

	for _, surface := range surfaces {
		surface.Unload()
	}
}
