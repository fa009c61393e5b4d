package gui

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/divnaoki/campus-app/internal/canvas"
	"github.com/divnaoki/campus-app/internal/media"
)

// SurfaceDisplay presents one canvas surface inside a tab: the composed
// frame, a seek slider and a position readout. Frames are pulled by the
// compose loop and pushed to Fyne through fyne.Do.
type SurfaceDisplay struct {
	surface *canvas.Surface

	image    *fynecanvas.Image
	slider   *widget.Slider
	position *widget.Label
	root     fyne.CanvasObject

	seeking bool
}

func NewSurfaceDisplay(surface *canvas.Surface) *SurfaceDisplay {
	image := fynecanvas.NewImageFromImage(nil)
	image.FillMode = fynecanvas.ImageFillContain
	image.SetMinSize(fyne.NewSize(640, 480))

	display := &SurfaceDisplay{
		surface:  surface,
		image:    image,
		slider:   widget.NewSlider(0, 100),
		position: widget.NewLabel(""),
	}

	// Seeking maps the slider percentage onto the media duration, the way
	// the original player mapped slider position to a frame number.
	display.slider.OnChangeEnded = func(percent float64) {
		resource := surface.Resource()
		if resource == nil {
			return
		}
		snap := resource.Snapshot()
		if snap.Kind != media.KindVideo || snap.Duration <= 0 {
			return
		}
		target := time.Duration(percent / 100 * float64(snap.Duration))
		if err := resource.Seek(target); err != nil {
			return
		}
		display.seeking = false
	}
	display.slider.OnChanged = func(float64) {
		display.seeking = true
	}

	display.root = container.NewBorder(
		nil,
		container.NewBorder(nil, nil, nil, display.position, display.slider),
		nil, nil,
		image,
	)
	return display
}

func (d *SurfaceDisplay) Surface() *canvas.Surface { return d.surface }

func (d *SurfaceDisplay) Content() fyne.CanvasObject { return d.root }

// Compose pulls one frame within budget and publishes it on the UI thread.
// Render errors are returned so the manager can surface them once.
func (d *SurfaceDisplay) Compose(budget time.Duration) error {
	result, err := d.surface.Render(budget)
	if err != nil {
		return err
	}

	fyne.Do(func() {
		if result.Empty || result.Frame == nil {
			d.image.Image = nil
			d.image.Refresh()
			d.position.SetText("")
			return
		}

		d.image.Image = result.Frame
		d.image.Refresh()

		if result.Kind == media.KindVideo {
			d.position.SetText(fmt.Sprintf("%s / %s",
				formatPosition(result.Position), formatPosition(result.Duration)))
			if !d.seeking && result.Duration > 0 {
				d.slider.Value = float64(result.Position) / float64(result.Duration) * 100
				d.slider.Refresh()
			}
			d.slider.Show()
		} else {
			d.position.SetText(fmt.Sprintf("%dx%d", result.Width, result.Height))
			d.slider.Hide()
		}
	})
	return nil
}

func formatPosition(d time.Duration) string {
	d = d.Round(time.Second)
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
