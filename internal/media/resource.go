package media

import (
	"context"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// PlaybackState applies to video resources only.
type PlaybackState int

const (
	PlaybackStopped PlaybackState = iota
	PlaybackPlaying
	PlaybackPaused
)

func (s PlaybackState) String() string {
	switch s {
	case PlaybackPlaying:
		return "playing"
	case PlaybackPaused:
		return "paused"
	default:
		return "stopped"
	}
}

// State is the resource lifecycle state. A resource handed out by Load is
// always Loaded; it can only move to Failed (terminal decode error) or
// Released.
type State int

const (
	StateLoaded State = iota
	StateFailed
	StateReleased
)

func (s State) String() string {
	switch s {
	case StateFailed:
		return "failed"
	case StateReleased:
		return "released"
	default:
		return "loaded"
	}
}

// Snapshot is the externally visible state of a resource, published as a
// value so the render goroutine never observes a torn update.
type Snapshot struct {
	ID         string
	Kind       Kind
	SourcePath string
	Width      int
	Height     int
	State      State
	Playback   PlaybackState
	Position   time.Duration
	Duration   time.Duration
	FrameRate  float64
	Version    uint64
}

// Resource owns one loaded asset: the decoded bitmap for an image, or the
// decoder handle plus playback state for a video. A resource belongs to
// exactly one surface and is never shared; all mutation goes through its
// lock, and readers take value snapshots.
type Resource struct {
	id         string
	kind       Kind
	sourcePath string
	width      int
	height     int

	mu        sync.Mutex
	state     State
	failure   error
	pixels    image.Image
	video     VideoDecoder
	duration  time.Duration
	frameRate float64
	position  time.Duration
	playback  PlaybackState
	lastFrame image.Image
	decoding  bool
	// closeAfterDecode defers the decoder close to the decode goroutine
	// when Release or fail lands while a decode is still in flight.
	closeAfterDecode bool
	version          uint64

	released int32
	dropped  uint64
}

// Load probes sourcePath through opener and returns a fully initialized
// resource or an error; a partially initialized resource is never returned.
// Images are decoded to pixels eagerly and their decoder handle is closed
// before Load returns. Videos keep their decoder for on-demand frame decode.
//
// Cancelling ctx guarantees any acquired decoder handle is closed and no
// resource is produced.
func Load(ctx context.Context, opener Opener, sourcePath string) (*Resource, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dec, err := opener.Open(ctx, sourcePath)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		dec.Close()
		return nil, err
	}

	width, height := dec.Dimensions()
	res := &Resource{
		id:         uuid.NewString(),
		kind:       dec.Kind(),
		sourcePath: sourcePath,
		width:      width,
		height:     height,
		state:      StateLoaded,
	}

	switch d := dec.(type) {
	case ImageDecoder:
		img, decodeErr := d.Decode()
		d.Close()
		if decodeErr != nil {
			return nil, CorruptData(decodeErr)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.pixels = img

	case VideoDecoder:
		res.video = d
		res.duration = d.Duration()
		res.frameRate = d.FrameRate()

	default:
		dec.Close()
		return nil, UnsupportedFormat(sourcePath)
	}

	return res, nil
}

func (r *Resource) ID() string         { return r.id }
func (r *Resource) Kind() Kind         { return r.kind }
func (r *Resource) SourcePath() string { return r.sourcePath }

// Snapshot returns the current externally visible state as a value.
func (r *Resource) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Snapshot{
		ID:         r.id,
		Kind:       r.kind,
		SourcePath: r.sourcePath,
		Width:      r.width,
		Height:     r.height,
		State:      r.state,
		Playback:   r.playback,
		Position:   r.position,
		Duration:   r.duration,
		FrameRate:  r.frameRate,
		Version:    r.version,
	}
}

// Pixels returns the decoded bitmap of an image resource.
func (r *Resource) Pixels() (image.Image, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.kind != KindImage {
		return nil, InvalidState("pixels requested from a " + r.kind.String() + " resource")
	}
	if r.state != StateLoaded {
		return nil, InvalidState("resource is " + r.state.String())
	}
	return r.pixels, nil
}

// Play starts playback. Playing an already playing resource is a no-op.
func (r *Resource) Play() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requirePlayable(); err != nil {
		return err
	}
	if r.playback == PlaybackPlaying {
		return nil
	}
	r.playback = PlaybackPlaying
	r.version++
	return nil
}

// Pause suspends playback, keeping the current position.
func (r *Resource) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requirePlayable(); err != nil {
		return err
	}
	if r.playback == PlaybackPlaying {
		r.playback = PlaybackPaused
		r.version++
	}
	return nil
}

// Stop halts playback and rewinds to the start.
func (r *Resource) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requirePlayable(); err != nil {
		return err
	}
	r.playback = PlaybackStopped
	r.position = 0
	r.version++
	return nil
}

// Seek moves the position, clamped to [0, duration].
func (r *Resource) Seek(position time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requirePlayable(); err != nil {
		return err
	}
	if position < 0 {
		position = 0
	}
	if position > r.duration {
		position = r.duration
	}
	r.position = position
	r.version++
	return nil
}

// Advance moves playback forward by elapsed wall time. Reaching the end of
// the media pauses and rewinds to the start, matching the original player's
// end-of-media handling. It reports whether the end was reached.
func (r *Resource) Advance(elapsed time.Duration) (ended bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.requirePlayable(); err != nil {
		return false, err
	}
	if r.playback != PlaybackPlaying || elapsed <= 0 {
		return false, nil
	}

	r.position += elapsed
	if r.position >= r.duration {
		r.playback = PlaybackPaused
		r.position = 0
		r.version++
		return true, nil
	}
	r.version++
	return false, nil
}

// Frame decodes the video frame at the current position within budget. When
// the decode cannot complete in time (or one is still in flight from an
// earlier overrun) the previous frame is returned and the call is counted as
// a dropped frame; the render path degrades, it never blocks.
func (r *Resource) Frame(budget time.Duration) (frame image.Image, droppedFrame bool, err error) {
	r.mu.Lock()
	if err := r.requirePlayable(); err != nil {
		r.mu.Unlock()
		return nil, false, err
	}
	if r.decoding {
		last := r.lastFrame
		r.mu.Unlock()
		atomic.AddUint64(&r.dropped, 1)
		return last, true, nil
	}
	dec := r.video
	at := r.position
	r.decoding = true
	r.mu.Unlock()

	type result struct {
		img image.Image
		err error
	}
	done := make(chan result, 1)
	go func() {
		img, decodeErr := dec.DecodeFrame(at)

		r.mu.Lock()
		r.decoding = false
		closeNow := r.closeAfterDecode
		r.closeAfterDecode = false
		if !closeNow && decodeErr == nil && r.state == StateLoaded {
			r.lastFrame = img
			r.version++
		}
		r.mu.Unlock()

		if closeNow {
			dec.Close()
		}
		done <- result{img: img, err: decodeErr}
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()

	select {
	case res := <-done:
		if res.err != nil {
			r.fail(CorruptData(res.err))
			return nil, false, CorruptData(res.err)
		}
		return res.img, false, nil
	case <-timer.C:
		r.mu.Lock()
		last := r.lastFrame
		r.mu.Unlock()
		atomic.AddUint64(&r.dropped, 1)
		return last, true, nil
	}
}

// DroppedFrames reports how many render calls fell back to a stale frame.
func (r *Resource) DroppedFrames() uint64 {
	return atomic.LoadUint64(&r.dropped)
}

// Failure returns the terminal error of a Failed resource, or nil.
func (r *Resource) Failure() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.failure
}

// Release tears down the decoder handle and pixel buffer. It is idempotent
// and safe to call from any goroutine; the owning surface calls it exactly
// once on unload or replacement. When an over-budget decode is still in
// flight the decoder close is handed off to the decode goroutine, so the
// underlying handle is never closed under a running decode.
func (r *Resource) Release() {
	if !atomic.CompareAndSwapInt32(&r.released, 0, 1) {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.dropDecoder()
	r.pixels = nil
	r.lastFrame = nil
	r.state = StateReleased
	r.playback = PlaybackStopped
	r.version++
}

// dropDecoder closes the video decoder, or schedules the close with the
// in-flight decode goroutine. Callers hold r.mu.
func (r *Resource) dropDecoder() {
	if r.video == nil {
		return
	}
	if r.decoding {
		r.closeAfterDecode = true
	} else {
		r.video.Close()
	}
	r.video = nil
}

func (r *Resource) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateLoaded {
		return
	}
	r.state = StateFailed
	r.failure = err
	r.playback = PlaybackStopped
	r.dropDecoder()
	r.version++
}

func (r *Resource) requirePlayable() error {
	if r.kind != KindVideo {
		return InvalidState("playback operation on a " + r.kind.String() + " resource")
	}
	if r.state != StateLoaded {
		return InvalidState("resource is " + r.state.String())
	}
	return nil
}
