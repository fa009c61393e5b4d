package media

import (
	"context"
	"image"
	"time"
)

// Decoder is the common surface of a prepared media backend. Exactly one
// resource owns a decoder at a time; the owner is responsible for Close.
type Decoder interface {
	Kind() Kind
	Dimensions() (width, height int)
	Close() error
}

// ImageDecoder decodes the full bitmap once. The returned image is owned by
// the caller; the decoder holds no reference to it afterwards.
type ImageDecoder interface {
	Decoder
	Decode() (image.Image, error)
}

// VideoDecoder exposes probed metadata and random-access frame decode.
// Implementations are not required to be safe for concurrent use; resources
// serialize access through their own lock.
type VideoDecoder interface {
	Decoder
	Duration() time.Duration
	FrameRate() float64
	DecodeFrame(at time.Duration) (image.Image, error)
}

// Opener probes a source path and prepares a decoder for it. It is the only
// seam between the resource lifecycle and the concrete decode backend; tests
// substitute handle-counting fakes here.
//
// Open must respect ctx: a cancelled open returns ctx.Err() and leaves no
// acquired handle behind.
type Opener interface {
	Open(ctx context.Context, sourcePath string) (Decoder, error)
}
