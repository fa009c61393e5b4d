package media

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"
	"time"

	"gocv.io/x/gocv"
)

// GocvOpener is the production Opener, backed by OpenCV through gocv. It
// mirrors what the original application did with cv2: IMDecode for still
// images, VideoCapture with FPS/frame-count probing for video.
type GocvOpener struct{}

func NewGocvOpener() *GocvOpener {
	return &GocvOpener{}
}

func (o *GocvOpener) Open(ctx context.Context, sourcePath string) (Decoder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(sourcePath)
	if err != nil {
		return nil, IOError(err)
	}

	header := make([]byte, 32)
	n, err := file.Read(header)
	file.Close()
	if err != nil && err != io.EOF {
		return nil, IOError(err)
	}

	switch Classify(header[:n], sourcePath) {
	case KindImage:
		return openImage(sourcePath)
	case KindVideo:
		return openVideo(sourcePath)
	default:
		return nil, UnsupportedFormat(sourcePath)
	}
}

type gocvImageDecoder struct {
	mat    gocv.Mat
	width  int
	height int
	closed bool
}

func openImage(sourcePath string) (ImageDecoder, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, IOError(err)
	}

	mat, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, CorruptData(err)
	}
	if mat.Empty() {
		mat.Close()
		return nil, CorruptData(fmt.Errorf("image decoded to empty matrix: %s", sourcePath))
	}

	return &gocvImageDecoder{
		mat:    mat,
		width:  mat.Cols(),
		height: mat.Rows(),
	}, nil
}

func (d *gocvImageDecoder) Kind() Kind                      { return KindImage }
func (d *gocvImageDecoder) Dimensions() (width, height int) { return d.width, d.height }

func (d *gocvImageDecoder) Decode() (image.Image, error) {
	if d.closed {
		return nil, InvalidState("image decoder is closed")
	}
	img, err := d.mat.ToImage()
	if err != nil {
		return nil, CorruptData(err)
	}
	return img, nil
}

func (d *gocvImageDecoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.mat.Close()
}

type gocvVideoDecoder struct {
	capture    *gocv.VideoCapture
	width      int
	height     int
	frameRate  float64
	frameCount float64
	duration   time.Duration
	closed     bool
}

func openVideo(sourcePath string) (VideoDecoder, error) {
	capture, err := gocv.OpenVideoCapture(sourcePath)
	if err != nil {
		return nil, CorruptData(err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, CorruptData(fmt.Errorf("video source could not be opened: %s", sourcePath))
	}

	fps := capture.Get(gocv.VideoCaptureFPS)
	frameCount := capture.Get(gocv.VideoCaptureFrameCount)
	if fps <= 0 || frameCount <= 0 {
		capture.Close()
		return nil, CorruptData(fmt.Errorf("video has no usable timing metadata: %s", sourcePath))
	}

	return &gocvVideoDecoder{
		capture:    capture,
		width:      int(capture.Get(gocv.VideoCaptureFrameWidth)),
		height:     int(capture.Get(gocv.VideoCaptureFrameHeight)),
		frameRate:  fps,
		frameCount: frameCount,
		duration:   time.Duration(frameCount / fps * float64(time.Second)),
	}, nil
}

func (d *gocvVideoDecoder) Kind() Kind                      { return KindVideo }
func (d *gocvVideoDecoder) Dimensions() (width, height int) { return d.width, d.height }
func (d *gocvVideoDecoder) Duration() time.Duration         { return d.duration }
func (d *gocvVideoDecoder) FrameRate() float64              { return d.frameRate }

// frameIndex maps a playback position onto a zero-based frame number. A
// position at exactly the duration lands one past the last frame, so the
// index is clamped to frameCount-1 to keep the final frame decodable.
func frameIndex(at time.Duration, frameRate, frameCount float64) float64 {
	n := float64(int(at.Seconds() * frameRate))
	if n > frameCount-1 {
		n = frameCount - 1
	}
	if n < 0 {
		n = 0
	}
	return n
}

func (d *gocvVideoDecoder) DecodeFrame(at time.Duration) (image.Image, error) {
	if d.closed {
		return nil, InvalidState("video decoder is closed")
	}

	frameNumber := frameIndex(at, d.frameRate, d.frameCount)
	if !d.capture.Set(gocv.VideoCapturePosFrames, frameNumber) {
		return nil, CorruptData(fmt.Errorf("seek to frame %.0f failed", frameNumber))
	}

	mat := gocv.NewMat()
	defer mat.Close()

	if ok := d.capture.Read(&mat); !ok || mat.Empty() {
		return nil, CorruptData(fmt.Errorf("frame %.0f could not be read", frameNumber))
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, CorruptData(err)
	}
	return img, nil
}

func (d *gocvVideoDecoder) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	return d.capture.Close()
}
