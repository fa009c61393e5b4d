package media

import (
	"fmt"
	"image"
	"time"

	"gocv.io/x/gocv"
)

const (
	// ThumbnailMaxWidth and ThumbnailMaxHeight bound generated video
	// thumbnails, same limits as the original application.
	ThumbnailMaxWidth  = 320
	ThumbnailMaxHeight = 240
)

// FitWithin scales (width, height) down to fit inside (maxWidth, maxHeight)
// preserving the aspect ratio. Dimensions already inside the box are
// returned unchanged.
func FitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= 0 || height <= 0 {
		return width, height
	}
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}

	scaleW := float64(maxWidth) / float64(width)
	scaleH := float64(maxHeight) / float64(height)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}

	w := int(float64(width) * scale)
	h := int(float64(height) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

// GenerateThumbnail grabs the frame at frameTime from the video at videoPath,
// scales it to fit the thumbnail box and writes it to thumbnailPath as JPEG.
func GenerateThumbnail(videoPath, thumbnailPath string, frameTime time.Duration) error {
	capture, err := gocv.OpenVideoCapture(videoPath)
	if err != nil {
		return CorruptData(err)
	}
	defer capture.Close()

	if !capture.IsOpened() {
		return CorruptData(fmt.Errorf("video source could not be opened: %s", videoPath))
	}

	fps := capture.Get(gocv.VideoCaptureFPS)
	if fps > 0 {
		frameNumber := float64(int(frameTime.Seconds() * fps))
		capture.Set(gocv.VideoCapturePosFrames, frameNumber)
	}

	frame := gocv.NewMat()
	defer frame.Close()

	if ok := capture.Read(&frame); !ok || frame.Empty() {
		return CorruptData(fmt.Errorf("thumbnail frame could not be read: %s", videoPath))
	}

	width, height := FitWithin(frame.Cols(), frame.Rows(), ThumbnailMaxWidth, ThumbnailMaxHeight)
	if width != frame.Cols() || height != frame.Rows() {
		resized := gocv.NewMat()
		defer resized.Close()

		gocv.Resize(frame, &resized, image.Pt(width, height), 0, 0, gocv.InterpolationArea)
		if ok := gocv.IMWrite(thumbnailPath, resized); !ok {
			return IOError(fmt.Errorf("thumbnail could not be written: %s", thumbnailPath))
		}
		return nil
	}

	if ok := gocv.IMWrite(thumbnailPath, frame); !ok {
		return IOError(fmt.Errorf("thumbnail could not be written: %s", thumbnailPath))
	}
	return nil
}
