package media

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Kind is the media variant hosted by a canvas surface. Every operation on a
// resource dispatches on it explicitly; there is no third variant.
type Kind int

const (
	KindUnknown Kind = iota
	KindImage
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".webp": true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
}

// ClassifyHeader sniffs the media kind from the first bytes of the content.
// Classification never trusts a caller-declared kind; the extension is only
// consulted when the header is inconclusive.
func ClassifyHeader(header []byte) Kind {
	if len(header) >= 3 && bytes.Equal(header[:3], []byte{0xFF, 0xD8, 0xFF}) {
		return KindImage // JPEG
	}
	if len(header) >= 8 && bytes.Equal(header[:8], []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}) {
		return KindImage
	}
	if len(header) >= 4 && bytes.Equal(header[:4], []byte("GIF8")) {
		return KindImage
	}
	if len(header) >= 2 && bytes.Equal(header[:2], []byte("BM")) {
		return KindImage
	}
	if len(header) >= 4 && (bytes.Equal(header[:4], []byte{'I', 'I', 0x2A, 0x00}) ||
		bytes.Equal(header[:4], []byte{'M', 'M', 0x00, 0x2A})) {
		return KindImage // TIFF
	}
	if len(header) >= 12 && bytes.Equal(header[:4], []byte("RIFF")) {
		switch {
		case bytes.Equal(header[8:12], []byte("WEBP")):
			return KindImage
		case bytes.Equal(header[8:12], []byte("AVI ")):
			return KindVideo
		}
	}
	if len(header) >= 12 && bytes.Equal(header[4:8], []byte("ftyp")) {
		return KindVideo // MP4 family (mp4, m4v, mov)
	}
	if len(header) >= 4 && bytes.Equal(header[:4], []byte{0x1A, 0x45, 0xDF, 0xA3}) {
		return KindVideo // Matroska / WebM
	}
	if len(header) >= 3 && bytes.Equal(header[:3], []byte("FLV")) {
		return KindVideo
	}
	if len(header) >= 4 && bytes.Equal(header[:4], []byte{0x30, 0x26, 0xB2, 0x75}) {
		return KindVideo // ASF / WMV
	}
	return KindUnknown
}

// ClassifyPath falls back to the extension lists carried over from the
// original application's file dialogs.
func ClassifyPath(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case imageExtensions[ext]:
		return KindImage
	case videoExtensions[ext]:
		return KindVideo
	default:
		return KindUnknown
	}
}

// Classify combines header sniffing with the extension fallback.
func Classify(header []byte, path string) Kind {
	if kind := ClassifyHeader(header); kind != KindUnknown {
		return kind
	}
	return ClassifyPath(path)
}
