package media

import "testing"

func TestClassifyHeader(t *testing.T) {
	cases := []struct {
		name   string
		header []byte
		want   Kind
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, KindImage},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, KindImage},
		{"gif", []byte("GIF89a"), KindImage},
		{"bmp", []byte("BM\x36\x00"), KindImage},
		{"tiff little endian", []byte{'I', 'I', 0x2A, 0x00}, KindImage},
		{"tiff big endian", []byte{'M', 'M', 0x00, 0x2A}, KindImage},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBP"), KindImage},
		{"avi", []byte("RIFF\x00\x00\x00\x00AVI "), KindVideo},
		{"mp4", []byte("\x00\x00\x00\x20ftypisom"), KindVideo},
		{"matroska", []byte{0x1A, 0x45, 0xDF, 0xA3, 0x01}, KindVideo},
		{"flv", []byte("FLV\x01"), KindVideo},
		{"asf", []byte{0x30, 0x26, 0xB2, 0x75, 0x8E}, KindVideo},
		{"text", []byte("hello world"), KindUnknown},
		{"empty", nil, KindUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyHeader(tc.header); got != tc.want {
				t.Fatalf("ClassifyHeader(%q) = %v, want %v", tc.header, got, tc.want)
			}
		})
	}
}

func TestClassifyPathFallback(t *testing.T) {
	if got := ClassifyPath("/tmp/photo.JPG"); got != KindImage {
		t.Fatalf("ClassifyPath(.JPG) = %v, want image", got)
	}
	if got := ClassifyPath("/tmp/clip.webm"); got != KindVideo {
		t.Fatalf("ClassifyPath(.webm) = %v, want video", got)
	}
	if got := ClassifyPath("/tmp/notes.txt"); got != KindUnknown {
		t.Fatalf("ClassifyPath(.txt) = %v, want unknown", got)
	}
}

func TestClassifyPrefersHeaderOverExtension(t *testing.T) {
	// A video container renamed with an image extension is still a video.
	header := []byte("\x00\x00\x00\x20ftypisom")
	if got := Classify(header, "/tmp/mislabeled.png"); got != KindVideo {
		t.Fatalf("Classify() = %v, want video", got)
	}
}

func TestClassifyFallsBackToExtension(t *testing.T) {
	if got := Classify([]byte("garbage"), "/tmp/frame.bmp"); got != KindImage {
		t.Fatalf("Classify() = %v, want image from extension", got)
	}
}
