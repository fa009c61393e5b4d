package media

import (
	"testing"
	"time"
)

func TestFrameIndex(t *testing.T) {
	cases := []struct {
		name       string
		at         time.Duration
		frameRate  float64
		frameCount float64
		want       float64
	}{
		{"start", 0, 25, 750, 0},
		{"mid stream", 10 * time.Second, 25, 750, 250},
		{"last frame", 29960 * time.Millisecond, 25, 750, 749},
		// Seek clamps an over-seek to exactly the duration; that position
		// maps one past the final frame and must stay decodable.
		{"at duration", 30 * time.Second, 25, 750, 749},
		{"past duration", 31 * time.Second, 25, 750, 749},
		{"negative", -time.Second, 25, 750, 0},
		{"single frame", 0, 30, 1, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := frameIndex(tc.at, tc.frameRate, tc.frameCount)
			if got != tc.want {
				t.Fatalf("frameIndex(%v, %v, %v) = %v, want %v",
					tc.at, tc.frameRate, tc.frameCount, got, tc.want)
			}
		})
	}
}
