package media

import "testing"

func TestFitWithin(t *testing.T) {
	cases := []struct {
		name         string
		w, h         int
		wantW, wantH int
	}{
		{"already fits", 300, 200, 300, 200},
		{"exact fit", 320, 240, 320, 240},
		{"wide video", 1920, 1080, 320, 180},
		{"tall image", 480, 960, 120, 240},
		{"square", 1000, 1000, 240, 240},
		{"tiny", 16, 16, 16, 16},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotW, gotH := FitWithin(tc.w, tc.h, ThumbnailMaxWidth, ThumbnailMaxHeight)
			if gotW != tc.wantW || gotH != tc.wantH {
				t.Fatalf("FitWithin(%d, %d) = (%d, %d), want (%d, %d)",
					tc.w, tc.h, gotW, gotH, tc.wantW, tc.wantH)
			}
		})
	}
}

func TestFitWithinDegenerateInput(t *testing.T) {
	if w, h := FitWithin(0, 100, ThumbnailMaxWidth, ThumbnailMaxHeight); w != 0 || h != 100 {
		t.Fatalf("FitWithin(0, 100) = (%d, %d), want passthrough", w, h)
	}
}
