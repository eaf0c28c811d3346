package framebuffer

import "testing"

func TestClampSize(t *testing.T) {
	tests := []struct {
		w, h         int
		wantW, wantH int32
	}{
		{640, 480, 640, 480},
		{0, 480, 1, 480},
		{640, -5, 640, 1},
		{0, 0, 1, 1},
	}
	for _, tc := range tests {
		w, h := clampSize(tc.w, tc.h)
		if w != tc.wantW || h != tc.wantH {
			t.Errorf("clampSize(%d, %d): expected %dx%d, got %dx%d", tc.w, tc.h, tc.wantW, tc.wantH, w, h)
		}
	}
}
