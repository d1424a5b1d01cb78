package playback

import (
	"testing"

	"github.com/praagya/vidya/internal/catalog"
)

func TestCanSeek_Table(t *testing.T) {
	cases := []struct {
		videoType catalog.VideoType
		completed bool
		want      bool
	}{
		{catalog.VideoBasic, false, true},
		{catalog.VideoBasic, true, true},
		{catalog.VideoTrackable, false, false},
		{catalog.VideoTrackable, true, true},
		{catalog.VideoTrackableRandom, false, false},
		{catalog.VideoTrackableRandom, true, true},
		{catalog.VideoInteractive, false, false},
		{catalog.VideoInteractive, true, true},
	}
	for _, tc := range cases {
		if got := CanSeek(tc.videoType, tc.completed); got != tc.want {
			t.Errorf("CanSeek(%s, %v) = %v, want %v", tc.videoType, tc.completed, got, tc.want)
		}
	}
}
