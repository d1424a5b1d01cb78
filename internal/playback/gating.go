package playback

import "github.com/praagya/vidya/internal/catalog"

// CanSeek is the seek-gating table. Basic videos always allow seeking; the
// tracked types block all seeking, forward or backward, until the video has
// been watched to completion once. Gating guarantees the learner was exposed
// to required material before unlocking free navigation.
func CanSeek(videoType catalog.VideoType, isCompleted bool) bool {
	if !videoType.Gated() {
		return true
	}
	return isCompleted
}
