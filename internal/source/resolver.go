package source

import (
	"net/url"
	"path"
	"strings"
)

// Resolve derives the playback candidate list for a raw media URL: the
// original URL first, then deterministic format-coerced fallbacks. The same
// input always yields the same ordered list.
//
// Fallback derivation:
//   - HLS primary        → progressive fallback (.m3u8 → .mp4)
//   - DASH primary       → HLS (.mpd → .m3u8), then progressive (.mpd → .mp4)
//   - progressive primary → HLS fallback (ext → .m3u8)
//
// URLs without a path extension get no fallbacks; there is nothing to coerce.
func Resolve(rawURL string) ([]Source, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, &InvalidURLError{URL: rawURL, Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &InvalidURLError{URL: rawURL, Reason: "scheme must be http or https"}
	}
	if u.Host == "" {
		return nil, &InvalidURLError{URL: rawURL, Reason: "missing host"}
	}

	primary := DetectFormat(u.Path)
	out := []Source{newSource(u.String(), primary)}

	for _, f := range fallbackFormats(primary) {
		coerced, ok := coerceExtension(u, f)
		if !ok {
			continue
		}
		out = append(out, newSource(coerced, f))
	}
	return out, nil
}

// DetectFormat maps a URL path to a Format by extension and streaming
// markers. Unknown extensions are treated as progressive downloads.
func DetectFormat(urlPath string) Format {
	switch strings.ToLower(path.Ext(urlPath)) {
	case ".m3u8":
		return FormatHLS
	case ".mpd":
		return FormatDASH
	default:
		return FormatProgressive
	}
}

func newSource(uri string, f Format) Source {
	return Source{URI: uri, Format: f, Hints: hintsFor(f)}
}

func fallbackFormats(primary Format) []Format {
	switch primary {
	case FormatHLS:
		return []Format{FormatProgressive}
	case FormatDASH:
		return []Format{FormatHLS, FormatProgressive}
	default:
		return []Format{FormatHLS}
	}
}

func extensionFor(f Format) string {
	switch f {
	case FormatHLS:
		return ".m3u8"
	case FormatDASH:
		return ".mpd"
	default:
		return ".mp4"
	}
}

// coerceExtension rewrites the URL path extension to the target format's
// extension, preserving query and fragment. Returns false when the path has
// no extension to rewrite.
func coerceExtension(u *url.URL, target Format) (string, bool) {
	ext := path.Ext(u.Path)
	if ext == "" {
		return "", false
	}
	coerced := *u
	coerced.Path = strings.TrimSuffix(u.Path, ext) + extensionFor(target)
	return coerced.String(), true
}
