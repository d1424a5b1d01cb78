package source

import (
	"errors"
	"reflect"
	"testing"
)

func TestResolve_InvalidURL(t *testing.T) {
	cases := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"bad scheme", "rtmp://cdn.example.com/live/lesson.mp4"},
		{"file scheme", "file:///tmp/lesson.mp4"},
		{"no host", "https:///lesson.mp4"},
		{"garbage", "ht tp://%zz"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Resolve(tc.url)
			if err == nil {
				t.Fatalf("Resolve(%q) succeeded, want error", tc.url)
			}
			var invalid *InvalidURLError
			if !errors.As(err, &invalid) {
				t.Errorf("error = %v, want *InvalidURLError", err)
			}
		})
	}
}

func TestResolve_FormatDetection(t *testing.T) {
	cases := []struct {
		url  string
		want Format
	}{
		{"https://cdn.example.com/v/lesson.m3u8", FormatHLS},
		{"https://cdn.example.com/v/lesson.M3U8", FormatHLS},
		{"https://cdn.example.com/v/lesson.mpd", FormatDASH},
		{"https://cdn.example.com/v/lesson.mp4", FormatProgressive},
		{"https://cdn.example.com/v/lesson.webm", FormatProgressive},
		{"https://cdn.example.com/v/lesson", FormatProgressive},
	}
	for _, tc := range cases {
		sources, err := Resolve(tc.url)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", tc.url, err)
		}
		if sources[0].Format != tc.want {
			t.Errorf("Resolve(%q) primary format = %s, want %s", tc.url, sources[0].Format, tc.want)
		}
		if sources[0].URI != tc.url {
			t.Errorf("primary URI = %q, want original %q", sources[0].URI, tc.url)
		}
	}
}

func TestResolve_FallbackDerivation(t *testing.T) {
	cases := []struct {
		name     string
		url      string
		wantURIs []string
	}{
		{
			name: "hls gets progressive fallback",
			url:  "https://cdn.example.com/v/lesson.m3u8",
			wantURIs: []string{
				"https://cdn.example.com/v/lesson.m3u8",
				"https://cdn.example.com/v/lesson.mp4",
			},
		},
		{
			name: "dash gets hls then progressive",
			url:  "https://cdn.example.com/v/lesson.mpd",
			wantURIs: []string{
				"https://cdn.example.com/v/lesson.mpd",
				"https://cdn.example.com/v/lesson.m3u8",
				"https://cdn.example.com/v/lesson.mp4",
			},
		},
		{
			name: "progressive gets hls fallback",
			url:  "https://cdn.example.com/v/lesson.mp4",
			wantURIs: []string{
				"https://cdn.example.com/v/lesson.mp4",
				"https://cdn.example.com/v/lesson.m3u8",
			},
		},
		{
			name:     "extensionless gets no fallbacks",
			url:      "https://cdn.example.com/v/lesson",
			wantURIs: []string{"https://cdn.example.com/v/lesson"},
		},
		{
			name: "query string preserved",
			url:  "https://cdn.example.com/v/lesson.m3u8?token=abc",
			wantURIs: []string{
				"https://cdn.example.com/v/lesson.m3u8?token=abc",
				"https://cdn.example.com/v/lesson.mp4?token=abc",
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sources, err := Resolve(tc.url)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			got := make([]string, len(sources))
			for i, s := range sources {
				got[i] = s.URI
			}
			if !reflect.DeepEqual(got, tc.wantURIs) {
				t.Errorf("candidates = %v, want %v", got, tc.wantURIs)
			}
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	const url = "https://cdn.example.com/course/12/chapter/3/lesson.mpd?sig=xyz"
	first, err := Resolve(url)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, err := Resolve(url)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Resolve is not deterministic:\n first = %+v\nsecond = %+v", first, second)
	}
}

func TestResolve_BufferHints(t *testing.T) {
	sources, err := Resolve("https://cdn.example.com/v/lesson.m3u8")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	hls, prog := sources[0], sources[1]
	if hls.Hints.MinBuffer <= prog.Hints.MinBuffer {
		t.Errorf("HLS min buffer %v should exceed progressive %v", hls.Hints.MinBuffer, prog.Hints.MinBuffer)
	}
	for _, s := range sources {
		if s.Hints.MinBuffer <= 0 || s.Hints.MaxBuffer < s.Hints.MinBuffer {
			t.Errorf("source %q has nonsense hints %+v", s.URI, s.Hints)
		}
	}
}
