package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const masterPlaylist = `#EXTM3U
#EXT-X-VERSION:6
#EXT-X-STREAM-INF:BANDWIDTH=1280000,RESOLUTION=640x360,CODECS="avc1.4d401e,mp4a.40.2"
360p/index.m3u8
#EXT-X-STREAM-INF:BANDWIDTH=2560000,RESOLUTION=1280x720,CODECS="avc1.4d401f,mp4a.40.2"
720p/index.m3u8
`

const mediaPlaylist = `#EXTM3U
#EXT-X-TARGETDURATION:4
#EXTINF:4.0,
seg0.ts
#EXTINF:4.0,
seg1.ts
#EXT-X-ENDLIST
`

func TestValidateStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/good.m3u8":
			w.Write([]byte(mediaPlaylist))
		case "/notaplaylist.m3u8":
			w.Write([]byte("<html>not found</html>"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewChecker(srv.Client())

	if rep := c.ValidateStream(context.Background(), srv.URL+"/good.m3u8"); !rep.IsValid {
		t.Errorf("valid playlist reported invalid: %s", rep.Message)
	}
	if rep := c.ValidateStream(context.Background(), srv.URL+"/notaplaylist.m3u8"); rep.IsValid {
		t.Error("HTML body reported as valid playlist")
	}
	if rep := c.ValidateStream(context.Background(), srv.URL+"/missing.m3u8"); rep.IsValid {
		t.Error("404 reported as valid playlist")
	}
}

func TestParseManifest_Master(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(masterPlaylist))
	}))
	defer srv.Close()

	m, err := NewChecker(srv.Client()).ParseManifest(context.Background(), srv.URL+"/master.m3u8")
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if !m.IsMaster {
		t.Error("master playlist not recognized as master")
	}
	if len(m.Variants) != 2 {
		t.Fatalf("variants = %d, want 2", len(m.Variants))
	}
	v := m.Variants[1]
	if v.Bandwidth != 2560000 || v.Resolution != "1280x720" || v.URI != "720p/index.m3u8" {
		t.Errorf("variant[1] = %+v", v)
	}
	if v.Codecs != "avc1.4d401f,mp4a.40.2" {
		t.Errorf("quoted CODECS with comma mis-parsed: %q", v.Codecs)
	}
}

func TestParseManifest_Media(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(mediaPlaylist))
	}))
	defer srv.Close()

	m, err := NewChecker(srv.Client()).ParseManifest(context.Background(), srv.URL+"/index.m3u8")
	if err != nil {
		t.Fatalf("ParseManifest: %v", err)
	}
	if m.IsMaster || len(m.Variants) != 0 {
		t.Errorf("media playlist parsed as master: %+v", m)
	}
}

func TestParseManifest_NotAPlaylist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{}"))
	}))
	defer srv.Close()

	_, err := NewChecker(srv.Client()).ParseManifest(context.Background(), srv.URL+"/x.m3u8")
	if err == nil {
		t.Fatal("expected error for non-playlist body")
	}
}
