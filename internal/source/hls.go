package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxManifestBytes caps how much of a playlist we read for diagnostics.
const maxManifestBytes = 512 * 1024

// StreamReport is the result of a best-effort HLS stream check. Used only
// for diagnostics and UI badges.
type StreamReport struct {
	IsValid bool
	Message string
}

// Variant is one quality rendition advertised by a master playlist.
type Variant struct {
	URI        string
	Bandwidth  int
	Resolution string
	Codecs     string
}

// Manifest is the parsed diagnostic view of an HLS playlist.
type Manifest struct {
	IsMaster bool
	Variants []Variant
}

// Checker runs HLS diagnostics over HTTP. The zero value is not usable;
// construct with NewChecker.
type Checker struct {
	client *http.Client
}

// NewChecker creates a Checker. A nil client gets a default with a short
// timeout so diagnostics never hang a screen.
func NewChecker(client *http.Client) *Checker {
	if client == nil {
		client = &http.Client{Timeout: 8 * time.Second}
	}
	return &Checker{client: client}
}

// ValidateStream fetches the playlist and reports whether it looks like a
// playable HLS stream. Any failure yields an invalid report, not an error:
// stream checks must never block playback.
func (c *Checker) ValidateStream(ctx context.Context, url string) StreamReport {
	body, err := c.fetch(ctx, url)
	if err != nil {
		return StreamReport{IsValid: false, Message: err.Error()}
	}
	if !strings.HasPrefix(strings.TrimSpace(body), "#EXTM3U") {
		return StreamReport{IsValid: false, Message: "response is not an M3U8 playlist"}
	}
	return StreamReport{IsValid: true, Message: "playlist reachable"}
}

// ParseManifest fetches and parses a playlist. For master playlists the
// advertised variants are returned; media playlists parse to an empty
// variant list with IsMaster=false.
func (c *Checker) ParseManifest(ctx context.Context, url string) (*Manifest, error) {
	body, err := c.fetch(ctx, url)
	if err != nil {
		return nil, &StreamCheckError{URL: url, Err: err}
	}
	m, err := parsePlaylist(body)
	if err != nil {
		return nil, &StreamCheckError{URL: url, Err: err}
	}
	return m, nil
}

func (c *Checker) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxManifestBytes))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func parsePlaylist(body string) (*Manifest, error) {
	trimmed := strings.TrimSpace(body)
	if !strings.HasPrefix(trimmed, "#EXTM3U") {
		return nil, fmt.Errorf("missing #EXTM3U header")
	}

	m := &Manifest{}
	var pending *Variant

	sc := bufio.NewScanner(strings.NewReader(trimmed))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "#EXT-X-STREAM-INF:"):
			m.IsMaster = true
			v := parseStreamInf(strings.TrimPrefix(line, "#EXT-X-STREAM-INF:"))
			pending = &v
		case line == "" || strings.HasPrefix(line, "#"):
			// other tags are irrelevant for diagnostics
		default:
			if pending != nil {
				pending.URI = line
				m.Variants = append(m.Variants, *pending)
				pending = nil
			}
		}
	}
	return m, sc.Err()
}

// parseStreamInf parses the attribute list of an EXT-X-STREAM-INF tag.
// Quoted attribute values may contain commas (CODECS does).
func parseStreamInf(attrs string) Variant {
	var v Variant
	for _, attr := range splitAttrs(attrs) {
		key, val, ok := strings.Cut(attr, "=")
		if !ok {
			continue
		}
		val = strings.Trim(val, `"`)
		switch strings.ToUpper(strings.TrimSpace(key)) {
		case "BANDWIDTH":
			v.Bandwidth, _ = strconv.Atoi(val)
		case "RESOLUTION":
			v.Resolution = val
		case "CODECS":
			v.Codecs = val
		}
	}
	return v
}

func splitAttrs(s string) []string {
	var out []string
	var b strings.Builder
	inQuote := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			b.WriteRune(r)
		case r == ',' && !inQuote:
			out = append(out, b.String())
			b.Reset()
		default:
			b.WriteRune(r)
		}
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}
