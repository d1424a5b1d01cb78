package selfupdate

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetName(t *testing.T) {
	c := NewChecker()

	tests := []struct {
		goos, goarch string
		want         string
		wantErr      bool
	}{
		{"darwin", "amd64", "vidya_Darwin_all.tar.gz", false},
		{"darwin", "arm64", "vidya_Darwin_all.tar.gz", false},
		{"linux", "amd64", "vidya_Linux_x86_64.tar.gz", false},
		{"linux", "arm64", "vidya_Linux_arm64.tar.gz", false},
		{"linux", "386", "vidya_Linux_i386.tar.gz", false},
		{"windows", "amd64", "vidya_Windows_x86_64.zip", false},
		{"freebsd", "amd64", "", true},
		{"linux", "mips", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.goos+"/"+tt.goarch, func(t *testing.T) {
			got, err := c.assetName(tt.goos, tt.goarch)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestChecksumIndex(t *testing.T) {
	input := "aaa111  vidya_Darwin_all.tar.gz\n" +
		"not-a-checksum-line\n" +
		"   \n" +
		"too many fields here\n" +
		"bbb222  vidya_Linux_x86_64.tar.gz\n"

	got := checksumIndex([]byte(input))
	assert.Equal(t, map[string]string{
		"vidya_Darwin_all.tar.gz":   "aaa111",
		"vidya_Linux_x86_64.tar.gz": "bbb222",
	}, got)
	assert.Empty(t, checksumIndex(nil))
}

func TestVerifyChecksum(t *testing.T) {
	data := []byte("release bytes")
	sum := sha256.Sum256(data)

	assert.NoError(t, verifyChecksum(data, hex.EncodeToString(sum[:])))

	err := verifyChecksum(data, hex.EncodeToString(make([]byte, 32)))
	assert.ErrorIs(t, err, ErrChecksum)
}

func TestExtractBinary(t *testing.T) {
	content := []byte("#!/bin/sh\necho vidya")

	t.Run("tar.gz", func(t *testing.T) {
		archive := buildTarGz(t, "vidya", content)
		got, err := extractBinary(archive, "vidya_Linux_x86_64.tar.gz", "vidya")
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("missing entry", func(t *testing.T) {
		archive := buildTarGz(t, "README.md", content)
		_, err := extractBinary(archive, "vidya_Linux_x86_64.tar.gz", "vidya")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestSwapBinary(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "vidya")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0755))

	next := []byte("new binary bytes")
	sum := sha256.Sum256(next)
	require.NoError(t, swapBinary(next, target, sum[:]))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, next, got)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), info.Mode().Perm())
}

// releaseServer serves a latest-release response plus the given download
// files under the real GitHub path layout.
func releaseServer(t *testing.T, tag string, files map[string][]byte) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/repos/praagya/vidya/releases/latest" {
			fmt.Fprintf(w, `{"tag_name":%q,"html_url":"https://example.com/%s"}`, tag, tag)
			return
		}
		prefix := fmt.Sprintf("/praagya/vidya/releases/download/%s/", tag)
		if strings.HasPrefix(r.URL.Path, prefix) {
			if body, ok := files[strings.TrimPrefix(r.URL.Path, prefix)]; ok {
				_, _ = w.Write(body)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestUpdate(t *testing.T) {
	binary := []byte("new vidya build")

	// Update derives the asset from the host platform, so the fixture
	// archive has to match its format.
	asset, err := NewChecker().assetName(runtime.GOOS, runtime.GOARCH)
	require.NoError(t, err)
	var archive []byte
	if strings.HasSuffix(asset, ".zip") {
		archive = buildZip(t, "vidya.exe", binary)
	} else {
		archive = buildTarGz(t, "vidya", binary)
	}
	archiveSum := sha256.Sum256(archive)

	goodFiles := map[string][]byte{
		asset:           archive,
		"checksums.txt": []byte(hex.EncodeToString(archiveSum[:]) + "  " + asset + "\n"),
	}

	t.Run("happy path", func(t *testing.T) {
		dir := t.TempDir()
		exe := filepath.Join(dir, "vidya")
		require.NoError(t, os.WriteFile(exe, []byte("old"), 0755))

		server := releaseServer(t, "v2.0.0", goodFiles)
		c := NewChecker(
			WithBaseURL(server.URL),
			WithDownloadBaseURL(server.URL),
			withExecPath(func() (string, error) { return exe, nil }),
		)

		var stages []string
		err := c.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(p UpdateProgress) {
			stages = append(stages, p.Stage)
		})
		require.NoError(t, err)

		got, err := os.ReadFile(exe)
		require.NoError(t, err)
		assert.Equal(t, binary, got)
		assert.Equal(t, []string{"check", "download", "verify", "extract", "apply", "done"}, stages)
	})

	t.Run("dev build refuses", func(t *testing.T) {
		err := NewChecker().Update(context.Background(), &UpdateInput{CurrentVersion: "(devel)"}, func(UpdateProgress) {})
		assert.ErrorIs(t, err, ErrDevBuild)
	})

	t.Run("already latest", func(t *testing.T) {
		server := releaseServer(t, "v1.0.0", nil)
		c := NewChecker(WithBaseURL(server.URL))
		err := c.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(UpdateProgress) {})
		assert.ErrorIs(t, err, ErrAlreadyLatest)
	})

	t.Run("checksum mismatch", func(t *testing.T) {
		files := map[string][]byte{
			asset:           archive,
			"checksums.txt": []byte(hex.EncodeToString(make([]byte, 32)) + "  " + asset + "\n"),
		}
		server := releaseServer(t, "v2.0.0", files)
		c := NewChecker(WithBaseURL(server.URL), WithDownloadBaseURL(server.URL))
		err := c.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(UpdateProgress) {})
		assert.ErrorIs(t, err, ErrChecksum)
	})

	t.Run("missing release asset", func(t *testing.T) {
		server := releaseServer(t, "v2.0.0", nil)
		c := NewChecker(WithBaseURL(server.URL), WithDownloadBaseURL(server.URL))
		err := c.Update(context.Background(), &UpdateInput{CurrentVersion: "v1.0.0"}, func(UpdateProgress) {})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "download archive")
	})
}

func buildTarGz(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)

	require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Size: int64(len(content)), Mode: 0755}))
	_, err := tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())
	return buf.Bytes()
}

func buildZip(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create(name)
	require.NoError(t, err)
	_, err = f.Write(content)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}
