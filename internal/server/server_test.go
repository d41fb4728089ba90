package server

import (
	"bufio"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func siteDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"index.html":         "<html><body><h1>Home</h1></body></html>",
		"posts/a/index.html": "<html><body>A</body></html>",
		"404.html":           "<html><body>Missing</body></html>",
		"img/abc-320.webp":   "RIFF",
		"assets/css/s.css":   "body{}",
	}
	for name, data := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(data), 0644))
	}
	return dir
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestServeFile(t *testing.T) {
	h := New(siteDir(t), nil).Handler()

	rec := get(t, h, "/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<h1>Home</h1>")
	assert.Contains(t, rec.Body.String(), reloadScript+"</body>")
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")

	rec = get(t, h, "/posts/a")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/posts/a/", rec.Header().Get("Location"))

	rec = get(t, h, "/posts/a/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "A")

	rec = get(t, h, "/img/abc-320.webp")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "immutable")

	rec = get(t, h, "/nope/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing")
}

func TestServeFile_Gzip(t *testing.T) {
	h := New(siteDir(t), nil).Handler()
	req := httptest.NewRequest(http.MethodGet, "/assets/css/s.css", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "body{}", string(body))
}

func TestHub_BroadcastReload(t *testing.T) {
	hub := NewHub()
	ts := httptest.NewServer(hub)
	defer ts.Close()
	defer hub.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	r := bufio.NewReader(resp.Body)
	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "data: connected\n", line)
	assert.Equal(t, 1, hub.Clients())

	hub.Broadcast()
	_, _ = r.ReadString('\n') // blank separator
	line, err = r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "data: reload\n", line)
}

func TestHub_CloseEndsStreams(t *testing.T) {
	hub := NewHub()
	ts := httptest.NewServer(hub)
	defer ts.Close()

	resp, err := http.Get(ts.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	_, err = bufio.NewReader(resp.Body).ReadString('\n')
	require.NoError(t, err)

	hub.Close()
	hub.Close()
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestValidatePath(t *testing.T) {
	base := t.TempDir()
	_, err := validatePath(base, "/posts/a/index.html")
	assert.NoError(t, err)
	_, err = validatePath(base, "../outside")
	assert.Error(t, err)
}

func TestParseFlags(t *testing.T) {
	opts, rest, err := ParseFlags([]string{"-port", "8080", "-drafts", "-baseurl", "https://x.dev"})
	require.NoError(t, err)
	assert.Equal(t, "localhost", opts.Host)
	assert.Equal(t, "8080", opts.Port)
	assert.True(t, opts.BaseURLSet)
	assert.ElementsMatch(t, []string{"-drafts=true", "-baseurl=https://x.dev"}, rest)
}

func TestInjectReload_NoBody(t *testing.T) {
	out := injectReload([]byte("<p>x</p>"))
	assert.True(t, strings.HasSuffix(string(out), reloadScript))
}
