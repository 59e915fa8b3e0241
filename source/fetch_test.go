package source

import (
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheKey(t *testing.T) {
	key := cacheKey("https://example.com/logo.png")
	assert.Len(t, key, 8)
	assert.Equal(t, key, cacheKey("https://example.com/logo.png"))
	assert.NotEqual(t, key, cacheKey("https://example.com/other.png"))
}

func TestIsIconSet(t *testing.T) {
	assert.True(t, IsIconSet("mdi"))
	assert.True(t, IsIconSet("mdil"))
	assert.True(t, IsIconSet("memory"))
	assert.False(t, IsIconSet("http"))
}

func TestFetcherDownload(t *testing.T) {
	hits := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		require.NoError(t, png.Encode(w, image.NewNRGBA(image.Rect(0, 0, 1, 1))))
	}))
	defer ts.Close()

	f, err := NewFetcher(t.TempDir(), nil)
	require.NoError(t, err)
	defer f.Close()

	path, err := f.Download(ts.URL + "/logo.png")
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, 1, hits)

	// The second fetch is served from the cache.
	again, err := f.Download(ts.URL + "/logo.png")
	require.NoError(t, err)
	assert.Equal(t, path, again)
	assert.Equal(t, 1, hits)

	// A vanished cache file is downloaded again.
	require.NoError(t, os.Remove(path))
	_, err = f.Download(ts.URL + "/logo.png")
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
}

func TestFetcherDownloadNotFound(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	f, err := NewFetcher(t.TempDir(), nil)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Download(ts.URL + "/missing.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetcherResolveLocal(t *testing.T) {
	f, err := NewFetcher(t.TempDir(), nil)
	require.NoError(t, err)
	defer f.Close()

	path := writePNG(t, t.TempDir(), color.NRGBA{A: 0xFF})
	src, err := f.Resolve(Ref{Kind: Local, Value: path}, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, src.FrameCount())

	_, err = f.Resolve(Ref{Kind: SDCard, Value: "/img/a.bmp"}, 0, 0)
	assert.Error(t, err)
}

func TestFetcherUnknownIconSet(t *testing.T) {
	f, err := NewFetcher(t.TempDir(), nil)
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Icon("nope", "home")
	assert.Error(t, err)
}
