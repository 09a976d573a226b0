package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dom "spotfetch/internal/domain"
	"spotfetch/internal/pipeline"
	"spotfetch/internal/service"
)

type stubResolver struct {
	url string
	err error
}

func (r *stubResolver) Resolve(context.Context, string) (string, error) { return r.url, r.err }

type stubFetcher struct {
	payload []byte
	err     error
}

func (f *stubFetcher) Fetch(_ context.Context, _ string, destPath string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(destPath, f.payload, 0o644)
}

func newTrackRouter(t *testing.T, resolver pipeline.Resolver, fetcher pipeline.Fetcher, catalog service.TrackSearcher) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	pipe := pipeline.NewService(resolver, fetcher, dir, nil)
	h := NewTrackHandler(service.NewSearchService(catalog, nil), pipe)

	r := gin.New()
	r.GET("/api/search", h.Search)
	r.POST("/api/download", h.Download)
	return r, dir
}

type stubCatalog struct {
	tracks []dom.Track
	err    error
}

func (c *stubCatalog) SearchTracks(context.Context, string, int) ([]dom.Track, error) {
	return c.tracks, c.err
}

func TestSearchEndpoint(t *testing.T) {
	preview := "https://p.example.com/p.mp3"
	catalog := &stubCatalog{tracks: []dom.Track{{
		ID:         "t1",
		Title:      "Song",
		Artist:     "Band",
		Album:      "Album",
		DurationMS: 180000,
		SpotifyURL: "https://open.spotify.com/track/t1",
		PreviewURL: &preview,
		TrackURL:   "https://open.spotify.com/track/t1",
	}}}
	r, _ := newTrackRouter(t, &stubResolver{}, &stubFetcher{}, catalog)

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=song", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		TotalResults int         `json:"total_results"`
		Tracks       []dom.Track `json:"tracks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 1, body.TotalResults)
	require.Len(t, body.Tracks, 1)
	assert.Equal(t, "t1", body.Tracks[0].ID)
}

func TestSearchEndpointMissingQuery(t *testing.T) {
	r, _ := newTrackRouter(t, &stubResolver{}, &stubFetcher{}, &stubCatalog{})

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchEndpointUpstreamError(t *testing.T) {
	r, _ := newTrackRouter(t, &stubResolver{}, &stubFetcher{}, &stubCatalog{err: fmt.Errorf("status 502")})

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=x", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestDownloadEndpointMissingField(t *testing.T) {
	r, _ := newTrackRouter(t, &stubResolver{}, &stubFetcher{}, &stubCatalog{})

	for _, body := range []string{``, `{}`, `{"track_url":""}`} {
		w := postJSON(r, "/api/download", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
	}
}

func TestDownloadEndpointResolutionFailure(t *testing.T) {
	resolver := &stubResolver{err: fmt.Errorf("%w: upstream status 403", pipeline.ErrResolutionFailed)}
	r, dir := newTrackRouter(t, resolver, &stubFetcher{}, &stubCatalog{})

	w := postJSON(r, "/api/download", `{"track_url":"https://open.spotify.com/track/abc"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, errorField(t, w), "resolution failed")
	assertNoFiles(t, dir)
}

func TestDownloadEndpointFetchFailure(t *testing.T) {
	fetcher := &stubFetcher{err: fmt.Errorf("%w: upstream status 404", pipeline.ErrFetchFailed)}
	r, dir := newTrackRouter(t, &stubResolver{url: "http://cdn/x"}, fetcher, &stubCatalog{})

	w := postJSON(r, "/api/download", `{"track_url":"https://open.spotify.com/track/abc"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, errorField(t, w), "fetch failed")
	assertNoFiles(t, dir)
}

func TestDownloadEndpointServesAndDeletes(t *testing.T) {
	payload := []byte("binary mp3 content")
	r, dir := newTrackRouter(t, &stubResolver{url: "http://cdn/x"}, &stubFetcher{payload: payload}, &stubCatalog{})

	w := postJSON(r, "/api/download", `{"track_url":"https://open.spotify.com/track/abc"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payload, w.Body.Bytes())

	disposition := w.Header().Get("Content-Disposition")
	assert.Contains(t, disposition, "attachment")
	assert.Contains(t, disposition, ".mp3")

	// Served exactly once: the artifact does not outlive the response.
	assertNoFiles(t, dir)
}

func assertNoFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return
	}
	require.NoError(t, err)
	assert.Empty(t, entries)
}
