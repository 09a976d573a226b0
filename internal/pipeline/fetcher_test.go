package pipeline

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcherWritesPayload(t *testing.T) {
	payload := bytes.Repeat([]byte("mp3-frame "), 10000) // bigger than one copy buffer
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.mp3")
	f := NewHTTPFetcher(10 * time.Second)
	require.NoError(t, f.Fetch(context.Background(), srv.URL, dest))

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestFetcherNon200CreatesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.mp3")
	f := NewHTTPFetcher(10 * time.Second)
	err := f.Fetch(context.Background(), srv.URL, dest)
	require.ErrorIs(t, err, ErrFetchFailed)
	assert.Contains(t, err.Error(), "404")

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "no file may be created on failure")
}

func TestFetcherRemovesPartialFileOnTruncatedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Announce more bytes than are sent, so the client sees an
		// unexpected EOF mid-stream.
		w.Header().Set("Content-Length", strconv.Itoa(1<<20))
		w.Write(bytes.Repeat([]byte("x"), 1024))
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "out.mp3")
	f := NewHTTPFetcher(10 * time.Second)
	err := f.Fetch(context.Background(), srv.URL, dest)
	require.ErrorIs(t, err, ErrFetchFailed)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "partial file must be removed")
}

func TestFetcherUnreachableHost(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out.mp3")
	f := NewHTTPFetcher(2 * time.Second)
	err := f.Fetch(context.Background(), "http://127.0.0.1:1/file", dest)
	require.ErrorIs(t, err, ErrFetchFailed)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}
