package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverSendsCredentialsAndTrackID(t *testing.T) {
	var gotKey, gotHost, gotSongID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-rapidapi-key")
		gotHost = r.Header.Get("x-rapidapi-host")
		gotSongID = r.URL.Query().Get("songId")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"downloadLink":"https://cdn.example.com/a.mp3"}}`))
	}))
	defer srv.Close()

	r := NewRapidAPIResolver(srv.URL, "key-1", "host-1", 5*time.Second)
	link, err := r.Resolve(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.mp3", link)
	assert.Equal(t, "key-1", gotKey)
	assert.Equal(t, "host-1", gotHost)
	assert.Equal(t, "abc123", gotSongID)
}

func TestResolverNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	r := NewRapidAPIResolver(srv.URL, "k", "h", 5*time.Second)
	_, err := r.Resolve(context.Background(), "abc")
	require.ErrorIs(t, err, ErrResolutionFailed)
	assert.Contains(t, err.Error(), "403")
}

func TestResolverMalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>rate limited</html>"},
		{"missing data", `{"success":false}`},
		{"missing downloadLink", `{"data":{"somethingElse":"x"}}`},
		{"empty link", `{"data":{"downloadLink":""}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			r := NewRapidAPIResolver(srv.URL, "k", "h", 5*time.Second)
			_, err := r.Resolve(context.Background(), "abc")
			require.ErrorIs(t, err, ErrResolutionFailed)
		})
	}
}

func TestResolverSingleAttempt(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewRapidAPIResolver(srv.URL, "k", "h", 5*time.Second)
	_, err := r.Resolve(context.Background(), "abc")
	require.Error(t, err)
	assert.Equal(t, 1, calls, "no retries")
}
