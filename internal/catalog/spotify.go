// Package catalog talks to the Spotify Web API.
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/oauth2/clientcredentials"

	"spotfetch/internal/domain"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
	trackURLPrefix  = "https://open.spotify.com/track/"
)

type spotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []spotifyImage `json:"images"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

type spotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []spotifyArtist `json:"artists"`
	Album        spotifyAlbum    `json:"album"`
	DurationMS   int             `json:"duration_ms"`
	ExternalURLs externalURLs    `json:"external_urls"`
	PreviewURL   *string         `json:"preview_url"`
}

type searchResponse struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

// SpotifyClient queries the Spotify Web API with the client-credentials flow.
// The oauth2 transport caches and refreshes the app token by itself.
type SpotifyClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewSpotifyClient builds a client for the given app credentials.
func NewSpotifyClient(clientID, clientSecret string) (*SpotifyClient, error) {
	if clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("spotify client id and secret are required")
	}
	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}
	return &SpotifyClient{
		httpClient: conf.Client(context.Background()),
		baseURL:    spotifyBaseURL,
	}, nil
}

// SearchTracks runs a track search and reshapes the hits for clients.
func (c *SpotifyClient) SearchTracks(ctx context.Context, query string, limit int) ([]domain.Track, error) {
	if limit <= 0 {
		limit = 10
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("type", "track")
	q.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("spotify search: status %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("spotify search: decode: %w", err)
	}
	return reshapeTracks(body.Tracks.Items), nil
}

func reshapeTracks(items []spotifyTrack) []domain.Track {
	tracks := make([]domain.Track, 0, len(items))
	for _, it := range items {
		t := domain.Track{
			ID:         it.ID,
			Title:      it.Name,
			DurationMS: it.DurationMS,
			SpotifyURL: it.ExternalURLs.Spotify,
			PreviewURL: it.PreviewURL,
			TrackURL:   trackURLPrefix + it.ID,
		}
		if len(it.Artists) > 0 {
			t.Artist = it.Artists[0].Name
		}
		t.Album = it.Album.Name
		if len(it.Album.Images) > 0 {
			cover := it.Album.Images[0].URL
			t.CoverURL = &cover
		}
		tracks = append(tracks, t)
	}
	return tracks
}
