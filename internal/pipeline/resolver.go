package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Resolver turns a track ID into a direct download URL.
type Resolver interface {
	Resolve(ctx context.Context, trackID string) (string, error)
}

// RapidAPIResolver resolves track IDs through the RapidAPI song-download
// service. One GET per call, no retries: a resolve is billed upstream, so a
// failure is surfaced to the caller instead of being re-attempted silently.
type RapidAPIResolver struct {
	endpoint string
	apiKey   string
	apiHost  string
	client   *http.Client
}

// NewRapidAPIResolver returns a resolver for the given RapidAPI credentials.
// endpoint is the full downloadSong URL; empty credentials are not rejected
// here — the upstream answers a non-200 and that is reported as usual.
func NewRapidAPIResolver(endpoint, apiKey, apiHost string, timeout time.Duration) *RapidAPIResolver {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &RapidAPIResolver{
		endpoint: endpoint,
		apiKey:   apiKey,
		apiHost:  apiHost,
		client:   &http.Client{Timeout: timeout},
	}
}

// resolveResponse is the one recognized success shape. Anything else is a
// resolution failure, never a panic.
type resolveResponse struct {
	Data struct {
		DownloadLink string `json:"downloadLink"`
	} `json:"data"`
}

// Resolve asks the upstream for the download link of trackID.
func (r *RapidAPIResolver) Resolve(ctx context.Context, trackID string) (string, error) {
	u := r.endpoint + "?songId=" + url.QueryEscape(trackID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrResolutionFailed, err)
	}
	req.Header.Set("x-rapidapi-key", r.apiKey)
	req.Header.Set("x-rapidapi-host", r.apiHost)

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrResolutionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: upstream status %d", ErrResolutionFailed, resp.StatusCode)
	}

	var body resolveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrResolutionFailed, err)
	}
	if body.Data.DownloadLink == "" {
		return "", fmt.Errorf("%w: response has no data.downloadLink", ErrResolutionFailed)
	}
	return body.Data.DownloadLink, nil
}
