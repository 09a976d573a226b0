package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const copyBufferSize = 32 * 1024

// Fetcher streams a URL to a local file.
type Fetcher interface {
	Fetch(ctx context.Context, downloadURL, destPath string) error
}

// HTTPFetcher downloads binary payloads over plain HTTP. On success exactly
// one file exists at destPath; on any failure no file is left behind, partial
// writes included.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher returns a fetcher whose whole download is bounded by timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

// Fetch streams downloadURL into destPath.
func (f *HTTPFetcher) Fetch(ctx context.Context, downloadURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrFetchFailed, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: upstream status %d", ErrFetchFailed, resp.StatusCode)
	}

	file, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("%w: create file: %v", ErrFetchFailed, err)
	}

	buf := make([]byte, copyBufferSize)
	if _, err := io.CopyBuffer(file, resp.Body, buf); err != nil {
		file.Close()
		os.Remove(destPath)
		return fmt.Errorf("%w: stream body: %v", ErrFetchFailed, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(destPath)
		return fmt.Errorf("%w: close file: %v", ErrFetchFailed, err)
	}
	return nil
}
