// Package pipeline implements the track acquisition pipeline: extract the
// track ID from a catalog URL, resolve it to a direct download link and
// stream that link to a uniquely named local file.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"spotfetch/internal/domain"
)

var (
	ErrMissingParameter = errors.New("track reference is required")
	ErrResolutionFailed = errors.New("resolution failed")
	ErrFetchFailed      = errors.New("fetch failed")
	ErrInternal         = errors.New("internal error")
)

// Service orchestrates the three pipeline stages. Each invocation is
// independent: a fresh resolve, a fresh fetch, a fresh file. There is
// intentionally no caching and no retrying.
type Service struct {
	resolver Resolver
	fetcher  Fetcher
	dir      string
	logger   *log.Logger
}

// NewService returns a pipeline writing files into dir. If logger is nil a
// default one is used.
func NewService(resolver Resolver, fetcher Fetcher, dir string, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{resolver: resolver, fetcher: fetcher, dir: dir, logger: logger}
}

// ExtractTrackID returns the substring after the last '/' of ref, or ref
// itself when it contains no '/'. No scheme or host validation: whether the
// token names a real track is the resolver's call.
func ExtractTrackID(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// Download runs the pipeline for trackRef and returns the stored file. On any
// failure the error is one of ErrMissingParameter, ErrResolutionFailed or
// ErrFetchFailed, and no file is left on disk.
func (s *Service) Download(ctx context.Context, trackRef string) (domain.StoredTrackFile, error) {
	trackID := ExtractTrackID(strings.TrimSpace(trackRef))
	if trackID == "" {
		return domain.StoredTrackFile{}, ErrMissingParameter
	}

	downloadURL, err := s.resolver.Resolve(ctx, trackID)
	if err != nil {
		s.logger.Warn("resolve failed", "track_id", trackID, "err", err)
		return domain.StoredTrackFile{}, err
	}

	// A local filesystem fault, not an upstream one: no fetch was attempted.
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return domain.StoredTrackFile{}, fmt.Errorf("%w: downloads dir: %v", ErrInternal, err)
	}

	filename := uuid.New().String() + ".mp3"
	destPath := filepath.Join(s.dir, filename)

	if err := s.fetcher.Fetch(ctx, downloadURL, destPath); err != nil {
		s.logger.Warn("fetch failed", "track_id", trackID, "err", err)
		return domain.StoredTrackFile{}, err
	}

	s.logger.Info("track downloaded", "track_id", trackID, "file", filename)
	return domain.StoredTrackFile{Path: destPath, Filename: filename}, nil
}
