package dto

import "spotfetch/internal/domain"

// DownloadRequest is the JSON body for POST /api/download.
type DownloadRequest struct {
	TrackURL string `json:"track_url"`
}

// SearchResponse is returned by GET /api/search.
type SearchResponse struct {
	TotalResults int            `json:"total_results"`
	Tracks       []domain.Track `json:"tracks"`
}
