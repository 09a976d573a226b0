package domain

// Track is a catalog search hit, already reshaped for clients.
type Track struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	Album      string  `json:"album"`
	CoverURL   *string `json:"cover_url"`
	DurationMS int     `json:"duration_ms"`
	SpotifyURL string  `json:"spotify_url"`
	PreviewURL *string `json:"preview_url"`
	TrackURL   string  `json:"track_url"`
}

// StoredTrackFile is a downloaded track on local disk. The invocation that
// produced it owns the file until it is handed off for transmission.
type StoredTrackFile struct {
	Path     string
	Filename string
}
