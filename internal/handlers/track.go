package handlers

import (
	"errors"
	"net/http"
	"os"

	"spotfetch/internal/dto"
	"spotfetch/internal/pipeline"
	"spotfetch/internal/service"

	"github.com/gin-gonic/gin"
)

// TrackHandler handles catalog search and track download.
type TrackHandler struct {
	searchSvc *service.SearchService
	pipe      *pipeline.Service
}

// NewTrackHandler returns a new TrackHandler.
func NewTrackHandler(searchSvc *service.SearchService, pipe *pipeline.Service) *TrackHandler {
	return &TrackHandler{searchSvc: searchSvc, pipe: pipe}
}

// Search godoc
// @Summary      Search tracks in the catalog
// @Tags         tracks
// @Produce      json
// @Param        q    query     string  true  "Search query"
// @Success      200  {object}  dto.SearchResponse
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/search [get]
func (h *TrackHandler) Search(c *gin.Context) {
	tracks, err := h.searchSvc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		if errors.Is(err, service.ErrMissingQuery) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.SearchResponse{TotalResults: len(tracks), Tracks: tracks})
}

// Download godoc
// @Summary      Download a track as MP3
// @Tags         tracks
// @Accept       json
// @Produce      audio/mpeg
// @Param        body  body  dto.DownloadRequest  true  "Track URL"
// @Success      200   {file}    file
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/download [post]
func (h *TrackHandler) Download(c *gin.Context) {
	var req dto.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "track_url is required"})
		return
	}

	file, err := h.pipe.Download(c.Request.Context(), req.TrackURL)
	if err != nil {
		switch {
		case errors.Is(err, pipeline.ErrMissingParameter):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, pipeline.ErrResolutionFailed),
			errors.Is(err, pipeline.ErrFetchFailed),
			errors.Is(err, pipeline.ErrInternal):
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "download failed"})
		}
		return
	}
	// The file is served exactly once: remove it after the response is
	// written, whether the transfer completed or the client went away.
	defer os.Remove(file.Path)

	c.FileAttachment(file.Path, file.Filename)
}
