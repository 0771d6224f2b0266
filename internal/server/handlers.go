package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/transcripta/capsearch/internal/result"
	"github.com/transcripta/capsearch/internal/storage"
	"github.com/transcripta/capsearch/pkg/types"
)

// searchRequest is the POST /api/search body
type searchRequest struct {
	Query   string               `json:"query" binding:"required"`
	Filters *types.SearchFilters `json:"filters"`
}

// videoResponse is the JSON shape for a stored video
type videoResponse struct {
	VideoID       string `json:"video_id"`
	Title         string `json:"title"`
	Uploader      string `json:"uploader,omitempty"`
	ChannelID     string `json:"channel_id,omitempty"`
	UploadDate    string `json:"upload_date,omitempty"`
	Year          int    `json:"year,omitempty"`
	Episode       int    `json:"episode,omitempty"`
	ThumbnailText string `json:"thumbnail_text,omitempty"`
	SegmentCount  int    `json:"segment_count"`
}

func toVideoResponse(v *storage.Video) videoResponse {
	return videoResponse{
		VideoID:       v.VideoID,
		Title:         v.Title,
		Uploader:      v.Uploader,
		ChannelID:     v.ChannelID,
		UploadDate:    v.UploadDate,
		Year:          v.Year,
		Episode:       v.Episode,
		ThumbnailText: v.ThumbnailText,
		SegmentCount:  v.SegmentCount,
	}
}

// handleSearch runs a search. The engine reports query-level problems in
// the response status, so this always answers 200 for a well-formed body.
func (s *Server) handleSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query field is required"})
		return
	}

	resp := s.engine.Search(c.Request.Context(), req.Query, req.Filters)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListVideos(c *gin.Context) {
	videos, err := s.store.ListVideos(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]videoResponse, len(videos))
	for i, v := range videos {
		out[i] = toVideoResponse(v)
	}
	c.JSON(http.StatusOK, gin.H{"videos": out, "count": len(out)})
}

func (s *Server) handleGetVideo(c *gin.Context) {
	video, err := s.store.GetVideo(c.Request.Context(), c.Param("id"))
	if err == storage.ErrNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toVideoResponse(video))
}

// handleExport runs a search and streams it in the requested format
func (s *Server) handleExport(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}
	format := c.DefaultQuery("format", result.FormatJSON)

	resp := s.engine.Search(c.Request.Context(), query, nil)

	switch format {
	case result.FormatCSV:
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", `attachment; filename="search_results.csv"`)
	case result.FormatPlain:
		c.Header("Content-Type", "text/plain; charset=utf-8")
	case result.FormatJSON:
		c.Header("Content-Type", "application/json")
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported format %q", format)})
		return
	}

	if err := result.Export(c.Writer, resp, format); err != nil {
		// Headers are already out, all we can do is log through gin's recovery
		_ = c.Error(err)
	}
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.engine.Stats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleClearCache(c *gin.Context) {
	s.engine.ClearCache()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (s *Server) handleHealth(c *gin.Context) {
	if _, err := s.engine.Stats(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
