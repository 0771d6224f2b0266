package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/transcripta/capsearch/internal/storage"
	"github.com/transcripta/capsearch/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeVideoNotFound = -32001 // Requested video is not in the database
	ErrorCodeEmptyQuery    = -32004 // Query parameter is empty
)

// handleSearchCaptions handles the search_captions tool invocation
func (s *Server) handleSearchCaptions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	var filters *types.SearchFilters
	yearStart := getIntDefault(args, "year_start", 0)
	yearEnd := getIntDefault(args, "year_end", 0)
	if yearStart > 0 || yearEnd > 0 {
		filters = &types.SearchFilters{YearStart: yearStart, YearEnd: yearEnd}
	}

	resp := s.engine.Search(ctx, query, filters)

	encoded, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return mcp.NewToolResultText(string(encoded)), nil
}

// handleGetVideo handles the get_video tool invocation
func (s *Server) handleGetVideo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	videoID, _ := args["video_id"].(string)
	if videoID == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "video_id parameter is required", map[string]interface{}{
			"param":  "video_id",
			"reason": "missing or empty",
		})
	}

	video, err := s.store.GetVideo(ctx, videoID)
	if err == storage.ErrNotFound {
		return nil, newMCPError(ErrorCodeVideoNotFound, "video not found", map[string]interface{}{
			"video_id": videoID,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get video", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"video_id":       video.VideoID,
		"title":          video.Title,
		"uploader":       video.Uploader,
		"channel_id":     video.ChannelID,
		"upload_date":    video.UploadDate,
		"year":           video.Year,
		"episode":        video.Episode,
		"thumbnail_text": video.ThumbnailText,
		"segment_count":  video.SegmentCount,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStats handles the get_stats tool invocation
func (s *Server) handleGetStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.engine.Stats(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get statistics", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"videos":      stats.VideoCount,
		"segments":    stats.SegmentCount,
		"synonyms":    stats.SynonymCount,
		"fts_indexed": stats.FTSIndexed,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleClearCache handles the clear_cache tool invocation
func (s *Server) handleClearCache(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.engine.ClearCache()
	return mcp.NewToolResultText(formatJSON(map[string]interface{}{
		"status": "cleared",
	})), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}
