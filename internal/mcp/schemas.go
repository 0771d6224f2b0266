package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchCaptionsTool returns the tool definition for search_captions
func searchCaptionsTool() mcp.Tool {
	return mcp.Tool{
		Name: "search_captions",
		Description: "Search video captions with natural language queries. " +
			"Supports date directives (before 1920, 1916-1918), NOT exclusion " +
			"and NEAR(n) proximity operators inside the query text.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (natural language or keywords)",
				},
				"year_start": map[string]interface{}{
					"type":        "integer",
					"description": "Only match videos covering this year or later",
				},
				"year_end": map[string]interface{}{
					"type":        "integer",
					"description": "Only match videos covering this year or earlier",
				},
			},
			Required: []string{"query"},
		},
	}
}

// getVideoTool returns the tool definition for get_video
func getVideoTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_video",
		Description: "Fetch stored metadata for one video by its platform ID",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"video_id": map[string]interface{}{
					"type":        "string",
					"description": "Platform video ID",
				},
			},
			Required: []string{"video_id"},
		},
	}
}

// getStatsTool returns the tool definition for get_stats
func getStatsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_stats",
		Description: "Report caption database statistics",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// clearCacheTool returns the tool definition for clear_cache
func clearCacheTool() mcp.Tool {
	return mcp.Tool{
		Name:        "clear_cache",
		Description: "Drop all cached search responses, use after ingesting new captions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
