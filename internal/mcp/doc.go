// Package mcp implements the Model Context Protocol (MCP) server for the
// caption search engine.
//
// The MCP server exposes four tools to AI assistants:
//   - search_captions: Search video captions with natural language queries
//   - get_video: Fetch stored metadata for one video
//   - get_stats: Report caption database statistics
//   - clear_cache: Drop cached search responses after new ingests
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server communicates with MCP clients via standard input/output.
//
// # Tool: search_captions
//
//	Request:
//	{
//	  "name": "search_captions",
//	  "arguments": {
//	    "query": "money trouble before 1920",
//	    "year_start": 1915
//	  }
//	}
//
// The result text is the engine's JSON response: ranked caption matches
// with timestamps, deep links into the videos and match explanations. A
// query that matches nothing is a normal response with status
// "no_results", not a protocol error.
package mcp
