// Package types defines the shared search result and response shapes used
// by the search engine and every surface that exposes it (HTTP, MCP, CLI,
// export).
package types
