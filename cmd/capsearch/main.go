package main

import (
	"log"
	"os"
)

func main() {
	// Log to stderr; stdout carries command output and, in mcp mode, the
	// MCP protocol stream.
	log.SetOutput(os.Stderr)

	if err := Execute(); err != nil {
		log.Fatalf("capsearch: %v", err)
	}
}
