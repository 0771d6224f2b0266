package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
)

// Document is one scraped video: platform metadata plus its caption track.
// This is the JSON shape the caption scraper writes, one file per video.
type Document struct {
	VideoID    string    `json:"video_id"`
	Title      string    `json:"title"`
	Uploader   string    `json:"uploader"`
	ChannelID  string    `json:"channel_id"`
	UploadDate string    `json:"upload_date"` // YYYYMMDD, may be empty
	Thumbnail  string    `json:"thumbnail"`
	Segments   []Caption `json:"segments"`
}

// Caption is one timestamped span of caption text
type Caption struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// tagPattern strips inline formatting tags left over from VTT conversion
var tagPattern = regexp.MustCompile(`<[^>]+>`)

// ParseDocument decodes a scraper JSON document and validates it
func ParseDocument(r io.Reader) (*Document, error) {
	var doc Document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	if doc.VideoID == "" {
		return nil, fmt.Errorf("document has no video_id")
	}

	for i := range doc.Segments {
		doc.Segments[i].Text = tagPattern.ReplaceAllString(doc.Segments[i].Text, "")
	}
	return &doc, nil
}
