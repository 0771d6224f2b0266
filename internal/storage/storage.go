package storage

import (
	"context"
	"time"
)

// Store defines the interface for persisting and querying caption data
type Store interface {
	// Video operations
	UpsertVideo(ctx context.Context, video *Video) error
	GetVideo(ctx context.Context, videoID string) (*Video, error)
	ListVideos(ctx context.Context) ([]*Video, error)
	DeleteVideo(ctx context.Context, videoID string) error
	UpdateThumbnailText(ctx context.Context, videoID, text string) error

	// Segment operations
	InsertSegments(ctx context.Context, videoID string, segments []*Segment) error
	ListSegmentsByVideo(ctx context.Context, videoID string) ([]*Segment, error)
	GetSegment(ctx context.Context, videoID string, startTime float64) (*Segment, error)
	GetNeighborSegments(ctx context.Context, videoID string, startTime, window float64) ([]*Segment, error)

	// Synonym operations
	ListSynonyms(ctx context.Context) (map[string][]string, error)
	AddSynonym(ctx context.Context, term, variant string) error

	// Search operations
	SearchText(ctx context.Context, match string, limit int, filters *SearchFilters) ([]SegmentHit, error)
	SearchKeyword(ctx context.Context, keywords []string, limit int, filters *SearchFilters) ([]SegmentHit, error)

	// Status operations
	Stats(ctx context.Context) (*StoreStats, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Store // Embed Store interface for transaction operations
}

// Video represents a source recording
type Video struct {
	VideoID       string
	Title         string
	Uploader      string
	ChannelID     string
	UploadDate    string // YYYYMMDD as provided by the platform, may be empty
	Year          int    // Year extracted from title or upload date, 0 if unknown
	Episode       int    // Episode number extracted from title, 0 if unknown
	ThumbnailText string
	SegmentCount  int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Segment represents one timestamped span of transcript text
type Segment struct {
	ID             int64
	VideoID        string
	StartTime      float64
	EndTime        float64
	Text           string
	SequenceNumber int
}

// SegmentHit is a search match joined to its parent video
type SegmentHit struct {
	VideoID        string
	Title          string
	Year           int
	StartTime      float64
	EndTime        float64
	Text           string
	SequenceNumber int
}

// SearchFilters narrows search results by video date and excluded text
type SearchFilters struct {
	YearStart int    // Inclusive lower bound on video year, 0 = unbounded
	YearEnd   int    // Inclusive upper bound on video year, 0 = unbounded
	Exclude   string // Substring that must not appear in segment text
	VideoIDs  []string
}

// StoreStats contains statistics about the caption store
type StoreStats struct {
	VideoCount   int
	SegmentCount int
	SynonymCount int
	FTSIndexed   bool
}
