package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/transcripta/capsearch/internal/storage"
)

// Ingester loads scraper output into the store: parse -> derive metadata -> store
type Ingester struct {
	store storage.Store
}

// Config contains configuration for an ingest run
type Config struct {
	Workers int // Number of concurrent parse workers (default: runtime.NumCPU())
}

// Statistics summarizes an ingest run
type Statistics struct {
	VideosIngested int
	VideosFailed   int
	SegmentsStored int
	Duration       time.Duration
	ErrorMessages  []string
}

// New creates a new Ingester over the given store
func New(store storage.Store) *Ingester {
	return &Ingester{store: store}
}

// IngestDir ingests every .json and .srt file under root, recursively.
// Hidden directories are skipped.
func (in *Ingester) IngestDir(ctx context.Context, root string, config *Config) (*Statistics, error) {
	files, err := discoverFiles(root)
	if err != nil {
		return nil, fmt.Errorf("failed to discover caption files: %w", err)
	}
	return in.IngestFiles(ctx, files, config)
}

// IngestFiles ingests the given caption files. Parsing runs concurrently;
// writes go through a single goroutine because the store has one writer.
// A file that fails to parse or store is counted and skipped, it does not
// abort the run.
func (in *Ingester) IngestFiles(ctx context.Context, paths []string, config *Config) (*Statistics, error) {
	workers := runtime.NumCPU()
	if config != nil && config.Workers > 0 {
		workers = config.Workers
	}

	startTime := time.Now()
	stats := &Statistics{ErrorMessages: make([]string, 0)}
	var mu sync.Mutex // Protects stats during the concurrent phase

	recordFailure := func(path string, err error) {
		mu.Lock()
		stats.VideosFailed++
		stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", path, err))
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)

	pathCh := make(chan string)
	g.Go(func() error {
		defer close(pathCh)
		for _, path := range paths {
			select {
			case pathCh <- path:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	docCh := make(chan *Document)
	parsers, pctx := errgroup.WithContext(gctx)
	for i := 0; i < workers; i++ {
		parsers.Go(func() error {
			for path := range pathCh {
				doc, err := parseFile(path)
				if err != nil {
					recordFailure(path, err)
					continue
				}
				select {
				case docCh <- doc:
				case <-pctx.Done():
					return pctx.Err()
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(docCh)
		return parsers.Wait()
	})

	g.Go(func() error {
		for doc := range docCh {
			stored, err := in.storeDocument(gctx, doc)
			if err != nil {
				recordFailure(doc.VideoID, err)
				continue
			}
			mu.Lock()
			stats.VideosIngested++
			stats.SegmentsStored += stored
			mu.Unlock()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(startTime)
	return stats, nil
}

// IngestFile ingests a single caption file
func (in *Ingester) IngestFile(ctx context.Context, path string) error {
	doc, err := parseFile(path)
	if err != nil {
		return err
	}
	_, err = in.storeDocument(ctx, doc)
	return err
}

// storeDocument writes one video and its segments in a single transaction
func (in *Ingester) storeDocument(ctx context.Context, doc *Document) (int, error) {
	tx, err := in.store.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Re-ingesting a video replaces its caption track; the delete cascades
	// to the old segments.
	if err := tx.DeleteVideo(ctx, doc.VideoID); err != nil && err != storage.ErrNotFound {
		return 0, err
	}

	video := &storage.Video{
		VideoID:    doc.VideoID,
		Title:      doc.Title,
		Uploader:   doc.Uploader,
		ChannelID:  doc.ChannelID,
		UploadDate: doc.UploadDate,
		Year:       DeriveYear(doc.Title, doc.UploadDate),
		Episode:    DeriveEpisode(doc.Title),
	}
	if err := tx.UpsertVideo(ctx, video); err != nil {
		return 0, err
	}

	segments := make([]*storage.Segment, 0, len(doc.Segments))
	for _, c := range doc.Segments {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}
		segments = append(segments, &storage.Segment{
			StartTime:      c.Start,
			EndTime:        c.End,
			Text:           text,
			SequenceNumber: len(segments) + 1,
		})
	}
	if err := tx.InsertSegments(ctx, doc.VideoID, segments); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit video %s: %w", doc.VideoID, err)
	}
	return len(segments), nil
}

// parseFile dispatches on extension. An SRT file carries no metadata, so
// the file stem stands in for both the video ID and the title.
func parseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ParseDocument(f)
	case ".srt":
		captions, err := ParseSRT(f)
		if err != nil {
			return nil, err
		}
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		return &Document{VideoID: stem, Title: stem, Segments: captions}, nil
	default:
		return nil, fmt.Errorf("unsupported caption format: %s", path)
	}
}

func discoverFiles(root string) ([]string, error) {
	var files []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json", ".srt":
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
