// Package storage provides SQLite-based persistence for caption data.
//
// The storage layer manages:
//   - Video metadata (title, uploader, upload date, thumbnail description)
//   - Timestamped caption segments
//   - An FTS5 full-text index over segment text
//   - Transcription-error synonym variants
//
// # Database Schema
//
// Tables:
//   - videos: Source recording metadata, keyed by platform video ID
//   - segments: Timestamped transcript spans, ordered by sequence number
//   - segments_fts: FTS5 full-text search index kept in sync by triggers
//   - synonyms: Known transcription-error variants per canonical term
//
// # Basic Usage
//
//	store, err := storage.NewSQLiteStore("captions.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	hits, err := store.SearchText(ctx, `"microscope" AND "christmas"`, 15, nil)
//
// # Transactions
//
// Ingestion writes each video's segments atomically:
//
//	tx, err := store.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer tx.Rollback()
//
//	if err := tx.UpsertVideo(ctx, video); err != nil {
//	    return err
//	}
//	if err := tx.InsertSegments(ctx, video.VideoID, segments); err != nil {
//	    return err
//	}
//	return tx.Commit()
//
// # Build Modes
//
// Two SQLite drivers are supported via build tags: the default pure Go
// driver (modernc.org/sqlite) and the cgo driver (mattn/go-sqlite3) when
// built with -tags "sqlite_fts5,fts5".
package storage
