package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStore creates a new SQLite store instance
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStore) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, store: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx    *sql.Tx
	store *SQLiteStore
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// querier returns the transaction querier
func (t *sqliteTx) querier() querier {
	return t.tx
}

// querier returns the DB querier
func (s *SQLiteStore) querier() querier {
	return s.db
}

// Video operations

// upsertVideoWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) upsertVideoWithQuerier(ctx context.Context, q querier, video *Video) error {
	query := `
		INSERT INTO videos (video_id, title, uploader, channel_id, upload_date, year, episode, thumbnail_text, segment_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(video_id) DO UPDATE SET
			title = excluded.title,
			uploader = excluded.uploader,
			channel_id = excluded.channel_id,
			upload_date = excluded.upload_date,
			year = excluded.year,
			episode = excluded.episode,
			segment_count = excluded.segment_count,
			updated_at = excluded.updated_at
	`
	now := time.Now()
	_, err := q.ExecContext(ctx, query,
		video.VideoID, video.Title, video.Uploader, video.ChannelID,
		video.UploadDate, video.Year, video.Episode, video.ThumbnailText,
		video.SegmentCount, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert video: %w", err)
	}
	video.CreatedAt = now
	video.UpdatedAt = now
	return nil
}

func (s *SQLiteStore) UpsertVideo(ctx context.Context, video *Video) error {
	return s.upsertVideoWithQuerier(ctx, s.querier(), video)
}

// getVideoWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) getVideoWithQuerier(ctx context.Context, q querier, videoID string) (*Video, error) {
	query := `
		SELECT video_id, title, uploader, channel_id, upload_date, year, episode,
		       thumbnail_text, segment_count, created_at, updated_at
		FROM videos
		WHERE video_id = ?
	`
	var video Video
	var uploader, channelID, uploadDate, thumbnailText sql.NullString
	err := q.QueryRowContext(ctx, query, videoID).Scan(
		&video.VideoID, &video.Title, &uploader, &channelID, &uploadDate,
		&video.Year, &video.Episode, &thumbnailText, &video.SegmentCount,
		&video.CreatedAt, &video.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	video.Uploader = uploader.String
	video.ChannelID = channelID.String
	video.UploadDate = uploadDate.String
	video.ThumbnailText = thumbnailText.String
	return &video, nil
}

func (s *SQLiteStore) GetVideo(ctx context.Context, videoID string) (*Video, error) {
	return s.getVideoWithQuerier(ctx, s.querier(), videoID)
}

// listVideosWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) listVideosWithQuerier(ctx context.Context, q querier) ([]*Video, error) {
	query := `
		SELECT video_id, title, uploader, channel_id, upload_date, year, episode,
		       thumbnail_text, segment_count, created_at, updated_at
		FROM videos
		ORDER BY episode, upload_date, video_id
	`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var videos []*Video
	for rows.Next() {
		var video Video
		var uploader, channelID, uploadDate, thumbnailText sql.NullString
		if err := rows.Scan(
			&video.VideoID, &video.Title, &uploader, &channelID, &uploadDate,
			&video.Year, &video.Episode, &thumbnailText, &video.SegmentCount,
			&video.CreatedAt, &video.UpdatedAt,
		); err != nil {
			return nil, err
		}
		video.Uploader = uploader.String
		video.ChannelID = channelID.String
		video.UploadDate = uploadDate.String
		video.ThumbnailText = thumbnailText.String
		videos = append(videos, &video)
	}
	return videos, rows.Err()
}

func (s *SQLiteStore) ListVideos(ctx context.Context) ([]*Video, error) {
	return s.listVideosWithQuerier(ctx, s.querier())
}

// deleteVideoWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) deleteVideoWithQuerier(ctx context.Context, q querier, videoID string) error {
	result, err := q.ExecContext(ctx, "DELETE FROM videos WHERE video_id = ?", videoID)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteVideo(ctx context.Context, videoID string) error {
	return s.deleteVideoWithQuerier(ctx, s.querier(), videoID)
}

// updateThumbnailTextWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) updateThumbnailTextWithQuerier(ctx context.Context, q querier, videoID, text string) error {
	result, err := q.ExecContext(ctx,
		"UPDATE videos SET thumbnail_text = ?, updated_at = ? WHERE video_id = ?",
		text, time.Now(), videoID)
	if err != nil {
		return fmt.Errorf("failed to update thumbnail text: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) UpdateThumbnailText(ctx context.Context, videoID, text string) error {
	return s.updateThumbnailTextWithQuerier(ctx, s.querier(), videoID, text)
}

// Segment operations

// insertSegmentsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) insertSegmentsWithQuerier(ctx context.Context, q querier, videoID string, segments []*Segment) error {
	query := `
		INSERT INTO segments (video_id, start_time, end_time, text, sequence_number)
		VALUES (?, ?, ?, ?, ?)
	`
	for _, seg := range segments {
		result, err := q.ExecContext(ctx, query,
			videoID, seg.StartTime, seg.EndTime, seg.Text, seg.SequenceNumber)
		if err != nil {
			return fmt.Errorf("failed to insert segment %d for video %s: %w", seg.SequenceNumber, videoID, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return err
		}
		seg.ID = id
		seg.VideoID = videoID
	}

	_, err := q.ExecContext(ctx,
		"UPDATE videos SET segment_count = (SELECT COUNT(*) FROM segments WHERE video_id = ?), updated_at = ? WHERE video_id = ?",
		videoID, time.Now(), videoID)
	if err != nil {
		return fmt.Errorf("failed to update segment count: %w", err)
	}
	return nil
}

func (s *SQLiteStore) InsertSegments(ctx context.Context, videoID string, segments []*Segment) error {
	return s.insertSegmentsWithQuerier(ctx, s.querier(), videoID, segments)
}

// listSegmentsByVideoWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) listSegmentsByVideoWithQuerier(ctx context.Context, q querier, videoID string) ([]*Segment, error) {
	query := `
		SELECT id, video_id, start_time, end_time, text, sequence_number
		FROM segments
		WHERE video_id = ?
		ORDER BY sequence_number
	`
	rows, err := q.QueryContext(ctx, query, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to list segments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSegments(rows)
}

func (s *SQLiteStore) ListSegmentsByVideo(ctx context.Context, videoID string) ([]*Segment, error) {
	return s.listSegmentsByVideoWithQuerier(ctx, s.querier(), videoID)
}

// getSegmentWithQuerier finds the segment at or nearest to a start time.
// Timestamps from links are truncated to whole seconds, so exact equality
// is too strict; the nearest segment within one second wins.
func (s *SQLiteStore) getSegmentWithQuerier(ctx context.Context, q querier, videoID string, startTime float64) (*Segment, error) {
	query := `
		SELECT id, video_id, start_time, end_time, text, sequence_number
		FROM segments
		WHERE video_id = ? AND start_time >= ? AND start_time < ?
		ORDER BY start_time
		LIMIT 1
	`
	var seg Segment
	err := q.QueryRowContext(ctx, query, videoID, startTime, startTime+1.0).Scan(
		&seg.ID, &seg.VideoID, &seg.StartTime, &seg.EndTime, &seg.Text, &seg.SequenceNumber,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &seg, nil
}

func (s *SQLiteStore) GetSegment(ctx context.Context, videoID string, startTime float64) (*Segment, error) {
	return s.getSegmentWithQuerier(ctx, s.querier(), videoID, startTime)
}

// getNeighborSegmentsWithQuerier returns segments within the time window around startTime
func (s *SQLiteStore) getNeighborSegmentsWithQuerier(ctx context.Context, q querier, videoID string, startTime, window float64) ([]*Segment, error) {
	query := `
		SELECT id, video_id, start_time, end_time, text, sequence_number
		FROM segments
		WHERE video_id = ? AND start_time >= ? AND start_time <= ?
		ORDER BY start_time
	`
	rows, err := q.QueryContext(ctx, query, videoID, startTime-window, startTime+window)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch neighbor segments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSegments(rows)
}

func (s *SQLiteStore) GetNeighborSegments(ctx context.Context, videoID string, startTime, window float64) ([]*Segment, error) {
	return s.getNeighborSegmentsWithQuerier(ctx, s.querier(), videoID, startTime, window)
}

func scanSegments(rows *sql.Rows) ([]*Segment, error) {
	var segments []*Segment
	for rows.Next() {
		var seg Segment
		if err := rows.Scan(&seg.ID, &seg.VideoID, &seg.StartTime, &seg.EndTime, &seg.Text, &seg.SequenceNumber); err != nil {
			return nil, err
		}
		segments = append(segments, &seg)
	}
	return segments, rows.Err()
}

// Synonym operations

// listSynonymsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) listSynonymsWithQuerier(ctx context.Context, q querier) (map[string][]string, error) {
	rows, err := q.QueryContext(ctx, "SELECT term, variant FROM synonyms ORDER BY term, variant")
	if err != nil {
		return nil, fmt.Errorf("failed to list synonyms: %w", err)
	}
	defer func() { _ = rows.Close() }()

	synonyms := make(map[string][]string)
	for rows.Next() {
		var term, variant string
		if err := rows.Scan(&term, &variant); err != nil {
			return nil, err
		}
		synonyms[term] = append(synonyms[term], variant)
	}
	return synonyms, rows.Err()
}

func (s *SQLiteStore) ListSynonyms(ctx context.Context) (map[string][]string, error) {
	return s.listSynonymsWithQuerier(ctx, s.querier())
}

// addSynonymWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) addSynonymWithQuerier(ctx context.Context, q querier, term, variant string) error {
	_, err := q.ExecContext(ctx,
		"INSERT OR IGNORE INTO synonyms (term, variant) VALUES (?, ?)", term, variant)
	if err != nil {
		return fmt.Errorf("failed to add synonym: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AddSynonym(ctx context.Context, term, variant string) error {
	return s.addSynonymWithQuerier(ctx, s.querier(), term, variant)
}

// Status operations

// statsWithQuerier is the internal implementation that uses a querier
func (s *SQLiteStore) statsWithQuerier(ctx context.Context, q querier) (*StoreStats, error) {
	stats := &StoreStats{}

	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM videos").Scan(&stats.VideoCount); err != nil {
		return nil, fmt.Errorf("failed to count videos: %w", err)
	}
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM segments").Scan(&stats.SegmentCount); err != nil {
		return nil, fmt.Errorf("failed to count segments: %w", err)
	}
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM synonyms").Scan(&stats.SynonymCount); err != nil {
		return nil, fmt.Errorf("failed to count synonyms: %w", err)
	}

	var name string
	err := q.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='segments_fts'").Scan(&name)
	stats.FTSIndexed = err == nil

	return stats, nil
}

func (s *SQLiteStore) Stats(ctx context.Context) (*StoreStats, error) {
	return s.statsWithQuerier(ctx, s.querier())
}

// Transaction method implementations delegate to the store's internal
// implementations with the transaction querier.

func (t *sqliteTx) UpsertVideo(ctx context.Context, video *Video) error {
	return t.store.upsertVideoWithQuerier(ctx, t.querier(), video)
}

func (t *sqliteTx) GetVideo(ctx context.Context, videoID string) (*Video, error) {
	return t.store.getVideoWithQuerier(ctx, t.querier(), videoID)
}

func (t *sqliteTx) ListVideos(ctx context.Context) ([]*Video, error) {
	return t.store.listVideosWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) DeleteVideo(ctx context.Context, videoID string) error {
	return t.store.deleteVideoWithQuerier(ctx, t.querier(), videoID)
}

func (t *sqliteTx) UpdateThumbnailText(ctx context.Context, videoID, text string) error {
	return t.store.updateThumbnailTextWithQuerier(ctx, t.querier(), videoID, text)
}

func (t *sqliteTx) InsertSegments(ctx context.Context, videoID string, segments []*Segment) error {
	return t.store.insertSegmentsWithQuerier(ctx, t.querier(), videoID, segments)
}

func (t *sqliteTx) ListSegmentsByVideo(ctx context.Context, videoID string) ([]*Segment, error) {
	return t.store.listSegmentsByVideoWithQuerier(ctx, t.querier(), videoID)
}

func (t *sqliteTx) GetSegment(ctx context.Context, videoID string, startTime float64) (*Segment, error) {
	return t.store.getSegmentWithQuerier(ctx, t.querier(), videoID, startTime)
}

func (t *sqliteTx) GetNeighborSegments(ctx context.Context, videoID string, startTime, window float64) ([]*Segment, error) {
	return t.store.getNeighborSegmentsWithQuerier(ctx, t.querier(), videoID, startTime, window)
}

func (t *sqliteTx) ListSynonyms(ctx context.Context) (map[string][]string, error) {
	return t.store.listSynonymsWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) AddSynonym(ctx context.Context, term, variant string) error {
	return t.store.addSynonymWithQuerier(ctx, t.querier(), term, variant)
}

func (t *sqliteTx) SearchText(ctx context.Context, match string, limit int, filters *SearchFilters) ([]SegmentHit, error) {
	return searchTextWithQuerier(ctx, t.querier(), match, limit, filters)
}

func (t *sqliteTx) SearchKeyword(ctx context.Context, keywords []string, limit int, filters *SearchFilters) ([]SegmentHit, error) {
	return searchKeywordWithQuerier(ctx, t.querier(), keywords, limit, filters)
}

func (t *sqliteTx) Stats(ctx context.Context) (*StoreStats, error) {
	return t.store.statsWithQuerier(ctx, t.querier())
}

func (t *sqliteTx) Close() error {
	return nil // The owning store manages the connection
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	return nil, fmt.Errorf("nested transactions are not supported")
}
