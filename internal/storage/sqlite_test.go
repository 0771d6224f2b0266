package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func insertTestVideo(t *testing.T, store *SQLiteStore, videoID, title string, year int, texts ...string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.UpsertVideo(ctx, &Video{
		VideoID: videoID,
		Title:   title,
		Year:    year,
	}))

	segments := make([]*Segment, len(texts))
	for i, text := range texts {
		segments[i] = &Segment{
			StartTime:      float64(i * 10),
			EndTime:        float64(i*10 + 8),
			Text:           text,
			SequenceNumber: i + 1,
		}
	}
	require.NoError(t, store.InsertSegments(ctx, videoID, segments))
}

func TestUpsertAndGetVideo(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	video := &Video{
		VideoID:    "abc123",
		Title:      "Lewis ep12 (1918)",
		Uploader:   "The Series",
		UploadDate: "20240105",
		Year:       1918,
		Episode:    12,
	}
	require.NoError(t, store.UpsertVideo(ctx, video))

	got, err := store.GetVideo(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Lewis ep12 (1918)", got.Title)
	assert.Equal(t, 1918, got.Year)
	assert.Equal(t, 12, got.Episode)

	// Upsert with the same ID updates in place
	video.Title = "Lewis ep12 (1918) remastered"
	require.NoError(t, store.UpsertVideo(ctx, video))

	got, err = store.GetVideo(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Lewis ep12 (1918) remastered", got.Title)
}

func TestGetVideoNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetVideo(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertSegmentsUpdatesCount(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	insertTestVideo(t, store, "v1", "Episode 1", 1917,
		"he arrived at the college",
		"the microscope was a christmas present",
		"father wrote about money again")

	video, err := store.GetVideo(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 3, video.SegmentCount)

	segments, err := store.ListSegmentsByVideo(ctx, "v1")
	require.NoError(t, err)
	require.Len(t, segments, 3)
	assert.Equal(t, 1, segments[0].SequenceNumber)
	assert.Equal(t, "v1", segments[0].VideoID)
}

func TestSearchTextMatchesFTS(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	insertTestVideo(t, store, "v1", "Episode 1", 1917,
		"the microscope was a christmas present",
		"nothing relevant here")
	insertTestVideo(t, store, "v2", "Episode 2", 1918,
		"another christmas but no instrument")

	hits, err := store.SearchText(ctx, `"microscope" AND "christmas"`, 15, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "v1", hits[0].VideoID)
	assert.Equal(t, "Episode 1", hits[0].Title)
	assert.Equal(t, 1917, hits[0].Year)
}

func TestSearchTextYearFilter(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	insertTestVideo(t, store, "early", "Episode 1 (1918)", 1918, "the war was ending")
	insertTestVideo(t, store, "late", "Episode 9 (1925)", 1925, "the war was a memory")
	insertTestVideo(t, store, "unknown", "Untitled clip", 0, "the war again")

	hits, err := store.SearchText(ctx, `"war"`, 15, &SearchFilters{YearEnd: 1919})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "early", hits[0].VideoID)

	hits, err = store.SearchText(ctx, `"war"`, 15, &SearchFilters{YearStart: 1920})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "late", hits[0].VideoID)
}

func TestSearchTextExclusion(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	insertTestVideo(t, store, "v1", "Episode 1", 1917,
		"lewis wrote to his father",
		"lewis wrote to warnie instead")

	hits, err := store.SearchText(ctx, `"lewis"`, 15, &SearchFilters{Exclude: "warnie"})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Contains(t, hits[0].Text, "father")
}

func TestSearchTextMalformedExpression(t *testing.T) {
	store := setupTestStore(t)

	insertTestVideo(t, store, "v1", "Episode 1", 1917, "some text")

	_, err := store.SearchText(context.Background(), `AND AND (`, 15, nil)
	assert.Error(t, err)
}

func TestSearchKeywordRequiresAllKeywords(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	insertTestVideo(t, store, "v1", "Episode 1", 1917,
		"money trouble with his father",
		"money was mentioned alone",
		"trouble was mentioned alone")

	hits, err := store.SearchKeyword(ctx, []string{"money", "trouble"}, 15, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Contains(t, hits[0].Text, "father")
}

func TestSearchKeywordEscapesWildcards(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	insertTestVideo(t, store, "v1", "Episode 1", 1917,
		"a literal 100% statement",
		"one hundred other statements")

	hits, err := store.SearchKeyword(ctx, []string{"100%"}, 15, nil)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Contains(t, hits[0].Text, "literal")
}

func TestGetNeighborSegments(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	insertTestVideo(t, store, "v1", "Episode 1", 1917,
		"segment zero", "segment one", "segment two", "segment three", "segment four")

	// Segments start at 0, 10, 20, 30, 40
	neighbors, err := store.GetNeighborSegments(ctx, "v1", 20, 10)
	require.NoError(t, err)
	require.Len(t, neighbors, 3)
	assert.Equal(t, "segment one", neighbors[0].Text)
	assert.Equal(t, "segment three", neighbors[2].Text)
}

func TestGetSegmentToleratesTruncatedSeconds(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertVideo(ctx, &Video{VideoID: "v1", Title: "Episode 1"}))
	require.NoError(t, store.InsertSegments(ctx, "v1", []*Segment{
		{StartTime: 12.48, EndTime: 15.2, Text: "fractional start", SequenceNumber: 1},
	}))

	// A watch link carries t=12s, not 12.48
	seg, err := store.GetSegment(ctx, "v1", 12)
	require.NoError(t, err)
	assert.Equal(t, "fractional start", seg.Text)
}

func TestDeleteVideoCascadesToSegments(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	insertTestVideo(t, store, "v1", "Episode 1", 1917, "some text")
	require.NoError(t, store.DeleteVideo(ctx, "v1"))

	segments, err := store.ListSegmentsByVideo(ctx, "v1")
	require.NoError(t, err)
	assert.Empty(t, segments)

	// FTS index no longer matches the deleted text
	hits, err := store.SearchText(ctx, `"some"`, 15, nil)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSynonymsSeededByMigration(t *testing.T) {
	store := setupTestStore(t)

	synonyms, err := store.ListSynonyms(context.Background())
	require.NoError(t, err)
	assert.Contains(t, synonyms["tolkien"], "tolkein")
	assert.Contains(t, synonyms["maureen"], "moreen")
}

func TestAddSynonymIdempotent(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AddSynonym(ctx, "boxen", "boxon"))
	require.NoError(t, store.AddSynonym(ctx, "boxen", "boxon"))

	synonyms, err := store.ListSynonyms(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"boxon"}, synonyms["boxen"])
}

func TestStats(t *testing.T) {
	store := setupTestStore(t)

	insertTestVideo(t, store, "v1", "Episode 1", 1917, "one", "two")
	insertTestVideo(t, store, "v2", "Episode 2", 1918, "three")

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.VideoCount)
	assert.Equal(t, 3, stats.SegmentCount)
	assert.True(t, stats.FTSIndexed)
	assert.Greater(t, stats.SynonymCount, 0)
}

func TestTransactionRollback(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	tx, err := store.BeginTx(ctx)
	require.NoError(t, err)

	require.NoError(t, tx.UpsertVideo(ctx, &Video{VideoID: "v1", Title: "Episode 1"}))
	require.NoError(t, tx.Rollback())

	_, err = store.GetVideo(ctx, "v1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQuoteFTSTerm(t *testing.T) {
	assert.Equal(t, `"christmas"`, QuoteFTSTerm("christmas"))
	assert.Equal(t, `"he said ""no"""`, QuoteFTSTerm(`he said "no"`))
}
