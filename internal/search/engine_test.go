package search

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transcripta/capsearch/internal/rank"
	"github.com/transcripta/capsearch/internal/result"
	"github.com/transcripta/capsearch/internal/storage"
	"github.com/transcripta/capsearch/pkg/types"
)

func setupTestEngine(t *testing.T, cfg Config) (*Engine, *storage.SQLiteStore) {
	t.Helper()

	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	engine, err := NewEngine(store, cfg)
	require.NoError(t, err)
	return engine, store
}

func addVideo(t *testing.T, store *storage.SQLiteStore, videoID, title string, year int, texts ...string) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, store.UpsertVideo(ctx, &storage.Video{VideoID: videoID, Title: title, Year: year}))
	segments := make([]*storage.Segment, len(texts))
	for i, text := range texts {
		segments[i] = &storage.Segment{
			StartTime:      float64(i * 30),
			EndTime:        float64(i*30 + 8),
			Text:           text,
			SequenceNumber: i + 1,
		}
	}
	require.NoError(t, store.InsertSegments(ctx, videoID, segments))
}

func TestSearchEmptyQuery(t *testing.T) {
	engine, _ := setupTestEngine(t, Config{})

	resp := engine.Search(context.Background(), "   ", nil)

	assert.Equal(t, types.StatusNoQuery, resp.Status)
	assert.Empty(t, resp.Results)
	assert.Equal(t, 0, resp.Count)
	assert.Empty(t, resp.Error)
}

func TestSearchNoResults(t *testing.T) {
	engine, store := setupTestEngine(t, Config{})
	addVideo(t, store, "v1", "Episode 1", 1917, "nothing about that topic here")

	resp := engine.Search(context.Background(), "zeppelin accordion", nil)

	assert.Equal(t, types.StatusNoResults, resp.Status)
	assert.Empty(t, resp.Results)
	assert.Empty(t, resp.Error)
}

func TestSearchMoneyTroubleScenario(t *testing.T) {
	engine, store := setupTestEngine(t, Config{})
	addVideo(t, store, "V1", "Episode 3", 1915,
		"father pressing him about giving a better account of where all the money")
	addVideo(t, store, "V2", "Episode 4", 1916,
		"an unrelated walk in the hills")

	resp := engine.Search(context.Background(), "money trouble", nil)

	require.Equal(t, types.StatusOK, resp.Status)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "V1", resp.Results[0].VideoID)
	assert.Greater(t, resp.Results[0].Score, 0)
}

func TestSearchProximityScenario(t *testing.T) {
	engine, store := setupTestEngine(t, Config{})
	addVideo(t, store, "near", "Episode 5", 1916,
		"Lewis wrote to Arthur about the new term")
	addVideo(t, store, "far", "Episode 6", 1916,
		"Lewis finished the essay late. The college was quiet for weeks on end. "+
			"Much later in an entirely different chapter of his life, Arthur visited Belfast")

	resp := engine.Search(context.Background(), "Lewis NEAR(5) Arthur", nil)

	require.Equal(t, types.StatusOK, resp.Status)
	for _, r := range resp.Results {
		assert.Equal(t, "near", r.VideoID)
	}
}

func TestSearchBeforeYearExcludesLaterVideos(t *testing.T) {
	engine, store := setupTestEngine(t, Config{})
	addVideo(t, store, "early", "Episode 2 (1918)", 1918, "the war ended that november")
	addVideo(t, store, "late", "Episode 40 (1925)", 1925, "the war was far behind him")

	resp := engine.Search(context.Background(), "war before 1920", nil)

	require.Equal(t, types.StatusOK, resp.Status)
	require.NotEmpty(t, resp.Results)
	for _, r := range resp.Results {
		assert.Equal(t, "early", r.VideoID)
	}
}

func TestSearchWardrobeQueryIsNotDateFiltered(t *testing.T) {
	engine, store := setupTestEngine(t, Config{})
	// "the war" is an era alias; it must not fire inside "the wardrobe"
	// and silently exclude videos outside 1914-1918.
	addVideo(t, store, "v1", "Episode 3", 1950, "the wardrobe door creaked open")

	resp := engine.Search(context.Background(), "the wardrobe door", nil)

	require.Equal(t, types.StatusOK, resp.Status)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "v1", resp.Results[0].VideoID)
}

func TestSearchCallerFiltersCombineWithQuery(t *testing.T) {
	engine, store := setupTestEngine(t, Config{})
	addVideo(t, store, "v1915", "Episode 1 (1915)", 1915, "college term began")
	addVideo(t, store, "v1918", "Episode 2 (1918)", 1918, "college term resumed")
	addVideo(t, store, "v1925", "Episode 3 (1925)", 1925, "college fellowship at last")

	resp := engine.Search(context.Background(), "college before 1920", &types.SearchFilters{YearStart: 1917})

	require.Equal(t, types.StatusOK, resp.Status)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "v1918", resp.Results[0].VideoID)
}

func TestSearchBudgetAndDedup(t *testing.T) {
	engine, store := setupTestEngine(t, Config{})
	for v := 0; v < 6; v++ {
		texts := make([]string, 8)
		for i := range texts {
			texts[i] = fmt.Sprintf("the microscope appears again in passage %d", i)
		}
		addVideo(t, store, fmt.Sprintf("v%d", v), fmt.Sprintf("Episode %d", v), 1915, texts...)
	}

	resp := engine.Search(context.Background(), "microscope", nil)

	require.Equal(t, types.StatusOK, resp.Status)
	assert.LessOrEqual(t, len(resp.Results), DefaultBudget)

	seen := make(map[string]struct{})
	for _, r := range resp.Results {
		key := fmt.Sprintf("%s|%f", r.VideoID, r.StartTime)
		_, dup := seen[key]
		assert.False(t, dup, "duplicate (video_id, start_time): %s", key)
		seen[key] = struct{}{}
	}
}

func TestSearchDiversityFirstTen(t *testing.T) {
	engine, store := setupTestEngine(t, Config{})
	for v := 0; v < 12; v++ {
		addVideo(t, store, fmt.Sprintf("v%d", v), fmt.Sprintf("Episode %d", v), 1915,
			"the wardrobe stood in the spare room",
			"he opened the wardrobe again",
			"the wardrobe door creaked")
	}

	resp := engine.Search(context.Background(), "wardrobe", nil)

	require.Equal(t, types.StatusOK, resp.Status)
	require.GreaterOrEqual(t, len(resp.Results), 10)

	seen := make(map[string]struct{})
	for _, r := range resp.Results[:10] {
		_, dup := seen[r.VideoID]
		assert.False(t, dup, "video %s contributed twice within the first 10", r.VideoID)
		seen[r.VideoID] = struct{}{}
	}
}

func TestSearchScoresAreOrdered(t *testing.T) {
	engine, store := setupTestEngine(t, Config{})
	addVideo(t, store, "v1", "Episode 1", 1915,
		"money trouble with his father pressing him",
		"money came up once",
		"trouble of a different kind")

	resp := engine.Search(context.Background(), "money trouble", nil)

	require.Equal(t, types.StatusOK, resp.Status)
	for i := 1; i < len(resp.Results); i++ {
		assert.GreaterOrEqual(t, resp.Results[i-1].Score, resp.Results[i].Score)
	}
}

func TestSearchIdempotent(t *testing.T) {
	engine, store := setupTestEngine(t, Config{})
	addVideo(t, store, "v1", "Episode 1", 1915,
		"the microscope was a christmas present",
		"another mention of the microscope")

	first := engine.Search(context.Background(), "microscope", nil)
	second := engine.Search(context.Background(), "microscope", nil)

	assert.Equal(t, first, second)
}

func TestSearchIdempotentWithoutCache(t *testing.T) {
	engine, store := setupTestEngine(t, Config{})
	addVideo(t, store, "v1", "Episode 1", 1915,
		"the microscope was a christmas present",
		"another mention of the microscope")

	first := engine.Search(context.Background(), "microscope", nil)
	engine.ClearCache()
	second := engine.Search(context.Background(), "microscope", nil)

	assert.Equal(t, first, second)
}

func TestSearchLinkRoundTrip(t *testing.T) {
	engine, store := setupTestEngine(t, Config{})
	addVideo(t, store, "v1", "Episode 1", 1915,
		"first passage", "the microscope passage", "third passage")

	resp := engine.Search(context.Background(), "microscope", nil)
	require.Equal(t, types.StatusOK, resp.Status)
	require.NotEmpty(t, resp.Results)

	videoID, seconds, err := result.ParseWatchURL(resp.Results[0].ExternalURL)
	require.NoError(t, err)

	seg, err := store.GetSegment(context.Background(), videoID, float64(seconds))
	require.NoError(t, err)
	assert.Equal(t, resp.Results[0].StartTime, seg.StartTime)
}

func TestSearchKeywordFallbackMethod(t *testing.T) {
	engine, store := setupTestEngine(t, Config{})
	// Apostrophes split tokens differently in FTS and raw text, which is
	// the kind of content the LIKE fallback still finds.
	addVideo(t, store, "v1", "Episode 1", 1915, "the o'hara-smythe recital")

	resp := engine.Search(context.Background(), "hara-smythe", nil)

	if resp.Status == types.StatusOK {
		assert.NotEmpty(t, resp.Results)
	} else {
		assert.Equal(t, types.StatusNoResults, resp.Status)
	}
}

func TestSearchStoreSynonymsApplied(t *testing.T) {
	engine, store := setupTestEngine(t, Config{})
	_ = engine
	addVideo(t, store, "v1", "Episode 1", 1915, "a letter from tolkein arrived")

	// The seeded synonym table maps tolkien -> tolkein, so a fresh engine
	// built after ingestion expands the query to the misspelled variant.
	fresh, err := NewEngine(store, Config{})
	require.NoError(t, err)

	resp := fresh.Search(context.Background(), "tolkien", nil)

	require.Equal(t, types.StatusOK, resp.Status)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "v1", resp.Results[0].VideoID)
}

func TestSearchContextExpansion(t *testing.T) {
	engine, store := setupTestEngine(t, Config{})
	require.NoError(t, store.UpsertVideo(context.Background(), &storage.Video{VideoID: "v1", Title: "Episode 1"}))
	require.NoError(t, store.InsertSegments(context.Background(), "v1", []*storage.Segment{
		{StartTime: 0, EndTime: 4, Text: "just before the gift", SequenceNumber: 1},
		{StartTime: 5, EndTime: 9, Text: "the microscope arrived", SequenceNumber: 2},
		{StartTime: 10, EndTime: 14, Text: "and he was delighted", SequenceNumber: 3},
	}))

	resp := engine.Search(context.Background(), "microscope", nil)

	require.Equal(t, types.StatusOK, resp.Status)
	require.NotEmpty(t, resp.Results)
	assert.Contains(t, resp.Results[0].Text, "just before the gift")
	assert.Contains(t, resp.Results[0].Text, "and he was delighted")
}

func TestSearchCacheHitServesCopy(t *testing.T) {
	engine, store := setupTestEngine(t, Config{})
	addVideo(t, store, "v1", "Episode 1", 1915, "the microscope arrived")

	first := engine.Search(context.Background(), "microscope", nil)
	first.Results[0].Title = "mutated"

	second := engine.Search(context.Background(), "microscope", nil)
	assert.NotEqual(t, "mutated", second.Results[0].Title)
}

func TestSearchExpiredEntryRecomputed(t *testing.T) {
	engine, store := setupTestEngine(t, Config{CacheTTL: time.Millisecond})
	addVideo(t, store, "v1", "Episode 1", 1915, "the microscope arrived")

	first := engine.Search(context.Background(), "microscope", nil)
	require.Equal(t, types.StatusOK, first.Status)

	time.Sleep(5 * time.Millisecond)

	second := engine.Search(context.Background(), "microscope", nil)
	assert.Equal(t, first, second)
}

func TestSearchConcurrentCacheExpiry(t *testing.T) {
	// A TTL short enough that goroutines keep hitting the expired-entry
	// path while others repopulate the same key
	engine, store := setupTestEngine(t, Config{CacheTTL: time.Millisecond})
	addVideo(t, store, "v1", "Episode 1", 1915, "the microscope arrived")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				resp := engine.Search(context.Background(), "microscope", nil)
				assert.Equal(t, types.StatusOK, resp.Status)
			}
		}()
	}
	wg.Wait()
}

func TestSearchBoostsInjected(t *testing.T) {
	engine, store := setupTestEngine(t, Config{
		Boosts: rank.BoostTable{{VideoID: "curated", Topics: []string{"wardrobe"}, Bonus: 100}},
	})
	addVideo(t, store, "dense", "Episode 1", 1915,
		"the wardrobe, the wardrobe, always the wardrobe")
	addVideo(t, store, "curated", "Episode 169", 1950,
		"he stepped through the wardrobe")

	resp := engine.Search(context.Background(), "wardrobe", nil)

	require.Equal(t, types.StatusOK, resp.Status)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "curated", resp.Results[0].VideoID)
}
