package rank

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transcripta/capsearch/internal/storage"
)

func resultFor(videoID string, start float64) Result {
	return Result{Hit: storage.SegmentHit{VideoID: videoID, StartTime: start, Text: "text"}}
}

func TestDiversifyOnePerVideoFirst(t *testing.T) {
	// 12 videos, 3 hits each, highest scores concentrated in v0
	var results []Result
	for i := 0; i < 3; i++ {
		for v := 0; v < 12; v++ {
			results = append(results, resultFor(fmt.Sprintf("v%d", v), float64(i)))
		}
	}

	out := Diversify(results, 10, 15)

	require.Len(t, out, 15)
	seen := make(map[string]struct{})
	for _, res := range out[:10] {
		_, dup := seen[res.Hit.VideoID]
		assert.False(t, dup, "video %s appeared twice in the first 10", res.Hit.VideoID)
		seen[res.Hit.VideoID] = struct{}{}
	}
}

func TestDiversifySecondPassFillsFromPool(t *testing.T) {
	// Only 2 distinct videos: pass 1 takes one each, pass 2 fills the rest
	var results []Result
	for i := 0; i < 10; i++ {
		results = append(results, resultFor("v1", float64(i)))
		results = append(results, resultFor("v2", float64(i)))
	}

	out := Diversify(results, 10, 15)

	assert.Len(t, out, 15)
	assert.Equal(t, "v1", out[0].Hit.VideoID)
	assert.Equal(t, "v2", out[1].Hit.VideoID)
}

func TestDiversifyFewResultsPassThrough(t *testing.T) {
	results := []Result{resultFor("v1", 0), resultFor("v2", 10)}

	out := Diversify(results, 10, 15)

	assert.Equal(t, results, out)
}

func TestDiversifyPreservesScoreOrderWithinPasses(t *testing.T) {
	results := []Result{
		{Hit: storage.SegmentHit{VideoID: "a"}, Score: 30},
		{Hit: storage.SegmentHit{VideoID: "b"}, Score: 20},
		{Hit: storage.SegmentHit{VideoID: "a"}, Score: 10},
	}

	out := Diversify(results, 10, 15)

	require.Len(t, out, 3)
	assert.Equal(t, 30, out[0].Score)
	assert.Equal(t, 20, out[1].Score)
	assert.Equal(t, 10, out[2].Score)
}

// mockNeighborStore implements neighborStore for expander tests
type mockNeighborStore struct {
	segments map[string][]*storage.Segment
	err      error
}

func (m *mockNeighborStore) GetNeighborSegments(_ context.Context, videoID string, start, window float64) ([]*storage.Segment, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []*storage.Segment
	for _, seg := range m.segments[videoID] {
		if seg.StartTime >= start-window && seg.StartTime <= start+window {
			out = append(out, seg)
		}
	}
	return out, nil
}

func TestExpandConcatenatesNeighbors(t *testing.T) {
	store := &mockNeighborStore{segments: map[string][]*storage.Segment{
		"v1": {
			{StartTime: 0, Text: "before the match"},
			{StartTime: 8, Text: "the match itself"},
			{StartTime: 16, Text: "after the match"},
			{StartTime: 60, Text: "far away"},
		},
	}}
	e := NewContextExpander(store)

	results := e.Expand(context.Background(), []Result{
		{Hit: storage.SegmentHit{VideoID: "v1", StartTime: 8, Text: "the match itself"}},
	})

	assert.Equal(t, "before the match the match itself after the match", results[0].Hit.Text)
}

func TestExpandBoundsLength(t *testing.T) {
	long := strings.Repeat("w ", 400)
	store := &mockNeighborStore{segments: map[string][]*storage.Segment{
		"v1": {
			{StartTime: 5, Text: long},
			{StartTime: 10, Text: long},
		},
	}}
	e := NewContextExpander(store)

	results := e.Expand(context.Background(), []Result{
		{Hit: storage.SegmentHit{VideoID: "v1", StartTime: 10, Text: "short"}},
	})

	assert.LessOrEqual(t, len(results[0].Hit.Text), ContextMaxChars)
}

func TestExpandTruncatesOnRuneBoundary(t *testing.T) {
	// 200 three-byte runes put the 500-byte cap mid-rune unless the cut
	// backs off to a rune start
	long := strings.Repeat("日", 200)
	store := &mockNeighborStore{segments: map[string][]*storage.Segment{
		"v1": {
			{StartTime: 10, Text: long},
		},
	}}
	e := NewContextExpander(store)

	results := e.Expand(context.Background(), []Result{
		{Hit: storage.SegmentHit{VideoID: "v1", StartTime: 10, Text: "short"}},
	})

	assert.LessOrEqual(t, len(results[0].Hit.Text), ContextMaxChars)
	assert.True(t, utf8.ValidString(results[0].Hit.Text))
}

func TestExpandFailureKeepsOriginalText(t *testing.T) {
	e := NewContextExpander(&mockNeighborStore{err: errors.New("db gone")})

	results := e.Expand(context.Background(), []Result{
		{Hit: storage.SegmentHit{VideoID: "v1", StartTime: 10, Text: "original"}},
	})

	assert.Equal(t, "original", results[0].Hit.Text)
}
