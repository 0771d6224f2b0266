package rank

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/transcripta/capsearch/internal/storage"
)

const (
	// DefaultDistinctVideos is how many distinct videos must appear before
	// any video contributes a second result
	DefaultDistinctVideos = 10
	// DefaultTotalResults caps the final result count
	DefaultTotalResults = 15
)

// Diversify enforces the per-video cap: the first pass takes at most one
// result per video until distinctTarget videos are represented, the second
// pass fills remaining slots up to total from the leftover pool in score
// order regardless of source.
func Diversify(results []Result, distinctTarget, total int) []Result {
	if distinctTarget <= 0 {
		distinctTarget = DefaultDistinctVideos
	}
	if total <= 0 {
		total = DefaultTotalResults
	}

	seen := make(map[string]struct{})
	out := make([]Result, 0, total)
	var leftover []Result

	for _, res := range results {
		if len(seen) >= distinctTarget {
			leftover = append(leftover, res)
			continue
		}
		if _, dup := seen[res.Hit.VideoID]; dup {
			leftover = append(leftover, res)
			continue
		}
		seen[res.Hit.VideoID] = struct{}{}
		out = append(out, res)
	}

	for _, res := range leftover {
		if len(out) >= total {
			break
		}
		out = append(out, res)
	}

	if len(out) > total {
		out = out[:total]
	}
	return out
}

const (
	// ContextWindow is how far around a hit sibling segments are fetched
	ContextWindow = 10.0 // seconds
	// ContextMaxChars bounds the expanded text
	ContextMaxChars = 500
)

// neighborStore is the slice of storage.Store that context expansion needs
type neighborStore interface {
	GetNeighborSegments(ctx context.Context, videoID string, startTime, window float64) ([]*storage.Segment, error)
}

// ContextExpander enriches hits with surrounding segment text
type ContextExpander struct {
	store neighborStore
}

// NewContextExpander creates a ContextExpander backed by the given store
func NewContextExpander(store neighborStore) *ContextExpander {
	return &ContextExpander{store: store}
}

// Expand replaces each result's text with the concatenated text of its
// neighboring segments, bounded to ContextMaxChars. A failed lookup keeps
// the original single-segment text; expansion never fails the search.
func (e *ContextExpander) Expand(ctx context.Context, results []Result) []Result {
	for i := range results {
		hit := &results[i].Hit
		neighbors, err := e.store.GetNeighborSegments(ctx, hit.VideoID, hit.StartTime, ContextWindow)
		if err != nil || len(neighbors) == 0 {
			continue
		}

		var parts []string
		for _, seg := range neighbors {
			parts = append(parts, strings.TrimSpace(seg.Text))
		}
		expanded := strings.Join(parts, " ")
		if len(expanded) > ContextMaxChars {
			// Back off to a rune boundary so the cut never splits a
			// multi-byte character.
			cut := ContextMaxChars
			for cut > 0 && !utf8.RuneStart(expanded[cut]) {
				cut--
			}
			expanded = expanded[:cut]
		}
		if expanded != "" {
			hit.Text = expanded
		}
	}
	return results
}
