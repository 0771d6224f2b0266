package search

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/transcripta/capsearch/internal/query"
	"github.com/transcripta/capsearch/internal/rank"
	"github.com/transcripta/capsearch/internal/storage"
)

// Hint is documented business knowledge about specific content: when a
// query contains all the trigger words, the mapped terms are searched
// directly. Not general-purpose logic, just a small curated table.
type Hint struct {
	Contains []string `yaml:"contains"`
	Terms    []string `yaml:"terms"`
}

// HintTable is the injectable collection of contextual hints
type HintTable []Hint

// LoadHints reads a hint table from a YAML file. A missing path returns an
// empty table: hints are optional.
func LoadHints(path string) (HintTable, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read hint file: %w", err)
	}

	var table HintTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse hint file %s: %w", path, err)
	}
	return table, nil
}

// keywordFallback is rung (a): plain substring search ANDing every keyword
func (e *Executor) keywordFallback(ctx context.Context, norm query.Normalized, filters *storage.SearchFilters) ([]rank.Result, error) {
	hits, err := e.store.SearchKeyword(ctx, norm.Terms, e.budget, filters)
	if err != nil {
		return nil, err
	}
	return dedupHits(hits, norm, e.budget), nil
}

// hintFallback is rung (b): curated query-to-terms mappings
func (e *Executor) hintFallback(ctx context.Context, norm query.Normalized, hints HintTable, filters *storage.SearchFilters) ([]rank.Result, error) {
	lowerRaw := strings.ToLower(norm.Raw)

	var firstErr error
	for _, hint := range hints {
		if !hintApplies(hint, lowerRaw) {
			continue
		}
		hits, err := e.store.SearchKeyword(ctx, hint.Terms, e.budget, filters)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if len(hits) > 0 {
			return dedupHits(hits, norm, e.budget), nil
		}
	}
	return nil, firstErr
}

func hintApplies(hint Hint, lowerRaw string) bool {
	if len(hint.Contains) == 0 {
		return false
	}
	for _, trigger := range hint.Contains {
		if !strings.Contains(lowerRaw, strings.ToLower(trigger)) {
			return false
		}
	}
	return true
}

// fuzzyFallback is rung (c): per-keyword search with simple morphological
// stem variants, executed independently per top keyword and merged.
func (e *Executor) fuzzyFallback(ctx context.Context, norm query.Normalized, filters *storage.SearchFilters) ([]rank.Result, error) {
	keywords := topKeywords(norm.Terms, 3)

	seen := make(map[dedupKey]struct{})
	var results []rank.Result
	var firstErr error

	for _, kw := range keywords {
		for _, variant := range stemVariants(kw) {
			hits, err := e.store.SearchKeyword(ctx, []string{variant}, e.perStrategy, filters)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			for _, hit := range hits {
				if len(results) >= e.budget {
					return results, nil
				}
				key := dedupKey{videoID: hit.VideoID, start: hit.StartTime}
				if _, dup := seen[key]; dup {
					continue
				}
				seen[key] = struct{}{}
				results = append(results, rank.Result{Hit: hit})
			}
		}
	}

	if len(results) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// topKeywords picks the longest terms, earliest first on ties
func topKeywords(terms []string, n int) []string {
	sorted := make([]string, len(terms))
	copy(sorted, terms)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// stemVariants strips common verb and plural suffixes so "pressing" still
// finds "pressed" and "press". The original term always comes first.
func stemVariants(term string) []string {
	variants := []string{term}
	switch {
	case strings.HasSuffix(term, "ing") && len(term) > 5:
		variants = append(variants, strings.TrimSuffix(term, "ing"))
	case strings.HasSuffix(term, "ed") && len(term) > 4:
		variants = append(variants, strings.TrimSuffix(term, "ed"))
	case strings.HasSuffix(term, "s") && len(term) > 3:
		variants = append(variants, strings.TrimSuffix(term, "s"))
	}
	return variants
}

// dedupHits applies proximity filtering, deduplication and the budget to a
// raw hit list from a fallback search.
func dedupHits(hits []storage.SegmentHit, norm query.Normalized, budget int) []rank.Result {
	seen := make(map[dedupKey]struct{}, len(hits))
	var results []rank.Result
	for _, hit := range hits {
		if len(results) >= budget {
			break
		}
		if norm.Proximity != nil && !satisfiesProximity(hit.Text, norm.Proximity) {
			continue
		}
		key := dedupKey{videoID: hit.VideoID, start: hit.StartTime}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		results = append(results, rank.Result{Hit: hit})
	}
	return results
}
