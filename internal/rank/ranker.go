package rank

import (
	"sort"
	"strings"

	"github.com/transcripta/capsearch/internal/query"
	"github.com/transcripta/capsearch/internal/storage"
)

// Result is a search hit tagged with its relevance score
type Result struct {
	Hit     storage.SegmentHit
	Score   int
	Matched []string // Query terms found in the hit text
}

const (
	verbatimBonus  = 10 // Whole cleaned query appears verbatim
	wordInText     = 2  // Per occurrence of a query word in the text
	wordInTitle    = 1  // Per occurrence of a query word in the title
	proximityBonus = 3  // Per term pair within proximityWindow chars
	proximityChars = 50
	genericPenalty = 5 // Subtracted when genericThreshold fillers match
	genericLimit   = 2
)

// genericFillers are biographical filler words that match almost everything
var genericFillers = map[string]struct{}{
	"life": {}, "born": {}, "died": {}, "years": {}, "family": {},
	"man": {}, "story": {}, "history": {}, "young": {}, "old": {},
	"people": {}, "world": {}, "day": {}, "went": {}, "came": {},
}

// Ranker scores and orders search hits. Boosts are injected domain
// knowledge, not general ranking logic.
type Ranker struct {
	boosts BoostTable
}

// NewRanker creates a Ranker with the given boost table (nil is fine)
func NewRanker(boosts BoostTable) *Ranker {
	return &Ranker{boosts: boosts}
}

// Rank scores every result and sorts descending. The sort is stable:
// equal scores keep their incoming relative order, which is the
// strategy-priority order the executor produced.
func (r *Ranker) Rank(results []Result, norm query.Normalized) []Result {
	for i := range results {
		results[i].Score, results[i].Matched = r.score(&results[i].Hit, norm)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

func (r *Ranker) score(hit *storage.SegmentHit, norm query.Normalized) (int, []string) {
	text := strings.ToLower(hit.Text)
	title := strings.ToLower(hit.Title)

	score := 0

	// Verbatim match of the whole cleaned query
	if phrase := strings.Join(norm.Terms, " "); phrase != "" && strings.Contains(text, phrase) {
		score += verbatimBonus
	}

	// Term coverage and density
	var matched []string
	for _, term := range norm.Terms {
		if n := strings.Count(text, term); n > 0 {
			score += wordInText * n
			matched = append(matched, term)
		}
		if n := strings.Count(title, term); n > 0 {
			score += wordInTitle * n
		}
	}

	// Proximity: every distinct pair of matched terms close together
	for i := 0; i < len(matched); i++ {
		for j := i + 1; j < len(matched); j++ {
			if withinDistance(text, matched[i], matched[j], proximityChars) {
				score += proximityBonus
			}
		}
	}

	score += r.boosts.bonusFor(hit.VideoID, norm.Terms)

	// Results matching mostly filler are rarely what was asked for
	generic := 0
	for filler := range genericFillers {
		if strings.Contains(text, filler) {
			generic++
		}
	}
	if generic >= genericLimit {
		score -= genericPenalty
	}

	return score, matched
}

// withinDistance reports whether any occurrence of a sits within maxDist
// characters of any occurrence of b.
func withinDistance(text, a, b string, maxDist int) bool {
	for _, posA := range allIndices(text, a) {
		for _, posB := range allIndices(text, b) {
			dist := posA - posB
			if dist < 0 {
				dist = -dist
			}
			if dist <= maxDist {
				return true
			}
		}
	}
	return false
}

func allIndices(text, sub string) []int {
	var out []int
	for offset := 0; ; {
		idx := strings.Index(text[offset:], sub)
		if idx < 0 {
			return out
		}
		out = append(out, offset+idx)
		offset += idx + len(sub)
	}
}
