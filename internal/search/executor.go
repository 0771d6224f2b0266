package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/transcripta/capsearch/internal/query"
	"github.com/transcripta/capsearch/internal/rank"
	"github.com/transcripta/capsearch/internal/storage"
	"github.com/transcripta/capsearch/internal/strategy"
)

const (
	// DefaultPerStrategyLimit caps hits fetched per candidate expression
	DefaultPerStrategyLimit = 12
	// DefaultBudget caps unique results accumulated across the ladder
	DefaultBudget = 15
	// avgWordLength converts a NEAR word distance into a character window
	avgWordLength = 6
)

// StrategyOutcome records what one rung of the ladder did. Failures are
// explicit values here instead of control flow: a failed expression is
// visible, skipped and never fatal on its own.
type StrategyOutcome struct {
	Strategy strategy.Strategy
	Hits     int
	Err      error
}

// Executor runs candidate expressions in priority order against the store
type Executor struct {
	store       storage.Store
	perStrategy int
	budget      int
}

// NewExecutor creates an Executor with default limits
func NewExecutor(store storage.Store) *Executor {
	return &Executor{
		store:       store,
		perStrategy: DefaultPerStrategyLimit,
		budget:      DefaultBudget,
	}
}

// WithLimits overrides the per-expression cap and the overall budget
func (e *Executor) WithLimits(perStrategy, budget int) *Executor {
	if perStrategy > 0 {
		e.perStrategy = perStrategy
	}
	if budget > 0 {
		e.budget = budget
	}
	return e
}

// dedupKey identifies a hit across strategies
type dedupKey struct {
	videoID string
	start   float64
}

// Execute runs the ladder: each expression in priority order, stopping once
// the budget is reached. Hits are deduplicated by (video, start time) with
// first-seen order preserved, so higher-priority strategies win duplicates.
// The returned error is non-nil only when every expression failed and
// nothing was found, which indicates the store itself is unreachable.
func (e *Executor) Execute(ctx context.Context, strategies []strategy.Strategy, norm query.Normalized, filters *storage.SearchFilters) ([]rank.Result, []StrategyOutcome, error) {
	outcomes := make([]StrategyOutcome, 0, len(strategies))
	seen := make(map[dedupKey]struct{})
	var results []rank.Result
	failed := 0

	for _, strat := range strategies {
		if len(results) >= e.budget {
			break
		}

		hits, err := e.store.SearchText(ctx, strat.Expression, e.perStrategy, filters)
		if err != nil {
			failed++
			outcomes = append(outcomes, StrategyOutcome{Strategy: strat, Err: err})
			continue
		}

		kept := 0
		for _, hit := range hits {
			if len(results) >= e.budget {
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
			kept++
		}
		outcomes = append(outcomes, StrategyOutcome{Strategy: strat, Hits: kept})
	}

	if len(results) == 0 && len(strategies) > 0 && failed == len(strategies) {
		return nil, outcomes, fmt.Errorf("all %d search strategies failed, store unreachable", failed)
	}
	return results, outcomes, nil
}

// satisfiesProximity checks the parsed NEAR constraint against a hit:
// both terms must occur within distance words, approximated in characters.
func satisfiesProximity(text string, prox *query.Proximity) bool {
	lower := strings.ToLower(text)
	window := prox.Distance * avgWordLength

	for _, posA := range substringIndices(lower, prox.TermA) {
		for _, posB := range substringIndices(lower, prox.TermB) {
			dist := posA - posB
			if dist < 0 {
				dist = -dist
			}
			if dist <= window {
				return true
			}
		}
	}
	return false
}

func substringIndices(text, sub string) []int {
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
