package strategy

import (
	"sort"
	"strings"

	"github.com/transcripta/capsearch/internal/query"
	"github.com/transcripta/capsearch/internal/storage"
)

// Kind tags which generation tier produced a strategy
type Kind string

const (
	KindFullConjunction Kind = "full_conjunction"
	KindSemanticPair    Kind = "semantic_pair"
	KindExactPhrase     Kind = "exact_phrase"
	KindPhrasePair      Kind = "phrase_pair"
	KindNarrative       Kind = "narrative"
	KindTermCombo       Kind = "term_combination"
	KindSingleTerm      Kind = "single_term"
)

// Strategy is one candidate FTS5 search expression
type Strategy struct {
	Expression string
	Kind       Kind
	Priority   int // Lower runs earlier
}

const (
	// MaxStrategies bounds execution cost per query
	MaxStrategies = 15

	// Per-tier caps keep one noisy tier from starving the ones below it
	maxSemanticPairs = 8
	maxPhrases       = 4
	maxNarrative     = 4

	priorityFullConjunction = 1
	prioritySemanticPair    = 2
	priorityPhrase          = 3
	priorityNarrative       = 4
	priorityTermCombo       = 5
	prioritySingleTerm      = 6
)

// Generator produces an ordered ladder of candidate search expressions
type Generator struct {
	heuristics []Heuristic
	maxTotal   int
}

// NewGenerator creates a Generator with the built-in narrative heuristics
func NewGenerator() *Generator {
	return &Generator{
		heuristics: defaultHeuristics,
		maxTotal:   MaxStrategies,
	}
}

// WithHeuristics replaces the narrative heuristic table, highest priority first
func (g *Generator) WithHeuristics(hs []Heuristic) *Generator {
	g.heuristics = hs
	return g
}

// Generate builds the strategy ladder for a normalized query: broad exact
// strategies first, single terms last, deduplicated, capped at MaxStrategies.
func (g *Generator) Generate(norm query.Normalized) []Strategy {
	if len(norm.Terms) == 0 {
		return nil
	}

	var out []Strategy

	// Tier 1: all meaningful terms ANDed
	out = append(out, Strategy{
		Expression: andExpression(norm.Terms),
		Kind:       KindFullConjunction,
		Priority:   priorityFullConjunction,
	})

	// Tier 2: each base term paired with each of its expansions, plus the
	// conjunction with the base substituted by the expansion. Substitution
	// is what catches transcription-error variants, where the canonical
	// spelling never occurs in the captions at all.
	var pairs []Strategy
	for _, base := range norm.Terms {
		for _, exp := range norm.Expansions[base] {
			pairs = append(pairs, Strategy{
				Expression: andExpression([]string{base, exp}),
				Kind:       KindSemanticPair,
				Priority:   prioritySemanticPair,
			})
			pairs = append(pairs, Strategy{
				Expression: andExpression(substitute(norm.Terms, base, exp)),
				Kind:       KindSemanticPair,
				Priority:   prioritySemanticPair,
			})
		}
	}
	out = append(out, capTier(pairs, maxSemanticPairs)...)

	// Tier 3: natural 2-3 word phrases, as exact phrase and as AND-pair
	out = append(out, capTier(g.phraseStrategies(norm), maxPhrases)...)

	// Tier 4: narrative decomposition via the heuristic table
	var narrative []Strategy
	for _, h := range g.heuristics {
		if h.Matches(norm) {
			narrative = append(narrative, h.Generate(norm)...)
		}
	}
	out = append(out, capTier(narrative, maxNarrative)...)

	// Tier 5: pairwise and triple combinations of the most important terms
	out = append(out, comboStrategies(norm.Terms)...)

	// Tier 6: bare single terms, only for short queries
	if len(norm.Terms) <= 3 {
		for _, term := range norm.Terms {
			out = append(out, Strategy{
				Expression: storage.QuoteFTSTerm(term),
				Kind:       KindSingleTerm,
				Priority:   prioritySingleTerm,
			})
		}
	}

	return g.finalize(out)
}

// phraseStrategies detects adjacent-word patterns matching known linguistic
// shapes and emits them both as exact phrases and as AND-pairs.
func (g *Generator) phraseStrategies(norm query.Normalized) []Strategy {
	var out []Strategy
	terms := norm.Terms

	for i := 0; i+1 < len(terms); i++ {
		a, b := terms[i], terms[i+1]
		if !pairShape(a, b) {
			continue
		}
		out = append(out, Strategy{
			Expression: storage.QuoteFTSTerm(a + " " + b),
			Kind:       KindExactPhrase,
			Priority:   priorityPhrase,
		})
		out = append(out, Strategy{
			Expression: andExpression([]string{a, b}),
			Kind:       KindPhrasePair,
			Priority:   priorityPhrase,
		})
	}

	for i := 0; i+2 < len(terms); i++ {
		a, b, c := terms[i], terms[i+1], terms[i+2]
		if len(a)+len(b)+len(c) <= 10 {
			continue
		}
		out = append(out, Strategy{
			Expression: storage.QuoteFTSTerm(a + " " + b + " " + c),
			Kind:       KindExactPhrase,
			Priority:   priorityPhrase,
		})
	}

	return out
}

// comboStrategies pairs the most important terms, preferring longer terms
// that appeared earlier in the query.
func comboStrategies(terms []string) []Strategy {
	if len(terms) < 2 {
		return nil
	}

	ranked := rankByImportance(terms)
	if len(ranked) > 4 {
		ranked = ranked[:4]
	}

	var out []Strategy
	for i := 0; i < len(ranked); i++ {
		for j := i + 1; j < len(ranked); j++ {
			out = append(out, Strategy{
				Expression: andExpression([]string{ranked[i], ranked[j]}),
				Kind:       KindTermCombo,
				Priority:   priorityTermCombo,
			})
		}
	}
	if len(ranked) >= 3 {
		out = append(out, Strategy{
			Expression: andExpression(ranked[:3]),
			Kind:       KindTermCombo,
			Priority:   priorityTermCombo,
		})
	}
	return out
}

// rankByImportance orders terms by length and earliness without mutating input
func rankByImportance(terms []string) []string {
	type scored struct {
		term  string
		score int
	}
	ranked := make([]scored, len(terms))
	for i, term := range terms {
		ranked[i] = scored{term: term, score: len(term)*2 - i}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	out := make([]string, len(ranked))
	for i, s := range ranked {
		out[i] = s.term
	}
	return out
}

// finalize sorts by priority (stable, preserving generation order within a
// tier), removes duplicate expressions keeping the first, and applies the cap.
func (g *Generator) finalize(strategies []Strategy) []Strategy {
	sort.SliceStable(strategies, func(i, j int) bool {
		return strategies[i].Priority < strategies[j].Priority
	})

	seen := make(map[string]struct{}, len(strategies))
	out := strategies[:0]
	for _, s := range strategies {
		if _, dup := seen[s.Expression]; dup {
			continue
		}
		seen[s.Expression] = struct{}{}
		out = append(out, s)
		if len(out) >= g.maxTotal {
			break
		}
	}
	return out
}

// substitute returns terms with every occurrence of from replaced by to
func substitute(terms []string, from, to string) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		if t == from {
			out[i] = to
		} else {
			out[i] = t
		}
	}
	return out
}

func capTier(strategies []Strategy, max int) []Strategy {
	if len(strategies) > max {
		return strategies[:max]
	}
	return strategies
}

// andExpression joins quoted terms with the FTS5 AND operator
func andExpression(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = storage.QuoteFTSTerm(t)
	}
	return strings.Join(quoted, " AND ")
}
