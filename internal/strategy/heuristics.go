package strategy

import (
	"strings"

	"github.com/transcripta/capsearch/internal/query"
)

// Heuristic is one narrative-decomposition rule: a matcher predicate paired
// with a strategy generator. Rules are data, evaluated in table order, so new
// scenario knowledge is added without touching the generator's control flow.
type Heuristic struct {
	Name     string
	Matches  func(query.Normalized) bool
	Generate func(query.Normalized) []Strategy
}

// knownPeople are names that recur across the transcripts
var knownPeople = map[string]struct{}{
	"lewis": {}, "jack": {}, "warnie": {}, "warren": {}, "albert": {},
	"father": {}, "mother": {}, "flora": {}, "arthur": {}, "greeves": {},
	"kirkpatrick": {}, "tolkien": {}, "maureen": {}, "moore": {}, "paddy": {},
}

// concernWords signal that a query describes someone's worry or difficulty
var concernWords = map[string]struct{}{
	"worried": {}, "worry": {}, "anxious": {}, "afraid": {}, "fear": {},
	"trouble": {}, "concern": {}, "concerned": {}, "problem": {},
	"money": {}, "debt": {}, "sick": {}, "illness": {}, "failing": {},
	"lonely": {}, "homesick": {}, "doubt": {}, "confidence": {},
}

// observationWords signal a "person notices something" scenario
var observationWords = map[string]struct{}{
	"notices": {}, "noticed": {}, "sees": {}, "saw": {}, "watches": {},
	"realizes": {}, "realized": {}, "discovers": {}, "discovered": {},
}

// defaultHeuristics decompose scenario-style queries into targeted
// person+concern sub-queries.
var defaultHeuristics = []Heuristic{
	{
		Name: "person_concern",
		Matches: func(norm query.Normalized) bool {
			return firstMatch(norm.Terms, knownPeople) != "" &&
				firstMatch(norm.Terms, concernWords) != ""
		},
		Generate: func(norm query.Normalized) []Strategy {
			var out []Strategy
			for _, person := range allMatches(norm.Terms, knownPeople) {
				for _, concern := range allMatches(norm.Terms, concernWords) {
					out = append(out, Strategy{
						Expression: andExpression([]string{person, concern}),
						Kind:       KindNarrative,
						Priority:   priorityNarrative,
					})
				}
			}
			return out
		},
	},
	{
		Name: "observed_scene",
		Matches: func(norm query.Normalized) bool {
			return firstMatch(norm.Terms, observationWords) != ""
		},
		Generate: func(norm query.Normalized) []Strategy {
			// Drop the observation verb itself: captions describe the
			// scene, not the act of observing it.
			var rest []string
			for _, t := range norm.Terms {
				if _, ok := observationWords[t]; !ok {
					rest = append(rest, t)
				}
			}
			if len(rest) == 0 {
				return nil
			}
			return []Strategy{{
				Expression: andExpression(rest),
				Kind:       KindNarrative,
				Priority:   priorityNarrative,
			}}
		},
	},
}

func firstMatch(terms []string, set map[string]struct{}) string {
	for _, t := range terms {
		if _, ok := set[strings.ToLower(t)]; ok {
			return t
		}
	}
	return ""
}

func allMatches(terms []string, set map[string]struct{}) []string {
	var out []string
	for _, t := range terms {
		if _, ok := set[strings.ToLower(t)]; ok {
			out = append(out, t)
		}
	}
	return out
}

// adjectiveSuffixes and titleWords drive the phrase-shape detector
var adjectiveSuffixes = []string{"al", "ive", "ous", "ic", "ful", "less", "ing", "ed"}

var titleWords = map[string]struct{}{
	"junior": {}, "senior": {}, "vice": {}, "head": {}, "chief": {},
	"professor": {}, "doctor": {}, "captain": {}, "sergeant": {},
}

var reflexivePronouns = map[string]struct{}{
	"himself": {}, "herself": {}, "itself": {}, "themselves": {},
}

// pairShape reports whether two adjacent terms form a natural phrase:
// name+name, title+position, adjective+noun, verb+reflexive, or simply a
// pair long enough to be distinctive.
func pairShape(a, b string) bool {
	_, aPerson := knownPeople[a]
	_, bPerson := knownPeople[b]
	if aPerson && bPerson {
		return true
	}
	if _, ok := titleWords[a]; ok {
		return true
	}
	if _, ok := reflexivePronouns[b]; ok {
		return true
	}
	for _, suffix := range adjectiveSuffixes {
		if strings.HasSuffix(a, suffix) && len(a) > len(suffix)+2 {
			return true
		}
	}
	return len(a)+len(b) > 10
}
