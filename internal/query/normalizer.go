package query

import (
	"regexp"
	"strconv"
	"strings"
)

// DateFilter bounds matched videos by the year in their title or upload date
type DateFilter struct {
	YearStart int // Inclusive, 0 = unbounded
	YearEnd   int // Inclusive, 0 = unbounded
}

// Proximity is a parsed "A NEAR(n) B" constraint
type Proximity struct {
	TermA    string
	TermB    string
	Distance int // Maximum distance in words
}

// Normalized is the structured form of a raw query
type Normalized struct {
	Raw        string
	Terms      []string            // Cleaned meaningful terms, stop-words removed
	RawTokens  []string            // All tokens before stop-word removal
	Expansions map[string][]string // Term -> semantically related terms
	Date       *DateFilter
	Exclude    string
	Proximity  *Proximity
}

// Normalizer turns raw free-text queries into Normalized values
type Normalizer struct {
	stopwords map[string]struct{}
	synonyms  map[string][]string
}

// NewNormalizer creates a Normalizer. The built-in synonym table is merged
// with extra entries, typically the store's transcription-error variants.
func NewNormalizer(extra map[string][]string) *Normalizer {
	stopwords := make(map[string]struct{}, len(stopwordList))
	for _, w := range stopwordList {
		stopwords[w] = struct{}{}
	}

	synonyms := make(map[string][]string, len(domainSynonyms)+len(extra))
	for term, related := range domainSynonyms {
		synonyms[term] = append(synonyms[term], related...)
	}
	for term, related := range extra {
		synonyms[term] = append(synonyms[term], related...)
	}

	return &Normalizer{stopwords: stopwords, synonyms: synonyms}
}

var (
	// Uppercase operators only, so natural-language "not" and "near"
	// in queries are treated as ordinary words.
	nearPattern  = regexp.MustCompile(`(\S+)\s+NEAR\((\d+)\)\s+(\S+)`)
	notPattern   = regexp.MustCompile(`\s+NOT\s+(\S+)`)
	beforeYear   = regexp.MustCompile(`(?i)\bbefore\s+(\d{4})\b`)
	afterYear    = regexp.MustCompile(`(?i)\bafter\s+(\d{4})\b`)
	yearRange    = regexp.MustCompile(`\b(\d{4})\s*-\s*(\d{4})\b`)
	nonWordChars = regexp.MustCompile(`[^a-z0-9']+`)
)

// eraAliases maps named periods to year ranges. Patterns are anchored on
// word boundaries so "the war" never fires inside "the wardrobe" or
// "the warden".
var eraAliases = []struct {
	pattern *regexp.Regexp
	filter  DateFilter
}{
	{regexp.MustCompile(`\bgreat war\b`), DateFilter{YearStart: 1914, YearEnd: 1918}},
	{regexp.MustCompile(`\bthe war\b`), DateFilter{YearStart: 1914, YearEnd: 1918}},
	{regexp.MustCompile(`\bwartime\b`), DateFilter{YearStart: 1914, YearEnd: 1918}},
	{regexp.MustCompile(`\bedwardian\b`), DateFilter{YearStart: 1901, YearEnd: 1910}},
	{regexp.MustCompile(`\binterwar\b`), DateFilter{YearStart: 1919, YearEnd: 1938}},
	{regexp.MustCompile(`\bchildhood\b`), DateFilter{YearStart: 1898, YearEnd: 1910}},
	{regexp.MustCompile(`\bschooldays\b`), DateFilter{YearStart: 1908, YearEnd: 1917}},
}

// Normalize parses directives out of the raw query, tokenizes what remains,
// removes stop-words and attaches semantic expansions.
func (n *Normalizer) Normalize(raw string) Normalized {
	norm := Normalized{Raw: raw, Expansions: map[string][]string{}}
	rest := raw

	rest = n.extractProximity(rest, &norm)
	rest = n.extractExclusion(rest, &norm)
	rest = n.extractDates(rest, &norm)

	norm.RawTokens = tokenize(rest)

	for _, tok := range norm.RawTokens {
		if _, stop := n.stopwords[tok]; stop {
			continue
		}
		norm.Terms = append(norm.Terms, tok)
	}

	// A query of only stop-words still has to search for something
	if len(norm.Terms) == 0 {
		norm.Terms = append(norm.Terms, norm.RawTokens...)
	}

	for _, term := range norm.Terms {
		if related, ok := n.synonyms[term]; ok {
			norm.Expansions[term] = append(norm.Expansions[term], related...)
		}
	}

	return norm
}

func (n *Normalizer) extractProximity(rest string, norm *Normalized) string {
	m := nearPattern.FindStringSubmatch(rest)
	if m == nil {
		return rest
	}
	dist, err := strconv.Atoi(m[2])
	if err != nil || dist <= 0 {
		return rest
	}
	norm.Proximity = &Proximity{
		TermA:    strings.ToLower(m[1]),
		TermB:    strings.ToLower(m[3]),
		Distance: dist,
	}
	// Keep both terms searchable, drop only the operator
	return nearPattern.ReplaceAllString(rest, "$1 $3")
}

func (n *Normalizer) extractExclusion(rest string, norm *Normalized) string {
	m := notPattern.FindStringSubmatch(rest)
	if m == nil {
		return rest
	}
	norm.Exclude = strings.ToLower(m[1])
	return notPattern.ReplaceAllString(rest, " ")
}

func (n *Normalizer) extractDates(rest string, norm *Normalized) string {
	lower := strings.ToLower(rest)

	for _, alias := range eraAliases {
		if alias.pattern.MatchString(lower) {
			f := alias.filter
			norm.Date = mergeDate(norm.Date, &f)
			// Era aliases stay in the token stream; their words may
			// still be meaningful search terms.
		}
	}

	if m := beforeYear.FindStringSubmatch(rest); m != nil {
		year, _ := strconv.Atoi(m[1])
		norm.Date = mergeDate(norm.Date, &DateFilter{YearEnd: year - 1})
		rest = beforeYear.ReplaceAllString(rest, " ")
	}

	if m := afterYear.FindStringSubmatch(rest); m != nil {
		year, _ := strconv.Atoi(m[1])
		norm.Date = mergeDate(norm.Date, &DateFilter{YearStart: year + 1})
		rest = afterYear.ReplaceAllString(rest, " ")
	}

	if m := yearRange.FindStringSubmatch(rest); m != nil {
		start, _ := strconv.Atoi(m[1])
		end, _ := strconv.Atoi(m[2])
		if start <= end {
			norm.Date = mergeDate(norm.Date, &DateFilter{YearStart: start, YearEnd: end})
			rest = yearRange.ReplaceAllString(rest, " ")
		}
	}

	return rest
}

// mergeDate combines filters by taking the tighter bound on each side
func mergeDate(existing, incoming *DateFilter) *DateFilter {
	if existing == nil {
		return incoming
	}
	if incoming.YearStart > existing.YearStart {
		existing.YearStart = incoming.YearStart
	}
	if incoming.YearEnd > 0 && (existing.YearEnd == 0 || incoming.YearEnd < existing.YearEnd) {
		existing.YearEnd = incoming.YearEnd
	}
	return existing
}

// tokenize lowercases, strips punctuation and splits on whitespace.
// Internal apostrophes survive so contractions stay intact.
func tokenize(s string) []string {
	s = strings.ToLower(s)
	s = nonWordChars.ReplaceAllString(s, " ")

	var tokens []string
	for _, tok := range strings.Fields(s) {
		tok = strings.Trim(tok, "'")
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// Tokenize exposes the package tokenizer for scoring against raw queries
func Tokenize(s string) []string {
	return tokenize(s)
}

// IsStopword reports whether the token carries no search signal
func (n *Normalizer) IsStopword(tok string) bool {
	_, ok := n.stopwords[strings.ToLower(tok)]
	return ok
}
