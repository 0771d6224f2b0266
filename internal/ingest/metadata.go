package ingest

import (
	"regexp"
	"strconv"
)

var (
	// yearPattern matches a plausible diary year anywhere in a title
	yearPattern = regexp.MustCompile(`\b(1[89]\d{2}|20\d{2})\b`)

	// episodePattern matches "Episode 12", "Ep. 12", "ep12", "Ep #12"
	episodePattern = regexp.MustCompile(`(?i)\bep(?:isode)?\.?\s*#?(\d+)\b`)
)

// DeriveYear extracts the year a video's material covers. Titles carry the
// diary year ("Episode 40 (1925)"), which is what date filtering wants; the
// platform upload date is only a fallback. Returns 0 when neither yields one.
func DeriveYear(title, uploadDate string) int {
	if m := yearPattern.FindString(title); m != "" {
		year, _ := strconv.Atoi(m)
		return year
	}
	if len(uploadDate) >= 4 {
		if year, err := strconv.Atoi(uploadDate[:4]); err == nil && year > 1800 {
			return year
		}
	}
	return 0
}

// DeriveEpisode extracts the episode number from a title, 0 if absent
func DeriveEpisode(title string) int {
	m := episodePattern.FindStringSubmatch(title)
	if m == nil {
		return 0
	}
	episode, _ := strconv.Atoi(m[1])
	return episode
}
