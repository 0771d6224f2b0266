package result

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/transcripta/capsearch/internal/rank"
	"github.com/transcripta/capsearch/pkg/types"
)

// DefaultPlatform is the video platform used in watch links
const DefaultPlatform = "youtube.com"

// ExplanationTemplate is curated scenario knowledge: when a result matched
// all the listed topics, its explanation uses the template text instead of
// the generic one.
type ExplanationTemplate struct {
	Topics []string `yaml:"topics"`
	Text   string   `yaml:"text"`
}

// Formatter converts ranked hits into uniform result records
type Formatter struct {
	platform  string
	templates []ExplanationTemplate
}

// NewFormatter creates a Formatter. An empty platform falls back to
// DefaultPlatform; templates may be nil.
func NewFormatter(platform string, templates []ExplanationTemplate) *Formatter {
	if platform == "" {
		platform = DefaultPlatform
	}
	return &Formatter{platform: platform, templates: templates}
}

// Format builds the final result records: human timestamp, watch link and
// a short explanation of why each hit matched.
func (f *Formatter) Format(results []rank.Result) []types.SearchResult {
	out := make([]types.SearchResult, len(results))
	for i, res := range results {
		seconds := int(res.Hit.StartTime)
		out[i] = types.SearchResult{
			Title:            res.Hit.Title,
			VideoID:          res.Hit.VideoID,
			StartTime:        res.Hit.StartTime,
			TimestampSeconds: seconds,
			Timestamp:        FormatTimestamp(seconds),
			Text:             res.Hit.Text,
			ExternalURL:      f.WatchURL(res.Hit.VideoID, seconds),
			Explanation:      f.explain(res),
			Score:            res.Score,
		}
	}
	return out
}

// WatchURL builds the external link for a hit
func (f *Formatter) WatchURL(videoID string, seconds int) string {
	return fmt.Sprintf("https://%s/watch?v=%s&t=%ds", f.platform, url.QueryEscape(videoID), seconds)
}

// ParseWatchURL inverts WatchURL, extracting the video ID and the whole
// seconds offset from a formatted link.
func ParseWatchURL(raw string) (videoID string, seconds int, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, fmt.Errorf("invalid watch URL: %w", err)
	}
	videoID = u.Query().Get("v")
	if videoID == "" {
		return "", 0, fmt.Errorf("watch URL missing v parameter")
	}
	t := strings.TrimSuffix(u.Query().Get("t"), "s")
	if t != "" {
		seconds, err = strconv.Atoi(t)
		if err != nil {
			return "", 0, fmt.Errorf("invalid t parameter %q: %w", u.Query().Get("t"), err)
		}
	}
	return videoID, seconds, nil
}

// FormatTimestamp renders whole seconds as h:mm:ss, or m:ss under an hour
func FormatTimestamp(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// explain matches a result's terms against the scenario templates, falling
// back to a generic coverage explanation.
func (f *Formatter) explain(res rank.Result) string {
	for _, tmpl := range f.templates {
		if matchesAll(res.Matched, tmpl.Topics) {
			return tmpl.Text
		}
	}

	switch n := len(res.Matched); n {
	case 0:
		return "matched a related phrasing of your search"
	case 1:
		return fmt.Sprintf("this result mentions %q", res.Matched[0])
	default:
		return fmt.Sprintf("this result shares %d of your search terms (%s)",
			n, strings.Join(res.Matched, ", "))
	}
}

func matchesAll(matched, topics []string) bool {
	if len(topics) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(matched))
	for _, m := range matched {
		set[strings.ToLower(m)] = struct{}{}
	}
	for _, topic := range topics {
		if _, ok := set[strings.ToLower(topic)]; !ok {
			return false
		}
	}
	return true
}
