package rank

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Boost is one piece of curated domain knowledge: when a query touches any
// of the topics, results from the named video get a fixed bonus. These force
// known-correct answers to the top for known query patterns; they are
// configuration, not ranking logic.
type Boost struct {
	VideoID string   `yaml:"video_id"`
	Topics  []string `yaml:"topics"`
	Bonus   int      `yaml:"bonus"`
}

// BoostTable is the injectable collection of boosts
type BoostTable []Boost

// LoadBoosts reads a boost table from a YAML file. A missing path returns an
// empty table, not an error: boosts are optional.
func LoadBoosts(path string) (BoostTable, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read boost file: %w", err)
	}

	var table BoostTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse boost file %s: %w", path, err)
	}
	return table, nil
}

// bonusFor sums the bonuses that apply to a video given the query terms
func (t BoostTable) bonusFor(videoID string, terms []string) int {
	total := 0
	for _, b := range t {
		if b.VideoID != videoID {
			continue
		}
		for _, topic := range b.Topics {
			if containsTerm(terms, topic) {
				total += b.Bonus
				break
			}
		}
	}
	return total
}

func containsTerm(terms []string, topic string) bool {
	topic = strings.ToLower(topic)
	for _, term := range terms {
		if term == topic {
			return true
		}
	}
	return false
}
