package ingest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// timecodePattern matches a SubRip cue line. The millisecond separator is a
// comma in SRT proper and a dot in tracks converted from WebVTT; both occur
// in scraper output, so both are accepted.
var timecodePattern = regexp.MustCompile(
	`^(\d{1,2}):(\d{2}):(\d{2})[.,](\d{3})\s+-->\s+(\d{1,2}):(\d{2}):(\d{2})[.,](\d{3})`)

// ParseSRT reads a SubRip caption track. Cue index lines are ignored, text
// may span multiple lines until a blank line, and formatting tags are
// stripped. Cues with no remaining text are dropped.
func ParseSRT(r io.Reader) ([]Caption, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var captions []Caption
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.Contains(line, "-->") {
			continue
		}

		start, end, err := parseTimecodeLine(line)
		if err != nil {
			return nil, err
		}

		var text []string
		for scanner.Scan() {
			cueLine := strings.TrimSpace(scanner.Text())
			if cueLine == "" {
				break
			}
			cueLine = tagPattern.ReplaceAllString(cueLine, "")
			if cueLine != "" {
				text = append(text, cueLine)
			}
		}

		if len(text) > 0 {
			captions = append(captions, Caption{
				Start: start,
				End:   end,
				Text:  strings.Join(text, " "),
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read captions: %w", err)
	}
	return captions, nil
}

func parseTimecodeLine(line string) (start, end float64, err error) {
	m := timecodePattern.FindStringSubmatch(line)
	if m == nil {
		return 0, 0, fmt.Errorf("malformed timecode line: %q", line)
	}
	return timecodeSeconds(m[1:5]), timecodeSeconds(m[5:9]), nil
}

// timecodeSeconds converts matched [hours, minutes, seconds, millis] strings
func timecodeSeconds(parts []string) float64 {
	h, _ := strconv.Atoi(parts[0])
	m, _ := strconv.Atoi(parts[1])
	s, _ := strconv.Atoi(parts[2])
	ms, _ := strconv.Atoi(parts[3])
	return float64(h*3600+m*60+s) + float64(ms)/1000
}
