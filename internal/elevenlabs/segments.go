package elevenlabs

import "strings"

const (
	speaker1Prefix = "Speaker 1:"
	speaker2Prefix = "Speaker 2:"
)

// Segment is one spoken line of the dialogue, attributed to a speaker.
type Segment struct {
	Speaker int
	Text    string
}

// ParseSegments splits a two-speaker script into per-line segments. Lines
// without a speaker prefix (stage directions, blank lines) are skipped.
func ParseSegments(script string) []Segment {
	var segments []Segment
	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, speaker1Prefix):
			text := strings.TrimSpace(strings.TrimPrefix(line, speaker1Prefix))
			if text != "" {
				segments = append(segments, Segment{Speaker: 1, Text: text})
			}
		case strings.HasPrefix(line, speaker2Prefix):
			text := strings.TrimSpace(strings.TrimPrefix(line, speaker2Prefix))
			if text != "" {
				segments = append(segments, Segment{Speaker: 2, Text: text})
			}
		}
	}
	return segments
}
