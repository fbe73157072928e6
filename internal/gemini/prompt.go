package gemini

import (
	"fmt"

	"github.com/lurkingpods/backend/internal/domain"
)

// buildScriptPrompt produces the generation prompt for a two-speaker daily
// podcast episode. The model must answer with a single JSON object so the
// response can be decoded directly into a domain.Script.
func buildScriptPrompt(categoryName string, language domain.Language) string {
	return fmt.Sprintf(`You are writing a script for a daily news podcast episode about %s.
The episode is a conversation between two hosts and must be written in %s.

Requirements:
- The dialogue alternates between the two hosts. Prefix every line with
  "Speaker 1:" or "Speaker 2:".
- The spoken content should run roughly one minute when read aloud
  (45 to 75 seconds).
- The full dialogue must be between 100 and 5000 characters.
- Keep the tone conversational and informative.

Respond with a single JSON object and nothing else:
{
  "title": "episode title, 3 to 100 characters",
  "description": "one or two sentence episode summary",
  "content": "the full dialogue with Speaker 1:/Speaker 2: prefixes",
  "duration": 60,
  "speaker_1_voice_id": "voice_1",
  "speaker_2_voice_id": "voice_2",
  "quality_score": 0.9
}`, categoryName, language.DisplayName())
}
