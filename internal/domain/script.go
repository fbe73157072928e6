package domain

// Script is the structured output of the script provider: a two-speaker dialogue
// plus the metadata needed to synthesize and persist a podcast from it.
type Script struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Content         string  `json:"content"`
	Duration        int     `json:"duration"`
	Speaker1VoiceID string  `json:"speaker_1_voice_id"`
	Speaker2VoiceID string  `json:"speaker_2_voice_id"`
	QualityScore    float64 `json:"quality_score"`
}
