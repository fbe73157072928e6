package domain

// Language is one of the content languages the product ships in.
type Language string

const (
	LanguageEN Language = "en"
	LanguageTR Language = "tr"
)

// ParseLanguage validates a raw language code.
func ParseLanguage(s string) (Language, error) {
	switch Language(s) {
	case LanguageEN, LanguageTR:
		return Language(s), nil
	}
	return "", &ValidationError{Field: "language", Rule: `be "en" or "tr"`}
}

// DisplayName returns the human-readable language name used in generation prompts.
func (l Language) DisplayName() string {
	if l == LanguageTR {
		return "Turkish"
	}
	return "English"
}
