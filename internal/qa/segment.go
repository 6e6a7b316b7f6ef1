package qa

import (
	"strings"
	"unicode/utf8"
)

// minSentenceChars is the trimmed length below which a fragment is
// discarded as noise rather than kept as a candidate sentence.
const minSentenceChars = 10

// SplitSentences splits document text into candidate sentences. Runs of
// sentence-terminating punctuation act as a single delimiter, and short
// fragments are dropped.
func SplitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	})

	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) > minSentenceChars {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// SignificantWords tokenizes a question into lower-cased matching keys.
// Tokens are split on whitespace only; short words (3 characters or fewer)
// carry too little signal and are dropped. Punctuation is not stripped, so
// "day?" only matches text containing "day?".
func SignificantWords(question string) []string {
	var words []string
	for _, tok := range strings.Fields(strings.ToLower(question)) {
		if utf8.RuneCountInString(tok) > 3 {
			words = append(words, tok)
		}
	}
	return words
}
