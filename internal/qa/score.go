package qa

import "strings"

// RelevantSentences returns the sentences containing at least one
// significant word, in document order. Matching is plain substring
// containment, not word-boundary aware: "art" matches "start".
func RelevantSentences(sentences, words []string) []string {
	if len(words) == 0 {
		return nil
	}

	var relevant []string
	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		for _, w := range words {
			if strings.Contains(lower, w) {
				relevant = append(relevant, sentence)
				break
			}
		}
	}
	return relevant
}
