package qa

import "strings"

// maxAdditionalSentences bounds how many extra relevant sentences are
// appended after the primary one.
const maxAdditionalSentences = 2

// summarySentences is how many leading sentences make up a summary answer.
const summarySentences = 3

// composeDirect builds an answer from the relevant sentences: the first one
// verbatim, then up to two more distinct ones appended.
func composeDirect(in input) Result {
	var b strings.Builder
	b.WriteString("Based on the document: ")
	b.WriteString(in.relevant[0])

	seen := map[string]bool{in.relevant[0]: true}
	added := 0
	for _, s := range in.relevant[1:] {
		if added >= maxAdditionalSentences {
			break
		}
		if seen[s] {
			continue
		}
		seen[s] = true
		b.WriteString(" Additionally, ")
		b.WriteString(s)
		added++
	}

	return Result{
		Answer:     b.String(),
		Confidence: confidence(len(in.relevant)),
		Sources:    []string{SourceContentAnalysis},
	}
}

// isSummaryRequest reports whether the question asks for a summary.
func isSummaryRequest(in input) bool {
	q := strings.ToLower(in.question)
	return strings.Contains(q, "summary") || strings.Contains(q, "overview")
}

// composeSummary answers a summary request with the document's opening
// sentences.
func composeSummary(in input) Result {
	n := summarySentences
	if n > len(in.sentences) {
		n = len(in.sentences)
	}
	return Result{
		Answer:     "Document summary: " + strings.Join(in.sentences[:n], ". "),
		Confidence: 0.8,
		Sources:    []string{SourceIntroduction},
	}
}

// composeByQuestionType scans sentences for keywords associated with the
// question's interrogative type. A hit surfaces that sentence; a miss falls
// through to the canned fallback text.
func composeByQuestionType(in input) Result {
	qt := ClassifyQuestion(in.question)

	for _, sentence := range in.sentences {
		lower := strings.ToLower(sentence)
		for _, kw := range typeKeywords[qt] {
			if strings.Contains(lower, kw) {
				return Result{
					Answer:     "The document mentions: " + sentence,
					Confidence: 0.75,
					Sources:    []string{SourceRelevantSection},
				}
			}
		}
	}

	return Result{
		Answer:     FallbackAnswer(in.question),
		Confidence: 0.6,
		Sources:    []string{SourceGeneralAnalysis},
	}
}

// confidence maps a relevant-sentence count to a heuristic score. It grows
// with the count and is capped at 0.95; it is not a calibrated probability.
func confidence(relevantCount int) float64 {
	c := 0.7 + 0.1*float64(relevantCount)
	if c > 0.95 {
		c = 0.95
	}
	return c
}
