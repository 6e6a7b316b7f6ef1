// Package qa answers free-text questions against extracted document text.
//
// The whole package is pure computation over strings: no I/O, no shared
// state, and no error returns. Every input, including empty text, maps to
// some answer through the fallback templates.
package qa

import (
	"strings"
	"unicode/utf8"
)

// minDocumentChars is the minimum trimmed document length worth matching
// against. Anything shorter short-circuits to the fallback answer.
const minDocumentChars = 50

// Source tags attached to answers, identifying which branch produced them.
const (
	SourceContentAnalysis = "Document Content Analysis"
	SourceIntroduction    = "Document Introduction"
	SourceRelevantSection = "Relevant Document Section"
	SourceGeneralAnalysis = "General Document Analysis"
)

// fallbackConfidence is attached when the bare fallback answer is wrapped
// into a Result. The fallback itself carries no confidence.
const fallbackConfidence = 0.5

// Result is the record produced for every question.
type Result struct {
	Answer     string   `json:"answer"`
	Confidence float64  `json:"confidence"`
	Sources    []string `json:"sources"`
}

// input carries the precomputed segmentation shared by all branches.
type input struct {
	question  string
	text      string
	sentences []string
	relevant  []string
}

// branch pairs a predicate with its handler. Branches are evaluated in
// declaration order and are mutually exclusive; the last one always matches.
type branch struct {
	name  string
	match func(input) bool
	apply func(input) Result
}

var branches = []branch{
	{
		name:  "no_usable_text",
		match: func(in input) bool { return utf8.RuneCountInString(in.text) < minDocumentChars },
		apply: func(in input) Result { return wrapFallback(in.question) },
	},
	{
		name:  "direct_match",
		match: func(in input) bool { return len(in.relevant) > 0 },
		apply: composeDirect,
	},
	{
		name:  "summary_request",
		match: isSummaryRequest,
		apply: composeSummary,
	},
	{
		name:  "keyword_scan",
		match: func(input) bool { return true },
		apply: composeByQuestionType,
	},
}

// Answer runs a question against document text and always produces a Result.
func Answer(text, question string) Result {
	in := input{
		question: question,
		text:     strings.TrimSpace(text),
	}
	if utf8.RuneCountInString(in.text) >= minDocumentChars {
		in.sentences = SplitSentences(in.text)
		in.relevant = RelevantSentences(in.sentences, SignificantWords(question))
	}

	for _, b := range branches {
		if b.match(in) {
			return b.apply(in)
		}
	}
	// Unreachable: keyword_scan always matches.
	return wrapFallback(in.question)
}

// wrapFallback gives the bare fallback answer the uniform record shape.
func wrapFallback(question string) Result {
	return Result{
		Answer:     FallbackAnswer(question),
		Confidence: fallbackConfidence,
		Sources:    []string{SourceGeneralAnalysis},
	}
}
