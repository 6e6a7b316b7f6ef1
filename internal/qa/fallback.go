package qa

import "strings"

// QuestionType classifies a question by its leading interrogative word.
type QuestionType string

const (
	QuestionWhat    QuestionType = "what"
	QuestionHow     QuestionType = "how"
	QuestionWhy     QuestionType = "why"
	QuestionWhen    QuestionType = "when"
	QuestionWhere   QuestionType = "where"
	QuestionWho     QuestionType = "who"
	QuestionGeneral QuestionType = "general"
)

// interrogatives is checked in declaration order against the start of the
// question.
var interrogatives = []QuestionType{
	QuestionWhat,
	QuestionWhere,
	QuestionWhen,
	QuestionWho,
	QuestionHow,
	QuestionWhy,
}

// typeKeywords are the per-type keyword sets scanned over sentences when no
// significant question word matched directly.
var typeKeywords = map[QuestionType][]string{
	QuestionWhat:  {"definition", "defined", "means", "refers", "called", "known as"},
	QuestionHow:   {"process", "method", "steps", "procedure", "works"},
	QuestionWhy:   {"because", "reason", "due to", "cause", "purpose"},
	QuestionWhen:  {"date", "year", "time", "period", "during"},
	QuestionWhere: {"location", "place", "located", "region", "site"},
	QuestionWho:   {"person", "people", "author", "team", "founder"},
}

// fallbackAnswers holds the canned redirect text per question type. Types
// without an entry share fallbackGeneral.
var fallbackAnswers = map[QuestionType]string{
	QuestionWhat: "I couldn't find a clear definition for that in the document. " +
		"Try asking about a specific term or section that appears in the text.",
	QuestionHow: "The document doesn't describe a process or method matching your question. " +
		"Try rephrasing it using terms the document actually uses.",
	QuestionWhy: "The document doesn't state a reason for that. " +
		"It may help to ask about a specific section instead.",
}

const fallbackGeneral = "I couldn't find information related to your question in this document. " +
	"Try asking about topics the document covers."

// ClassifyQuestion determines the question type from the leading
// interrogative word. Prefix matching keeps contractions like "what's"
// working.
func ClassifyQuestion(question string) QuestionType {
	q := strings.ToLower(strings.TrimSpace(question))
	for _, t := range interrogatives {
		if strings.HasPrefix(q, string(t)) {
			return t
		}
	}
	return QuestionGeneral
}

// FallbackAnswer returns the canned answer for a question that could not be
// matched against the document. It returns only text; callers needing the
// uniform record shape attach a default confidence themselves.
func FallbackAnswer(question string) string {
	if a, ok := fallbackAnswers[ClassifyQuestion(question)]; ok {
		return a
	}
	return fallbackGeneral
}
