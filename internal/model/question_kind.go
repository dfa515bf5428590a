package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// QuestionKind decides the input widget and the answer shape: single and
// boolean take one option id, multiple takes a set of option ids.
type QuestionKind string

const (
	KindSingle   QuestionKind = "single"
	KindMultiple QuestionKind = "multiple"
	KindBoolean  QuestionKind = "boolean"
)

// IsSet reports whether answers of this kind are a set of option ids
// rather than a single one.
func (k QuestionKind) IsSet() bool {
	return k == KindMultiple
}

var foldAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeQuestionType maps an upstream question-type label to a
// QuestionKind. Labels are compared case-insensitively with diacritics
// stripped, so "Múltiple respuesta" and "multiple respuesta" are the
// same thing. Unrecognized labels fall back to single choice.
func NormalizeQuestionType(name string) QuestionKind {
	folded, _, err := transform.String(foldAccents, name)
	if err != nil {
		folded = name
	}
	folded = strings.ToLower(strings.TrimSpace(folded))
	folded = strings.ReplaceAll(folded, "/", " o ")
	folded = strings.Join(strings.Fields(folded), " ")

	switch folded {
	case "multiple respuesta":
		return KindMultiple
	case "falso o verdadero", "verdadero o falso":
		return KindBoolean
	}
	return KindSingle
}
