package scanner

import (
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText builds the comparison key for a brand name or token:
// lower-cased, NFD-decomposed, with non-spacing marks removed.
// "Été", "ete" and "ETE" all normalize to "ete".
//
// Lower-casing runs first so marks introduced by case mapping
// (e.g. "İ" -> "i̇") are stripped too, keeping the function idempotent.
func NormalizeText(text string) string {
	if text == "" {
		return ""
	}

	// Casers and transform chains carry state, so build them per call.
	lowered := cases.Lower(language.Und).String(text)

	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	key, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		return lowered
	}
	return key
}
