package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "by": {},
	"for": {}, "from": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {}, "or": {},
	"the": {}, "to": {}, "with": {},
}

// Terms turns text into index terms: accents stripped, case folded, split on anything that is
// not a letter or digit, stop words dropped and plurals reduced.
func Terms(text string) []string {
	folded := fold(text)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, stop := stopWords[f]; stop {
			continue
		}
		terms = append(terms, stem(f))
	}
	return terms
}

// UniqueTerms returns Terms without duplicates, in first-seen order
func UniqueTerms(text string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, t := range Terms(text) {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func fold(text string) string {
	// transformers carry state, so build a fresh chain per call
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, text)
	if err != nil {
		stripped = text
	}
	return cases.Fold().String(stripped)
}

// stem strips common English plural endings
func stem(term string) string {
	n := len(term)
	switch {
	case n > 4 && strings.HasSuffix(term, "ies"):
		return term[:n-3] + "y"
	case n > 4 && (strings.HasSuffix(term, "ches") || strings.HasSuffix(term, "shes") ||
		strings.HasSuffix(term, "sses") || strings.HasSuffix(term, "xes") || strings.HasSuffix(term, "zes")):
		return term[:n-2]
	case n > 3 && strings.HasSuffix(term, "s") && !strings.HasSuffix(term, "ss") &&
		!strings.HasSuffix(term, "us") && !strings.HasSuffix(term, "is"):
		return term[:n-1]
	}
	return term
}
