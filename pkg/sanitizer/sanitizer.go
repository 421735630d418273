package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reKeepLettersDigits = regexp.MustCompile(`[^0-9\p{L}]+`)
	reTrimUnderscores   = regexp.MustCompile(`_+`)
)

func trimAndLower(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return s
}

func collapseUnderscores(s string) string {
	s = reTrimUnderscores.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

func SanitizeText(input string) string {
	return TrimAndNormalize(input)
}

func SanitizeDescription(input string) string {
	return NormalizeMultiline(input)
}

// SanitizeCountry title-cases each word: " united  STATES " -> "United States".
func SanitizeCountry(input string) string {
	p := Pipeline{
		TrimAndNormalize,
		func(s string) string {
			words := strings.Split(s, " ")
			for i, w := range words {
				words[i] = titleWord(w)
			}
			return strings.Join(words, " ")
		},
	}
	return p.Apply(input)
}

// ComparisonKey reduces input to lowercase letters and digits so that
// "Sea View, Loft!" and "sea-view loft" compare equal.
func ComparisonKey(input string) string {
	p := Pipeline{
		trimAndLower,
		func(s string) string { return reKeepLettersDigits.ReplaceAllString(s, "_") },
		collapseUnderscores,
	}
	return p.Apply(input)
}
