package sanitizer

import (
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

func trim(s string) string {
	return strings.TrimSpace(s)
}

func lower(s string) string {
	return strings.ToLower(s)
}

func collapseWhitespace(s string) string {
	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

// NormalizeEmail lowercases and trims an email so (session, student) pair
// lookups behave the same regardless of how the client cased the address.
func NormalizeEmail(input string) string {
	p := Pipeline{trim, lower}
	return p.Apply(input)
}

func NormalizeTitle(input string) string {
	p := Pipeline{trim, collapseWhitespace}
	return p.Apply(input)
}

func NormalizeFreeText(input string) string {
	p := Pipeline{trim, collapseWhitespace}
	return p.Apply(input)
}
