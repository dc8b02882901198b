package builtin

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const nbsp = "\u00a0"

func upper(s string) string { return strings.ToUpper(s) }
func lower(s string) string { return strings.ToLower(s) }
func trim(s string) string  { return strings.TrimSpace(s) }

// normalizeSpace replaces NO-BREAK SPACE, including its common mojibake
// "Â" + NBSP from double-decoded Latin-1, with a plain space and trims.
func normalizeSpace(s string) string {
	if strings.Contains(s, nbsp) {
		s = strings.ReplaceAll(s, "\u00c2"+nbsp, " ")
		s = strings.ReplaceAll(s, nbsp, " ")
	}
	return strings.TrimSpace(s)
}

// title upper-cases the first letter of each word. A Caser keeps state, so
// one is built per call.
func title(s string) string {
	return cases.Title(language.Und).String(s)
}

// foldASCII strips diacritics: decompose, drop nonspacing marks, recompose.
func foldASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// identifier turns free text into a lowercase ASCII name made of
// [a-z0-9_]. Space, dash and dot become a single underscore, anything else
// is dropped, and an empty result becomes "col".
func identifier(s string) string {
	s = foldASCII(strings.ToLower(strings.TrimSpace(s)))

	var b strings.Builder
	prevUnderscore := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prevUnderscore = false
		case r == '_' || r == ' ' || r == '-' || r == '.':
			if !prevUnderscore {
				b.WriteRune('_')
				prevUnderscore = true
			}
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "col"
	}
	return name
}
