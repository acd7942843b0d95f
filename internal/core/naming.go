package core

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	foldCaser  = cases.Fold()
	lowerCaser = cases.Lower(language.Und)
	titleCaser = cases.Title(language.Und)
)

// FoldKey is the case-insensitive comparison key for logins and names.
func FoldKey(value string) string {
	return foldCaser.String(strings.TrimSpace(value))
}

// Capitalize upper-cases the first letter and lower-cases the rest, so
// "team A" and "TEAM a" both become "Team a".
func Capitalize(value string) string {
	lowered := lowerCaser.String(strings.TrimSpace(value))
	first, size := utf8.DecodeRuneInString(lowered)
	if first == utf8.RuneError {
		return lowered
	}
	return string(unicode.ToTitle(first)) + lowered[size:]
}

// Titleize turns an identifier-like string into a display name:
// "web-shop_backend" becomes "Web Shop Backend".
func Titleize(value string) string {
	spaced := strings.NewReplacer("-", " ", "_", " ").Replace(strings.TrimSpace(value))
	return titleCaser.String(strings.Join(strings.Fields(spaced), " "))
}

// Parameterize folds value to a URL-safe identifier: accents are stripped,
// runs of characters outside [a-z0-9_-] collapse to a single "-", and the
// result is lower case without leading or trailing separators.
func Parameterize(value string) string {
	ascii, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), value)
	if err != nil {
		ascii = value
	}
	var builder strings.Builder
	pendingSep := false
	for _, r := range lowerCaser.String(ascii) {
		switch {
		case r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'):
			if pendingSep && builder.Len() > 0 {
				builder.WriteByte('-')
			}
			pendingSep = false
			builder.WriteRune(r)
		default:
			pendingSep = true
		}
	}
	return builder.String()
}
