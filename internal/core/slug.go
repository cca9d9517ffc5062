package core

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugSeparators = regexp.MustCompile(`[–—/:;,.]`)
	slugInvalid    = regexp.MustCompile(`[^a-z0-9 -]`)
	slugDashes     = regexp.MustCompile(`-+`)
)

// Slugify converts a string into a lowercase ASCII slug suitable for
// filenames: separating punctuation and spaces become hyphens, accents are
// folded and anything else outside [a-z0-9-] is removed.
func Slugify(value string) string {
	value = slugSeparators.ReplaceAllString(value, "-")

	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), value)
	if err == nil {
		value = folded
	}

	value = strings.ToLower(value)
	value = slugInvalid.ReplaceAllString(value, "")
	value = strings.ReplaceAll(value, " ", "-")
	value = slugDashes.ReplaceAllString(value, "-")
	return value
}
