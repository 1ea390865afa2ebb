package albums

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var multiHyphen = regexp.MustCompile(`-{2,}`)

// slugify converts an album title into a URL-safe ASCII slug: decompose
// accents, strip combining marks, lowercase, hyphenate the rest.
func slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	decomposed, _, err := transform.String(t, title)
	if err != nil {
		decomposed = title
	}
	lowered := strings.ToLower(decomposed)
	hyphenated := strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return '-'
	}, lowered)
	return strings.Trim(multiHyphen.ReplaceAllString(hyphenated, "-"), "-")
}
