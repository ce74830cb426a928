package catalog

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugPattern   = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonSlugChars  = regexp.MustCompile(`[^a-z0-9]+`)
	slugTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slugify derives a URL-safe slug from a display name: diacritics are
// stripped, everything outside [a-z0-9] collapses to single hyphens.
func Slugify(name string) string {
	s, _, err := transform.String(slugTransform, name)
	if err != nil {
		s = name
	}
	s = strings.ToLower(s)
	s = nonSlugChars.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// IsValidSlug reports whether s is a well-formed service slug.
func IsValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}
