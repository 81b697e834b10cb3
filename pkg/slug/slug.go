package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Generate creates a URL-friendly slug. Accented letters are folded to their
// base form before everything outside [a-z0-9] collapses to single hyphens.
//
//	"Marble Ganesha Murti" -> "marble-ganesha-murti"
//	"Pietà Replica"        -> "pieta-replica"
//	"Marble Decor & More!" -> "marble-decor-more"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "ı", "i")

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Match reports whether candidate names the same thing as name once both
// are slugified, so "marble-decor" matches the category "Marble Decor".
func Match(name, candidate string) bool {
	a := Generate(name)
	return a != "" && a == Generate(candidate)
}
