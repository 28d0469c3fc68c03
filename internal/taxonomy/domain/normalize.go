package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeName folds a display name into the key used for case-insensitive
// matching: accents stripped, upper-cased, whitespace collapsed.
//
//	"  Cartes   mères " -> "CARTES MERES"
func NormalizeName(name string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name,
	)
	if err != nil {
		folded = name
	}
	return strings.ToUpper(strings.Join(strings.Fields(folded), " "))
}
