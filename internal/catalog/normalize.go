package catalog

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify turns a supplier's material name into a stable catalog slug.
// Supplier price lists arrive with mixed-language names ("Überzug 3mm",
// "Sperrholz – Birke"); the slug strips diacritics so re-imports of the same
// material land on the same row.
func Slugify(name string) string {
	s := removeDiacritics(name)
	s = strings.ToLower(s)

	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// removeDiacritics strips combining marks after NFD normalization, with
// explicit mappings for letters that do not decompose.
func removeDiacritics(s string) string {
	replacer := strings.NewReplacer(
		"ß", "ss",
		"đ", "dj", "Đ", "Dj",
		"ø", "o", "Ø", "O",
		"æ", "ae", "Æ", "Ae",
	)
	s = replacer.Replace(s)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}
