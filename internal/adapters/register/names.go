package register

import (
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var suffixes = map[string]struct{}{
	"jr": {}, "sr": {}, "ii": {}, "iii": {}, "iv": {},
}

// fold lower-cases s, strips accents and drops punctuation. Hyphens and
// underscores become spaces and runs of whitespace collapse to one.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}

	var b strings.Builder
	for _, r := range strings.ToLower(stripped) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// compact removes spaces so "j d" and "jd" compare equal.
func compact(s string) string {
	return strings.ReplaceAll(s, " ", "")
}

// splitName folds a full name and returns its first and last parts.
// Trailing generational suffixes are dropped.
func splitName(full string) (first, last string, err error) {
	words := strings.Fields(fold(full))
	for len(words) > 2 {
		if _, ok := suffixes[words[len(words)-1]]; !ok {
			break
		}
		words = words[:len(words)-1]
	}
	if len(words) < 2 {
		return "", "", ErrInvalidName
	}
	return words[0], strings.Join(words[1:], " "), nil
}

// DisplayName title-cases a name for console output.
func DisplayName(name string) string {
	return cases.Title(language.English).String(strings.Join(strings.Fields(name), " "))
}

// fingerprint is a character bigram frequency vector.
type fingerprint struct {
	grams map[string]float64
	norm  float64
}

func newFingerprint(s string) *fingerprint {
	padded := []rune(" " + s + " ")
	if len(padded) < 3 {
		return nil
	}
	grams := make(map[string]float64, len(padded))
	for i := 0; i+1 < len(padded); i++ {
		grams[string(padded[i:i+2])]++
	}
	var sum float64
	for _, c := range grams {
		sum += c * c
	}
	return &fingerprint{grams: grams, norm: math.Sqrt(sum)}
}

// cosine returns the cosine similarity of two fingerprints, 0 when either
// is empty.
func cosine(a, b *fingerprint) float64 {
	if a == nil || b == nil || a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	for g, c := range a.grams {
		if o, ok := b.grams[g]; ok {
			dot += c * o
		}
	}
	return dot / (a.norm * b.norm)
}
