package inventory

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FoldKey quita tildes, espacios sobrantes y mayúsculas: "Envío " -> "envio".
func FoldKey(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	return cases.Fold().String(strings.Join(strings.Fields(out), " "))
}

// alnumKey deja solo letras y dígitos del texto plegado: "sv-24/a" -> "sv24a".
func alnumKey(s string) string {
	f := FoldKey(s)
	var b strings.Builder
	b.Grow(len(f))
	for _, r := range f {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SameText compara dos textos plegados con FoldKey.
func SameText(a, b string) bool {
	return FoldKey(a) == FoldKey(b)
}
