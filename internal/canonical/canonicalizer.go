package canonical

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical is the comparable form of a raw item description. Text carries
// the cleaned tokens with the quantity removed; the quantity survives as
// structured data.
type Canonical struct {
	Text          string
	QuantityValue float64
	QuantityUnit  string
}

// unitSynonyms maps Portuguese unit spellings to their short form.
var unitSynonyms = map[string]string{
	"g": "g", "grama": "g", "gramas": "g", "gr": "g",
	"kg": "kg", "quilo": "kg", "quilos": "kg", "kilo": "kg", "kilos": "kg", "kgs": "kg",
	"l": "l", "lt": "l", "litro": "l", "litros": "l",
	"ml": "ml", "mililitro": "ml", "mililitros": "ml",
	"un": "un", "und": "un", "unid": "un", "unidade": "un", "unidades": "un",
}

var (
	separatorRe    = regexp.MustCompile(`[^a-z0-9.]+`)
	decimalCommaRe = regexp.MustCompile(`(\d),(\d)`)
	quantityRe     = regexp.MustCompile(`\b(\d+(?:\.\d+)?)(g|kg|l|ml|un)\b`)
	danglingDotRe  = regexp.MustCompile(`(^|\s)\.+|\.+(\s|$)`)
)

// Normalize canonicalizes a raw item description. It is pure and
// idempotent: Normalize(c.Text) returns c.Text unchanged with no quantity.
func Normalize(raw string) Canonical {
	text := strings.ToLower(raw)
	text = stripDiacritics(text)
	text = decimalCommaRe.ReplaceAllString(text, "$1.$2")
	text = separatorRe.ReplaceAllString(text, " ")
	text = danglingDotRe.ReplaceAllString(text, " ")

	// Map unit spellings to short form, merging "200 ml" into "200ml".
	words := strings.Fields(text)
	merged := make([]string, 0, len(words))
	for _, w := range words {
		short, isUnit := unitSynonyms[w]
		if isUnit && len(merged) > 0 && isNumber(merged[len(merged)-1]) {
			merged[len(merged)-1] += short
			continue
		}
		if isUnit {
			w = short
		}
		merged = append(merged, w)
	}
	text = strings.Join(merged, " ")

	c := Canonical{}
	if m := quantityRe.FindStringSubmatchIndex(text); m != nil {
		value, err := strconv.ParseFloat(text[m[2]:m[3]], 64)
		if err == nil {
			c.QuantityValue = value
			c.QuantityUnit = text[m[4]:m[5]]
			text = text[:m[0]] + text[m[1]:]
		}
	}

	c.Text = strings.Join(strings.Fields(text), " ")
	return c
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// stripDiacritics removes combining marks (NFD + strip Mn + NFC).
func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
