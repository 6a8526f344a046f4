package canonical

import "strings"

// knownBrands are frequent grocery brands seen on Brazilian receipts,
// keyed by their canonical (diacritic-free, lowercase) spelling. The value
// is the display form.
var knownBrands = map[string]string{
	"italac":      "Italac",
	"piracanjuba": "Piracanjuba",
	"parmalat":    "Parmalat",
	"nestle":      "Nestlé",
	"camil":       "Camil",
	"uniao":       "União",
	"tio joao":    "Tio João",
	"pilao":       "Pilão",
	"3 coracoes":  "3 Corações",
	"omo":         "OMO",
	"ype":         "Ypê",
	"veja":        "Veja",
	"seara":       "Seara",
	"sadia":       "Sadia",
	"perdigao":    "Perdigão",
	"friboi":      "Friboi",
	"aurora":      "Aurora",
	"qualy":       "Qualy",
	"soya":        "Soya",
	"liza":        "Liza",
	"crystal":     "Crystal",
	"heineken":    "Heineken",
	"skol":        "Skol",
	"brahma":      "Brahma",
	"antarctica":  "Antarctica",
	"coca cola":   "Coca-Cola",
	"guarana":     "Guaraná",
	"bauducco":    "Bauducco",
	"vitarella":   "Vitarella",
	"renata":      "Renata",
	"dona benta":  "Dona Benta",
	"kicaldo":     "Kicaldo",
	"maximo":      "Máximo",
}

// ExtractBrand looks for a known brand inside a canonical text. It returns
// the display form of the brand and the text with the brand removed; when
// no brand is recognized the text comes back unchanged.
func ExtractBrand(canonicalText string) (string, string) {
	// Two-word brands first so "tio joao" wins over a hypothetical "joao".
	for _, key := range twoWordBrandKeys {
		if idx := indexOfPhrase(canonicalText, key); idx >= 0 {
			return knownBrands[key], removePhrase(canonicalText, key)
		}
	}

	for _, word := range strings.Fields(canonicalText) {
		if display, ok := knownBrands[word]; ok {
			return display, removePhrase(canonicalText, word)
		}
	}

	return "", canonicalText
}

var twoWordBrandKeys = func() []string {
	var keys []string
	for k := range knownBrands {
		if strings.Contains(k, " ") {
			keys = append(keys, k)
		}
	}
	return keys
}()

func indexOfPhrase(text, phrase string) int {
	idx := strings.Index(text, phrase)
	for idx >= 0 {
		beforeOK := idx == 0 || text[idx-1] == ' '
		end := idx + len(phrase)
		afterOK := end == len(text) || text[end] == ' '
		if beforeOK && afterOK {
			return idx
		}
		next := strings.Index(text[idx+1:], phrase)
		if next < 0 {
			return -1
		}
		idx += 1 + next
	}
	return -1
}

func removePhrase(text, phrase string) string {
	idx := indexOfPhrase(text, phrase)
	if idx < 0 {
		return text
	}
	remainder := text[:idx] + text[idx+len(phrase):]
	return strings.Join(strings.Fields(remainder), " ")
}
