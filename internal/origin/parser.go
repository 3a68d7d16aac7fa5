// Package origin extracts document codes from the free-text origin field that
// registrars write inside entries.
package origin

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/cadeia/internal/model"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// number accepts plain digits or thousands grouped with dots, "4.512".
const number = `(\d{1,3}(?:\.\d{3})+|\d+)`

var (
	// M123, T45, M1.234
	compactPattern = regexp.MustCompile(`\b([MT])` + number + `\b`)
	// M 123, M-123, T. 45, t 45
	separatedPattern = regexp.MustCompile(`(?i)\b([mt])(?:\s*[.\-]\s*|\s+)` + number + `\b`)
	// transcricao 456, matricula nº 12.345 (applied to accent-folded text)
	wordPattern = regexp.MustCompile(`(?i)\b(transcricao|matricula)\s*(?:n\s*[o.º°]*\s*)?[.:]?\s*` + number + `\b`)
	// bare runs of three or more digits, or dotted thousands
	barePattern = regexp.MustCompile(`\b(\d{1,3}(?:\.\d{3})+|\d{3,})\b`)
)

type span struct{ start, end int }

func (s span) overlaps(o span) bool {
	return s.start < o.end && o.start < s.end
}

// Parse returns the set of document codes cited by text. It never fails:
// unrecognized text yields an empty set.
//
// Passes are unioned in order: compact letter codes, letter codes with a
// separator, the words "transcrição"/"matrícula" followed by a number, and finally
// bare digit runs not already covered by an earlier pass, read as matrículas.
// Numbers may carry thousands dots; a compact code needs an uppercase letter so
// measures such as "m2" are not read as documents.
func Parse(text string) mapset.Set[model.DocumentCode] {
	codes := mapset.NewThreadUnsafeSet[model.DocumentCode]()

	folded := fold(text)
	if strings.TrimSpace(folded) == "" {
		return codes
	}

	covered := make([]span, 0)
	collect := func(pattern *regexp.Regexp, kind func(string) model.DocumentKind) {
		for _, m := range pattern.FindAllStringSubmatchIndex(folded, -1) {
			covered = append(covered, span{m[0], m[1]})
			codes.Add(model.NewCode(kind(folded[m[2]:m[3]]), digits(folded[m[4]:m[5]])))
		}
	}

	letterKind := func(s string) model.DocumentKind { return model.DocumentKind(strings.ToUpper(s)) }

	collect(compactPattern, letterKind)
	collect(separatedPattern, letterKind)
	collect(wordPattern, func(s string) model.DocumentKind {
		if strings.EqualFold(s, "transcricao") {
			return model.KindTranscricao
		}
		return model.KindMatricula
	})

	for _, m := range barePattern.FindAllStringSubmatchIndex(folded, -1) {
		bare := span{m[2], m[3]}
		if coveredBy(bare, covered) {
			continue
		}
		codes.Add(model.NewCode(model.KindMatricula, digits(folded[m[2]:m[3]])))
	}

	return codes
}

// ParseSorted returns the codes of Parse in a stable order.
func ParseSorted(text string) []model.DocumentCode {
	return Sorted(Parse(text))
}

func Sorted(set mapset.Set[model.DocumentCode]) []model.DocumentCode {
	codes := set.ToSlice()
	sort.Slice(codes, func(i, j int) bool {
		return codes[i].Less(codes[j])
	})

	return codes
}

// digits drops thousands separators, "12.345" -> "12345".
func digits(s string) string {
	return strings.ReplaceAll(s, ".", "")
}

func coveredBy(s span, covered []span) bool {
	for _, c := range covered {
		if s.overlaps(c) {
			return true
		}
	}

	return false
}

// fold strips diacritics so "transcrição" and "transcricao" match alike.
func fold(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}

	return folded
}
