package orchestrator

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	weightPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:kg|kgs|kilo|kilos|kilogram|kilograms)\b`)
	piecesPattern = regexp.MustCompile(`(\d+)\s*(?:piece|pieces|pcs|box|boxes|item|items|parcel|parcels)\b`)
)

// cityVocabulary maps lowercase city spellings (including common
// aliases) to the canonical name sent to the provider APIs.
var cityVocabulary = map[string]string{
	"riyadh":   "Riyadh",
	"jeddah":   "Jeddah",
	"jedda":    "Jeddah",
	"dammam":   "Dammam",
	"makkah":   "Makkah",
	"mecca":    "Makkah",
	"madinah":  "Madinah",
	"medina":   "Madinah",
	"khobar":   "Khobar",
	"dhahran":  "Dhahran",
	"taif":     "Taif",
	"abha":     "Abha",
	"tabuk":    "Tabuk",
	"jazan":    "Jazan",
	"jizan":    "Jazan",
	"hail":     "Hail",
	"buraydah": "Buraydah",
	"jubail":   "Jubail",
	"yanbu":    "Yanbu",
	"najran":   "Najran",
	"alahsa":   "Al Ahsa",
	"al ahsa":  "Al Ahsa",
	"hofuf":    "Hofuf",
}

// ExtractParameters pulls structured entities out of the raw message.
// Pure function: no side effects, never fails, missing patterns simply
// omit their key.
//
// City slots are assigned by position of first occurrence in the text,
// not by vocabulary order: a single mentioned city fills destination,
// two or more fill origin (first) then destination (second).
func ExtractParameters(message string) map[string]any {
	params := make(map[string]any)
	lower := strings.ToLower(message)

	if m := weightPattern.FindStringSubmatch(lower); m != nil {
		// The rates provider expects weight as a string.
		params["weight"] = m[1]
	}
	if m := piecesPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			params["pieces"] = n
		}
	}

	cities := citiesByPosition(lower)
	switch len(cities) {
	case 0:
	case 1:
		params["destination_city"] = cities[0]
	default:
		params["origin_city"] = cities[0]
		params["destination_city"] = cities[1]
	}

	return params
}

type cityMatch struct {
	pos  int
	name string
}

// citiesByPosition returns canonical city names ordered by where each
// city is first mentioned in the text.
func citiesByPosition(lower string) []string {
	var matches []cityMatch
	seen := make(map[string]struct{})
	for alias, canonical := range cityVocabulary {
		pos := indexWord(lower, alias)
		if pos < 0 {
			continue
		}
		if _, dup := seen[canonical]; dup {
			// Keep the earliest alias occurrence per city.
			for i := range matches {
				if matches[i].name == canonical && pos < matches[i].pos {
					matches[i].pos = pos
				}
			}
			continue
		}
		seen[canonical] = struct{}{}
		matches = append(matches, cityMatch{pos: pos, name: canonical})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].pos < matches[j].pos })

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m.name)
	}
	return names
}

// indexWord finds needle in haystack at a word boundary, returning -1
// when absent. Plain substring search would match "hail" inside
// "thailand".
func indexWord(haystack, needle string) int {
	from := 0
	for {
		i := strings.Index(haystack[from:], needle)
		if i < 0 {
			return -1
		}
		start := from + i
		end := start + len(needle)
		startOK := start == 0 || !isWordChar(haystack[start-1])
		endOK := end == len(haystack) || !isWordChar(haystack[end])
		if startOK && endOK {
			return start
		}
		from = start + 1
		if from >= len(haystack) {
			return -1
		}
	}
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_'
}
