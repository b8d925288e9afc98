package export

import (
	"regexp"
	"sort"
	"strings"
)

// knownBrands anchors brand detection in listing titles. Matched longest
// first so "Aston Martin" beats "Martin" and "Mercedes-Benz" wins whole.
var knownBrands = []string{
	"Aston Martin", "Mercedes-Benz", "Rolls-Royce", "Land Rover",
	"Volkswagen", "Chevrolet", "Porsche", "Ferrari", "Lamborghini",
	"Bentley", "Cadillac", "Studebaker", "Toyota", "Jaguar", "Dodge",
	"BMW", "Ford", "Jeep", "Audi", "Ural",
}

var (
	yearRe       = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	multiSpaceRe = regexp.MustCompile(`\s{2,}`)

	brandRes = buildBrandPatterns()
)

type brandPattern struct {
	name string
	re   *regexp.Regexp
}

func buildBrandPatterns() []brandPattern {
	names := append([]string{}, knownBrands...)
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	out := make([]brandPattern, 0, len(names))
	for _, n := range names {
		out = append(out, brandPattern{
			name: n,
			re:   regexp.MustCompile(`\b` + regexp.QuoteMeta(n) + `\b`),
		})
	}
	return out
}

// YearFromTitle pulls a plausible model year out of free text, or "".
func YearFromTitle(title string) string {
	if m := yearRe.FindString(title); m != "" {
		return m
	}
	return ""
}

// BrandModelFromTitle is the best-effort fallback when structured brand or
// model are missing. It never returns an empty model for a non-empty title:
// the downstream schema rejects empty models, so the title itself is the
// last resort.
func BrandModelFromTitle(title string) (brand, model string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ""
	}

	for _, bp := range brandRes {
		if bp.re.MatchString(title) {
			brand = bp.name
			break
		}
	}
	if brand == "" {
		fields := strings.Fields(title)
		if len(fields) > 0 {
			brand = fields[0]
		} else {
			brand = "Unknown"
		}
	}

	if idx := strings.Index(title, brand); idx >= 0 {
		after := strings.Trim(title[idx+len(brand):], " -")
		model = strings.TrimSpace(multiSpaceRe.ReplaceAllString(after, " "))
	}
	if model == "" {
		model = title
	}
	model = strings.TrimSpace(multiSpaceRe.ReplaceAllString(model, " "))
	return brand, model
}
