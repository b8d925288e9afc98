// Package merge implements the non-destructive field merge policy: a new
// observation wins only when it actually carries a value. The asymmetry is
// deliberate — losing a previously confirmed fact (an image, a location)
// costs more than a stale fact persisting one extra run.
package merge

import (
	"strings"

	"je-feed-v2/internal/model"
)

// MaxImages caps the stored gallery per record.
const MaxImages = 40

// IsEmpty is the single "no signal" predicate shared by all merge code.
// Absence, nil, blank strings, and empty lists/maps are all equivalent.
func IsEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case model.Scraped:
		return len(t) == 0
	case model.Location:
		return t.IsZero()
	}
	return false
}

// Choose returns new unless new is empty, in which case old survives.
func Choose(old, new any) any {
	if IsEmpty(new) {
		return old
	}
	return new
}

// String is Choose specialized to scalar string fields.
func String(old, new string) string {
	if strings.TrimSpace(new) == "" {
		return old
	}
	return new
}

// Images merges two galleries: old entries first, then unseen new ones,
// deduplicated, filtered to absolute URLs, truncated to limit. An empty new
// gallery therefore never shrinks what the consumer already sees.
func Images(old, new []string, limit int) []string {
	out := make([]string, 0, limit)
	seen := make(map[string]struct{}, len(old)+len(new))
	for _, u := range append(append([]string{}, old...), new...) {
		if len(out) >= limit {
			break
		}
		if !strings.HasPrefix(u, "http") {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// Location merges the fixed five sub-keys independently under the scalar rule.
func Location(old, new model.Location) model.Location {
	return model.Location{
		Country: String(old.Country, new.Country),
		Region:  String(old.Region, new.Region),
		City:    String(old.City, new.City),
		Zip:     String(old.Zip, new.Zip),
		Address: String(old.Address, new.Address),
	}
}

// Raw merges the raw attribute shadow key-by-key across the union of keys.
// Keys only present in old are kept as-is; keys present in new follow the
// scalar rule. Callers overwrite the normalized top-level fields afterwards.
func Raw(old map[string]any, new model.Scraped) map[string]any {
	merged := make(map[string]any, len(old)+len(new))
	for k, v := range old {
		merged[k] = v
	}
	for k, v := range new {
		merged[k] = Choose(merged[k], v)
	}
	return merged
}
