// Package export decides which inventory records are complete enough to
// appear in the feed. Exclusion is never destructive: a record missing a
// required field stays in the store and self-heals into the export once a
// later run fills the gap.
package export

import (
	"sort"
	"strings"

	"je-feed-v2/internal/identity"
	"je-feed-v2/internal/model"
)

// DefaultCountry backfills the one location field the feed consumer insists
// on when the site never disclosed it.
const DefaultCountry = "United States"

// Select returns the exportable records in deterministic (external id)
// order. Each returned record is a copy with the required fields resolved
// through the fallback chain — normalized field, raw shadow, then title
// derivation — so the serializer stays a thin mapping.
func Select(inv model.Inventory) []model.Record {
	ids := make([]string, 0, len(inv))
	for id := range inv {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]model.Record, 0, len(inv))
	for _, id := range ids {
		if rec, ok := resolve(inv[id]); ok {
			out = append(out, rec)
		}
	}
	return out
}

// resolve fills a record's export view, reporting ok=false when a required
// field cannot be satisfied from any source.
func resolve(rec *model.Record) (model.Record, bool) {
	if rec == nil || rec.Status != model.StatusActive {
		return model.Record{}, false
	}

	r := *rec
	r.Title = firstNonEmpty(r.Title, rec.RawStr("title"))
	r.Year = firstNonEmpty(r.Year, rec.RawStr("year"), YearFromTitle(r.Title))
	r.Brand = firstNonEmpty(r.Brand, rec.RawStr("brand"))
	r.Model = firstNonEmpty(r.Model, rec.RawStr("model"))
	if r.Brand == "" || r.Model == "" {
		b, m := BrandModelFromTitle(r.Title)
		r.Brand = firstNonEmpty(r.Brand, b)
		r.Model = firstNonEmpty(r.Model, m)
	}
	// The downstream schema rejects an empty model; brand stands in before
	// the record is given up on.
	if r.Model == "" {
		r.Model = r.Brand
	}

	if r.Year == "" || r.Brand == "" || r.Model == "" {
		return model.Record{}, false
	}

	r.Images = absoluteImages(r.Images)
	if len(r.Images) == 0 {
		return model.Record{}, false
	}

	r.JEReference = firstNonEmpty(r.JEReference, identity.ExportReference(r.ExternalID))
	if r.JEReference == "" {
		return model.Record{}, false
	}

	if r.Location.Country == "" {
		r.Location.Country = DefaultCountry
	}
	r.Description = firstNonEmpty(r.Description, rec.RawStr("description"))

	return r, true
}

func absoluteImages(images []string) []string {
	out := make([]string, 0, len(images))
	for _, u := range images {
		if strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://") {
			out = append(out, u)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
