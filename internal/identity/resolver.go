// Package identity derives the stable external id a listing is tracked
// under. Identity drift across runs silently duplicates a record and orphans
// the old one, so everything here must be a pure function of the durable
// input signals (site-native id, canonical URL path) and nothing else.
package identity

import (
	"strings"

	"je-feed-v2/internal/model"
	"je-feed-v2/pkg/uid"
)

// Prefix namespaces every external id this system assigns.
const Prefix = "JE-"

const maxSlugLen = 64

// Resolve returns the external id for a scraped listing. Priority:
// site-native id, canonical listing URL segment, title slug, and as an
// absolute fallback a freshly minted random token. The token fallback
// is a known limitation — such a record cannot be matched on the next run
// and will accrue a duplicate if the site keeps hiding its id and URL.
func Resolve(l model.Scraped) string {
	if id := l.Str("id"); id != "" {
		return Prefix + id
	}
	if seg := CanonicalPathSegment(l.Str("url")); seg != "" {
		return Prefix + seg
	}
	if slug := Slugify(l.Str("title"), maxSlugLen); slug != "" {
		return Prefix + slug
	}
	return Prefix + uid.New()
}

// CanonicalPathSegment extracts the last path segment of a listing URL with
// query, fragment, scheme, and host stripped, so that http/https or www
// variations of the same listing resolve identically. Returns "" when no
// path segment survives.
func CanonicalPathSegment(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return ""
	}
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
		if j := strings.IndexByte(s, '/'); j >= 0 {
			s = s[j:]
		} else {
			return ""
		}
	}
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// Slugify lowercases text, collapses runs of non-alphanumerics into single
// dashes, and truncates to maxLen.
func Slugify(text string, maxLen int) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(strings.TrimSpace(text)) {
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
	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxLen {
		slug = strings.Trim(slug[:maxLen], "-")
	}
	return slug
}

// ExportReference derives the consumer-facing advert reference from an
// external id. The consumer's reference field only tolerates a narrow
// character set, hence the slug form. Callers must treat the result as
// write-once: it is assigned on first sight and never regenerated.
func ExportReference(externalID string) string {
	return Slugify(externalID, 128)
}
