package model

import (
	"fmt"
	"strings"
)

// Scraped is a loosely-typed listing as produced by the scraper. No key is
// guaranteed to be present, values may be strings, numbers, lists, or nested
// maps. Unrecognized keys travel through untouched into the record's raw
// shadow.
type Scraped map[string]any

// Str returns the value under key coerced to a trimmed string, or "" when the
// key is absent or not string-like.
func (s Scraped) Str(key string) string {
	if s == nil {
		return ""
	}
	switch v := s[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	case int:
		return fmt.Sprintf("%d", v)
	case int64:
		return fmt.Sprintf("%d", v)
	default:
		return ""
	}
}

// Strings returns the value under key as a list of strings. Both []string and
// the []any shape produced by JSON decoding are accepted.
func (s Scraped) Strings(key string) []string {
	if s == nil {
		return nil
	}
	switch v := s[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// Child returns the nested map under key, or nil.
func (s Scraped) Child(key string) Scraped {
	if s == nil {
		return nil
	}
	switch v := s[key].(type) {
	case map[string]any:
		return Scraped(v)
	case Scraped:
		return v
	default:
		return nil
	}
}

// Location holds the fixed five-key listing location.
type Location struct {
	Country string `json:"country"`
	Region  string `json:"region"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
	Address string `json:"address"`
}

// LocationFromScraped builds a Location from a nested scraped map. A missing
// or malformed sub-object yields the zero value.
func LocationFromScraped(s Scraped) Location {
	return Location{
		Country: s.Str("country"),
		Region:  s.Str("region"),
		City:    s.Str("city"),
		Zip:     s.Str("zip"),
		Address: s.Str("address"),
	}
}

// Map returns the location as a plain map, the shape stored in the raw shadow.
func (l Location) Map() map[string]any {
	return map[string]any{
		"country": l.Country,
		"region":  l.Region,
		"city":    l.City,
		"zip":     l.Zip,
		"address": l.Address,
	}
}

// IsZero reports whether every sub-field is empty.
func (l Location) IsZero() bool {
	return l.Country == "" && l.Region == "" && l.City == "" && l.Zip == "" && l.Address == ""
}
