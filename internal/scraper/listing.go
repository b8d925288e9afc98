package scraper

import (
	"context"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"je-feed-v2/internal/model"
)

const (
	maxImagesPerListing = 40
	maxDescriptionLen   = 3000
)

var (
	titleYearRe    = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	vinRe          = regexp.MustCompile(`\b[A-HJ-NPR-Z0-9]{11,17}\b`)
	mileageRe      = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})+|\d{1,6})\s*(miles|mi\.?|km)\b`)
	transmissionRe = regexp.MustCompile(`(?i)\b(manual|automatic|semi-automatic|dual-clutch)\b`)
	locationRe     = regexp.MustCompile(`(?i)Location:\s*(.+)`)
	blankLinesRe   = regexp.MustCompile(`\n{3,}`)
	photoExtRe     = regexp.MustCompile(`\.(jpe?g|webp)$`)
)

// ParseListing fetches one listing page and extracts whatever it can. Every
// field is optional; the listing id is left to the site when it exposes one
// in the page (it rarely does), so the URL usually carries identity.
func (c *Client) ParseListing(ctx context.Context, url string) (model.Scraped, error) {
	body, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}

	title := firstHeading(doc)
	year := titleYearRe.FindString(title)
	brand, modelName := splitTitle(title, year)

	blob := textBlob(doc)
	vin := vinRe.FindString(blob)
	mileage := ""
	if m := mileageRe.FindStringSubmatch(blob); m != nil {
		mileage = strings.ReplaceAll(m[1], ",", "")
	}
	transmission := strings.ToLower(transmissionRe.FindString(blob))

	return model.Scraped{
		"title":        title,
		"brand":        brand,
		"model":        modelName,
		"year":         year,
		"vin":          vin,
		"mileage":      mileage,
		"transmission": transmission,
		"images":       images(doc),
		"url":          url,
		"description":  description(doc),
		"location":     location(doc),
	}, nil
}

// firstHeading returns the text of the first h1 or h2.
func firstHeading(doc *html.Node) string {
	var title string
	walk(doc, func(n *html.Node) {
		if title != "" || n.Type != html.ElementNode {
			return
		}
		if n.Data == "h1" || n.Data == "h2" {
			title = collapseSpace(nodeText(n))
		}
	})
	if title == "" {
		title = "Listing"
	}
	return title
}

// splitTitle guesses brand and model from a "1969 Ford Mustang" shaped title.
func splitTitle(title, year string) (brand, modelName string) {
	if year != "" {
		if _, after, found := strings.Cut(title, year); found {
			fields := strings.Fields(strings.Trim(after, " -|"))
			if len(fields) > 0 {
				brand = fields[0]
				modelName = strings.Join(fields[1:], " ")
				if modelName == "" {
					modelName = brand
				}
			}
			return brand, modelName
		}
	}
	fields := strings.Fields(title)
	if len(fields) > 0 {
		brand = fields[0]
		modelName = strings.Join(fields[1:], " ")
	}
	return brand, modelName
}

// location extracts the "Location: City, Region, Country" line when present.
func location(doc *html.Node) map[string]any {
	loc := map[string]any{"country": "", "region": "", "city": "", "zip": "", "address": ""}
	walk(doc, func(n *html.Node) {
		if n.Type != html.TextNode {
			return
		}
		m := locationRe.FindStringSubmatch(strings.TrimSpace(n.Data))
		if m == nil {
			return
		}
		parts := splitNonEmpty(m[1], func(r rune) bool { return r == ',' || r == '\n' })
		switch {
		case len(parts) == 1:
			loc["city"] = parts[0]
		case len(parts) >= 2:
			loc["city"] = parts[0]
			loc["region"] = parts[1]
			if len(parts) >= 3 {
				loc["country"] = parts[2]
			}
		}
	})
	return loc
}

// images collects photo URLs, skipping theme assets and thumbnail variants.
func images(doc *html.Node) []string {
	var imgs []string
	have := make(map[string]struct{})
	walk(doc, func(n *html.Node) {
		if len(imgs) >= maxImagesPerListing || n.Type != html.ElementNode || n.Data != "img" {
			return
		}
		src := attr(n, "src")
		if src == "" {
			src = attr(n, "data-src")
		}
		if !strings.HasPrefix(src, "http") {
			return
		}
		noQuery := strings.ToLower(strings.SplitN(src, "?", 2)[0])
		if !photoExtRe.MatchString(noQuery) {
			return
		}
		if strings.Contains(noQuery, "/themes/") {
			return
		}
		// Thumbnail renditions of photos already captured full size.
		if strings.Contains(src, "fit=144") || strings.Contains(src, "resize=235") {
			return
		}
		if _, dup := have[src]; dup {
			return
		}
		have[src] = struct{}{}
		imgs = append(imgs, src)
	})
	return imgs
}

// description prefers the article body, falling back to the whole page text.
func description(doc *html.Node) string {
	var body *html.Node
	walk(doc, func(n *html.Node) {
		if body != nil || n.Type != html.ElementNode {
			return
		}
		if n.Data == "article" {
			body = n
			return
		}
		if n.Data == "div" {
			class := strings.ToLower(attr(n, "class"))
			if strings.Contains(class, "content") || strings.Contains(class, "body") {
				body = n
			}
		}
	})
	if body == nil {
		body = doc
	}
	desc := blankLinesRe.ReplaceAllString(nodeTextLines(body), "\n\n")
	desc = strings.TrimSpace(desc)
	if len(desc) > maxDescriptionLen {
		desc = desc[:maxDescriptionLen]
	}
	return desc
}

// textBlob joins the text of p/li/span/div elements for the free-text
// attribute regexes.
func textBlob(doc *html.Node) string {
	var parts []string
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		switch n.Data {
		case "p", "li", "span", "div":
			if t := collapseSpace(nodeText(n)); t != "" {
				parts = append(parts, t)
			}
		}
	})
	return strings.Join(parts, " ")
}

// nodeText concatenates all text beneath n with single spaces.
func nodeText(n *html.Node) string {
	var b strings.Builder
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
			b.WriteByte(' ')
		}
	})
	return b.String()
}

// nodeTextLines concatenates text beneath n with newlines, trimming each
// fragment.
func nodeTextLines(n *html.Node) string {
	var parts []string
	walk(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			if t := strings.TrimSpace(c.Data); t != "" {
				parts = append(parts, t)
			}
		}
	})
	return strings.Join(parts, "\n")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func splitNonEmpty(s string, sep func(rune) bool) []string {
	var out []string
	for _, p := range strings.FieldsFunc(s, sep) {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
