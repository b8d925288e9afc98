package scraper

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// DiscoverUnsold walks the unsold-results index and its pagination, returning
// deduplicated, query-stripped listing links capped at MaxListings. Page
// fetch failures after the first page are tolerated.
func (c *Client) DiscoverUnsold(ctx context.Context) ([]string, error) {
	first, err := c.fetch(ctx, c.cfg.ResultsURL())
	if err != nil {
		return nil, err
	}

	pages := c.paginationPages(first)
	var seen []string
	have := make(map[string]struct{})
	for _, pg := range pages {
		body, err := c.fetch(ctx, pg)
		if err != nil {
			c.log.Warn("skipping results page", "url", pg, "err", err)
			continue
		}
		for _, u := range listingLinks(body) {
			if _, dup := have[u]; dup {
				continue
			}
			have[u] = struct{}{}
			seen = append(seen, u)
		}
		if len(seen) >= c.cfg.MaxListings {
			break
		}
	}
	if len(seen) > c.cfg.MaxListings {
		seen = seen[:c.cfg.MaxListings]
	}
	return seen, nil
}

// paginationPages collects the result-page URLs reachable from the first
// index page, always including the index itself.
func (c *Client) paginationPages(body []byte) []string {
	pages := map[string]struct{}{c.cfg.ResultsURL(): {}}
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return []string{c.cfg.ResultsURL()}
	}
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "a" {
			return
		}
		href := attr(n, "href")
		if href == "" || !strings.Contains(href, "auctions/results/") || !strings.Contains(href, "result=unsold") {
			return
		}
		href = strings.SplitN(href, "#", 2)[0]
		if !strings.HasPrefix(href, "http") {
			href = c.cfg.BaseURL + ensureLeadingSlash(href)
		}
		pages[href] = struct{}{}
	})

	out := make([]string, 0, len(pages))
	for p := range pages {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// listingLinks extracts query-stripped /listing/ hrefs in document order.
func listingLinks(body []byte) []string {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil
	}
	var links []string
	have := make(map[string]struct{})
	walk(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || n.Data != "a" {
			return
		}
		href := attr(n, "href")
		if href == "" || !strings.Contains(href, "/listing/") {
			return
		}
		href = strings.SplitN(href, "?", 2)[0]
		if _, dup := have[href]; dup {
			return
		}
		have[href] = struct{}{}
		links = append(links, href)
	})
	return links
}

func ensureLeadingSlash(s string) string {
	if strings.HasPrefix(s, "/") {
		return s
	}
	return "/" + s
}

// walk visits every node depth-first.
func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		walk(child, fn)
	}
}

// attr returns the named attribute value, or "".
func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}
