package storefront

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"rewecart/internal/matching"
)

var (
	containerSelectors = compileAll(
		"article",
		".product-item",
		".product-card",
		`[data-testid*="product"]`,
		".product-tile",
		".product-list-item",
	)

	nameSelectors = compileAll(
		"h3", "h4", "h5",
		`[class*="name"]`, `[class*="title"]`,
		`[data-testid*="name"]`, `[data-testid*="title"]`,
		`a[href*="product"]`,
	)

	priceSelectors = compileAll(
		`[class*="price"]`,
		`[data-testid*="price"]`,
	)

	textBlocks     = cascadia.MustCompile("div, span, p")
	divSelector    = cascadia.MustCompile("div")
	imageSelector  = cascadia.MustCompile("img")
	anchorSelector = cascadia.MustCompile("a")

	pricePattern = regexp.MustCompile(`\d+,\d+\s*€`)
	idPattern    = regexp.MustCompile(`/(\d+)(?:\?|$)`)
)

// broadHints are class fragments of generic product wrappers.
var broadHints = []string{"product", "tile", "card"}

func compileAll(list ...string) []cascadia.Selector {
	out := make([]cascadia.Selector, len(list))
	for i, s := range list {
		out[i] = cascadia.MustCompile(s)
	}
	return out
}

type extractor struct {
	base      *url.URL
	searchURL func(term string) string
}

// records extracts up to limit raw records from a parsed search page.
// limit <= 0 extracts every container.
func (e extractor) records(doc *html.Node, limit int) []matching.RawRecord {
	containers := e.containers(doc)
	if limit > 0 && len(containers) > limit {
		containers = containers[:limit]
	}

	var out []matching.RawRecord
	for _, c := range containers {
		if r, ok := e.record(c); ok {
			out = append(out, r)
		}
	}
	return out
}

func (e extractor) containers(doc *html.Node) []*html.Node {
	for _, sel := range containerSelectors {
		if found := cascadia.QueryAll(doc, sel); len(found) > 0 {
			return found
		}
	}

	var found []*html.Node
	for _, n := range cascadia.QueryAll(doc, divSelector) {
		if looksLikeProduct(n) {
			found = append(found, n)
		}
	}
	return found
}

func looksLikeProduct(n *html.Node) bool {
	class, _ := getAttr(n, "class")
	hinted := false
	for _, h := range broadHints {
		if strings.Contains(class, h) {
			hinted = true
			break
		}
	}
	if !hinted || cascadia.Query(n, imageSelector) == nil {
		return false
	}
	text := textContent(n)
	if utf8.RuneCountInString(strings.TrimSpace(text)) <= 10 {
		return false
	}
	return strings.ContainsAny(text, "€,")
}

func (e extractor) record(c *html.Node) (matching.RawRecord, bool) {
	name := productName(c)
	if name == "" {
		return matching.RawRecord{}, false
	}

	r := matching.RawRecord{
		Name:  name,
		Price: productPrice(c),
	}
	if img := cascadia.Query(c, imageSelector); img != nil {
		if src, ok := getAttr(img, "src"); ok {
			r.ImageURL = e.resolve(src)
		}
	}

	anchor := cascadia.Query(c, anchorSelector)
	if anchor == nil && c.Data == "a" {
		anchor = c
	}
	if anchor != nil {
		if href, ok := getAttr(anchor, "href"); ok && href != "" {
			r.Link = e.resolve(href)
		}
	}

	if m := idPattern.FindStringSubmatch(r.Link); m != nil {
		r.ID = m[1]
	}
	if r.ID == "" {
		if v, ok := getAttr(c, "data-product-id"); ok {
			r.ID = v
		} else if v, ok := getAttr(c, "data-id"); ok {
			r.ID = v
		}
	}

	if r.Link == "" {
		r.Link = e.searchURL(name)
	}
	return r, true
}

func productName(c *html.Node) string {
	for _, sel := range nameSelectors {
		if n := cascadia.Query(c, sel); n != nil {
			if text := collapse(textContent(n)); text != "" {
				return text
			}
		}
	}

	for _, n := range cascadia.QueryAll(c, textBlocks) {
		text := collapse(textContent(n))
		l := utf8.RuneCountInString(text)
		if l > 10 && l < 100 && !strings.ContainsAny(text, "€,") {
			return text
		}
	}
	return ""
}

func productPrice(c *html.Node) string {
	for _, sel := range priceSelectors {
		if n := cascadia.Query(c, sel); n != nil {
			if text := textContent(n); strings.Contains(text, "€") {
				return collapse(text)
			}
		}
	}
	return pricePattern.FindString(textContent(c))
}

func (e extractor) resolve(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if e.base == nil {
		return u.String()
	}
	return e.base.ResolveReference(u).String()
}

// collapse trims s and folds inner whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
