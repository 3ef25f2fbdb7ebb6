package sources

import (
	"strings"

	"golang.org/x/net/html"
)

// pageMeta holds <head> metadata used when embedded JSON lacks a field.
type pageMeta struct {
	props     map[string]string // meta property/name/itemprop → content
	title     string
	canonical string
}

// get returns the first non-empty meta value among keys.
func (m pageMeta) get(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(m.props[k]); v != "" {
			return v
		}
	}
	return ""
}

// parseHeadMeta tokenizes page until <body> and collects meta tags, the
// document title and the canonical link.
func parseHeadMeta(page string) pageMeta {
	m := pageMeta{props: make(map[string]string)}
	z := html.NewTokenizer(strings.NewReader(page))
	inTitle := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return m
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "body":
				return m
			case "title":
				inTitle = true
			case "meta":
				key := firstNonEmpty(getAttr(tok, "property"), getAttr(tok, "name"), getAttr(tok, "itemprop"))
				if key != "" {
					if _, seen := m.props[key]; !seen {
						m.props[key] = getAttr(tok, "content")
					}
				}
			case "link":
				if getAttr(tok, "rel") == "canonical" && m.canonical == "" {
					m.canonical = getAttr(tok, "href")
				}
			}
		case html.TextToken:
			if inTitle && m.title == "" {
				m.title = strings.TrimSpace(string(z.Text()))
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "title" {
				inTitle = false
			}
		}
	}
}

func getAttr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
