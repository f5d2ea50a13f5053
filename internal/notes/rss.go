// Copyright (c) 2025 Tom Nagengast
// SPDX-License-Identifier: AGPL-3.0-or-later

package notes

import (
	"encoding/xml"
	"regexp"
	"strings"
)

// Site describes the feed channel.
type Site struct {
	URL         string
	Title       string
	Description string
}

// DefaultSite is the published site.
var DefaultSite = Site{
	URL:         "https://tomnagengast.com",
	Title:       "Tom Nagengast",
	Description: "Essays and ideas from Tom Nagengast",
}

// DescriptionLimit is the number of characters of stripped content kept in
// an item description.
const DescriptionLimit = 200

// pubDateLayout is RFC 1123 in GMT, as feed readers expect.
const pubDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Atom    string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Language    string    `xml:"language"`
	AtomLink    atomLink  `xml:"atom:link"`
	Items       []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	GUID        string `xml:"guid"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
}

// RSS renders an RSS 2.0 feed of notes, newest first.
func RSS(site Site, notes []Note) ([]byte, error) {
	sorted := append([]Note(nil), notes...)
	Sort(sorted)

	base := strings.TrimRight(site.URL, "/")
	doc := rssDoc{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: rssChannel{
			Title:       site.Title,
			Link:        base,
			Description: site.Description,
			Language:    "en-us",
			AtomLink: atomLink{
				Href: base + "/rss.xml",
				Rel:  "self",
				Type: "application/rss+xml",
			},
		},
	}
	for _, n := range sorted {
		url := base + "/notes/" + n.Slug
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:       n.Title,
			Link:        url,
			GUID:        url,
			PubDate:     n.Date.UTC().Format(pubDateLayout),
			Description: Summary(n.Content),
		})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// Summary is the markdown-stripped content, cut to DescriptionLimit
// characters with a trailing "...".
func Summary(markdown string) string {
	s := []rune(StripMarkdown(markdown))
	if len(s) > DescriptionLimit {
		return string(s[:DescriptionLimit]) + "..."
	}
	return string(s)
}

// Fenced blocks go first so their backticks are not taken for inline code.
// Images go before links since image syntax contains a link.
var stripRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile("```[\\s\\S]*?```"), ""},
	{regexp.MustCompile(`(?m)^#+\s+`), ""},
	{regexp.MustCompile(`\*\*([^*]+)\*\*`), "$1"},
	{regexp.MustCompile(`\*([^*]+)\*`), "$1"},
	{regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`), ""},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"},
	{regexp.MustCompile("`([^`]+)`"), "$1"},
	{regexp.MustCompile(`(?m)^[-*+]\s+`), ""},
}

// StripMarkdown removes markdown formatting, keeping the text.
func StripMarkdown(markdown string) string {
	for _, r := range stripRules {
		markdown = r.re.ReplaceAllString(markdown, r.repl)
	}
	return strings.TrimSpace(markdown)
}
