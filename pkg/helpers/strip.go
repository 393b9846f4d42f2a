package helpers

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// StripHTML removes markup from s. With no tags every tag is removed,
// otherwise only the tags of the named elements are.
func StripHTML(s string, tags ...string) string {
	only := make(map[string]bool, len(tags))
	for _, t := range tags {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			only[t] = true
		}
	}

	var (
		b strings.Builder
		// a tag was removed since the last text
		dropped bool
	)
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch tt := z.Next(); tt {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			text := z.Raw()
			if dropped && endsInSpace(b.String()) {
				text = bytes.TrimLeftFunc(text, unicode.IsSpace)
			}
			dropped = false
			b.Write(text)
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			if len(only) == 0 {
				dropped = true
				continue
			}
			raw := string(z.Raw())
			name, _ := z.TagName()
			if only[string(name)] {
				dropped = true
				continue
			}
			b.WriteString(raw)
		default:
			if len(only) > 0 {
				b.Write(z.Raw())
			} else {
				dropped = true
			}
		}
	}
}

func endsInSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r != utf8.RuneError && unicode.IsSpace(r)
}

var ugcPolicy = bluemonday.UGCPolicy()

// Sanitize drops scripts, event handlers and other unsafe markup from
// user supplied HTML.
func Sanitize(s string) string {
	return ugcPolicy.Sanitize(s)
}

// Excerpt sanitizes user supplied HTML and truncates it for listings.
func Excerpt(s string, length int) string {
	return Truncate(Sanitize(s), length)
}
