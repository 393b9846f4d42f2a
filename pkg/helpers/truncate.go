// Package helpers holds the text and id helpers used by templates and the back office API.
package helpers

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const Ellipsis = "&hellip;"

type TruncateOptions struct {
	AddEllipsis bool
	// TreatTagsAsContent counts the characters of the markup itself against the length.
	TreatTagsAsContent bool
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Truncate keeps at most length visible characters of s, appending an
// ellipsis and closing any tags left open when it has to cut.
func Truncate(s string, length int) string {
	return TruncateWithOptions(s, length, TruncateOptions{AddEllipsis: true})
}

func TruncateWithOptions(s string, length int, opts TruncateOptions) string {
	if length < 0 {
		length = 0
	}

	var (
		b     strings.Builder
		open  []string
		count int
		// start tags not yet followed by visible text
		pending []string
	)
	flush := func() {
		for _, raw := range pending {
			b.WriteString(raw)
		}
		pending = pending[:0]
	}
	cut := func() string {
		open = open[:len(open)-len(pending)]
		return finishTruncate(&b, open, opts)
	}

	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// the whole input fits
			return s
		}
		raw := string(z.Raw())

		switch tt {
		case html.TextToken:
			kept, n, more := takeUnits(raw, length-count)
			count += n
			if !more {
				flush()
				b.WriteString(raw)
				continue
			}
			if kept = strings.TrimRightFunc(kept, unicode.IsSpace); kept != "" {
				flush()
				b.WriteString(kept)
			}
			return cut()

		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			if opts.TreatTagsAsContent {
				n := countUnits(raw)
				if count+n > length {
					return cut()
				}
				count += n
			}

			name, _ := z.TagName()
			if tt == html.StartTagToken && !voidElements[string(name)] {
				pending = append(pending, raw)
				open = append(open, string(name))
				continue
			}
			flush()
			b.WriteString(raw)
			if tt == html.EndTagToken {
				open = popTag(open, string(name))
			}

		default:
			flush()
			b.WriteString(raw)
		}
	}
}

// TruncateByWords keeps the first words words of the visible text of s.
func TruncateByWords(s string, words int) string {
	return Truncate(s, wordsToLength(visibleText(s), words))
}

// visibleText joins the text tokens of s exactly as Truncate counts them.
func visibleText(s string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Raw())
		}
	}
}

func finishTruncate(b *strings.Builder, open []string, opts TruncateOptions) string {
	out := strings.TrimRightFunc(b.String(), unicode.IsSpace)
	if opts.AddEllipsis {
		out += Ellipsis
	}
	for i := len(open) - 1; i >= 0; i-- {
		out += "</" + open[i] + ">"
	}
	return out
}

func popTag(open []string, name string) []string {
	for i := len(open) - 1; i >= 0; i-- {
		if open[i] == name {
			return open[:i]
		}
	}
	return open
}

// takeUnits returns the prefix of s holding at most max characters and
// whether anything was left over.
func takeUnits(s string, max int) (string, int, bool) {
	n := 0
	for i := 0; i < len(s); {
		if n == max {
			return s[:i], n, true
		}
		i = unitEnd(s, i)
		n++
	}
	return s, n, false
}

func countUnits(s string) int {
	n := 0
	for i := 0; i < len(s); i = unitEnd(s, i) {
		n++
	}
	return n
}

// unitEnd returns the end of the character starting at i. A character
// entity such as &amp; or &#39; is a single character.
func unitEnd(s string, i int) int {
	if s[i] == '&' {
		for j := i + 1; j < len(s) && j-i <= 32; j++ {
			c := s[j]
			if c == ';' {
				if j > i+1 {
					return j + 1
				}
				break
			}
			if c != '#' && !isAlnum(c) {
				break
			}
		}
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return i + size
}

func isAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func wordsToLength(text string, words int) int {
	if words <= 0 {
		return 0
	}
	n, seen := 0, 0
	inWord := false
	for i := 0; i < len(text); {
		end := unitEnd(text, i)
		r, _ := utf8.DecodeRuneInString(text[i:end])
		space := end-i == utf8.RuneLen(r) && unicode.IsSpace(r)
		if space && inWord {
			seen++
			inWord = false
			if seen == words {
				return n
			}
		}
		if !space {
			inWord = true
		}
		n++
		i = end
	}
	return n
}
