package devpost

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	blankLines = regexp.MustCompile(`\n{3,}`)
	spaceRun   = regexp.MustCompile(`[ \t\r\n\f]+`)
	lineSpace  = regexp.MustCompile(`[ \t]+\n|\n[ \t]+`)
)

// TextConverter turns description HTML into readable plain text. Markup is
// sanitised first so embedded scripts and iframes never reach the model.
type TextConverter struct {
	policy *bluemonday.Policy
}

// NewTextConverter creates a converter with the user-content policy
func NewTextConverter() *TextConverter {
	return &TextConverter{policy: bluemonday.UGCPolicy()}
}

// Convert renders html as plain text: block elements become paragraphs,
// list items become "- " lines and links keep their text followed by the
// target in brackets. Relative links resolve against domain. When nothing
// readable comes out the sanitised markup is stripped of tags instead.
func (t *TextConverter) Convert(raw, domain string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	clean := t.policy.Sanitize(raw)

	var out string
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(clean)); err == nil {
		w := &textWriter{base: baseURL(domain)}
		for _, n := range doc.Nodes {
			w.walk(n)
		}
		out = w.String()
	}
	if strings.TrimSpace(out) == "" {
		out = html.UnescapeString(bluemonday.StrictPolicy().Sanitize(clean))
	}

	out = lineSpace.ReplaceAllString(out, "\n")
	return blankLines.ReplaceAllString(strings.TrimSpace(out), "\n\n")
}

func baseURL(domain string) *url.URL {
	if domain == "" {
		return nil
	}
	if !strings.Contains(domain, "://") {
		domain = "https://" + domain
	}
	u, err := url.Parse(domain)
	if err != nil || u.Host == "" {
		return nil
	}
	return u
}

// textWriter accumulates text, collapsing whitespace and owing line breaks
// until the next visible text so empty blocks add nothing.
type textWriter struct {
	b       strings.Builder
	pending int
	pre     int
	base    *url.URL
}

func (w *textWriter) String() string {
	return w.b.String()
}

func (w *textWriter) lineBreak(n int) {
	if w.b.Len() > 0 && n > w.pending {
		w.pending = n
	}
}

func (w *textWriter) write(s string) {
	if w.pre == 0 {
		s = spaceRun.ReplaceAllString(s, " ")
		atLineStart := w.pending > 0 || w.b.Len() == 0 || strings.HasSuffix(w.b.String(), "\n")
		if atLineStart || strings.HasSuffix(w.b.String(), " ") {
			s = strings.TrimLeft(s, " ")
		}
	}
	if s == "" {
		return
	}
	if w.pending > 0 {
		w.b.WriteString(strings.Repeat("\n", w.pending))
		w.pending = 0
	}
	w.b.WriteString(s)
}

func (w *textWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c)
	}
}

func (w *textWriter) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.write(n.Data)
		return
	case html.DocumentNode:
		w.children(n)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Noscript, atom.Iframe, atom.Head:
		return

	case atom.Br:
		w.lineBreak(1)

	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.P, atom.Div, atom.Section, atom.Article, atom.Blockquote,
		atom.Ul, atom.Ol, atom.Dl, atom.Table, atom.Figure, atom.Hr:
		w.lineBreak(2)
		w.children(n)
		w.lineBreak(2)

	case atom.Pre:
		w.lineBreak(2)
		w.pre++
		w.children(n)
		w.pre--
		w.lineBreak(2)

	case atom.Li, atom.Dt, atom.Dd:
		w.lineBreak(1)
		if n.DataAtom == atom.Li {
			w.write("- ")
		}
		w.children(n)
		w.lineBreak(1)

	case atom.Tr:
		w.lineBreak(1)
		first := true
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if !first {
				w.write(" | ")
			}
			first = false
			w.children(c)
		}
		w.lineBreak(1)

	case atom.A:
		start := w.b.Len()
		w.children(n)
		text := strings.TrimSpace(w.b.String()[start:])
		if href := w.resolve(attr(n, "href")); href != "" && href != text {
			w.write(" [" + href + "]")
		}

	default:
		w.children(n)
	}
}

// resolve returns an absolute http(s) link, or "" for anything else
func (w *textWriter) resolve(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if !u.IsAbs() {
		if w.base == nil {
			return ""
		}
		u = w.base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return u.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
