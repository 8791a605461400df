// Package lure produces the simulated phishing email content and the
// awareness feedback shown after a credential submission.
package lure

import (
	"context"
	"fmt"
	"html"
	"strings"
)

// Placeholder is the marker the generator must leave in every lure body.
// The dispatcher replaces it with the recipient's unique tracking link.
const Placeholder = "{{TRACKING_LINK}}"

// Content is a generated lure email.
type Content struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Generator produces lure content and awareness tips. Implementations may
// call an external model; callers bound each call with a context timeout.
type Generator interface {
	// Generate returns a lure subject and body for the scenario, addressed
	// to the recipient. The body should contain Placeholder; callers run
	// EnsurePlaceholder on the result regardless.
	Generate(ctx context.Context, scenario, recipientName string) (Content, error)

	// Tips returns phishing-awareness tips in lightweight markup
	// (bold + bullet lines) for the post-submission feedback page.
	Tips(ctx context.Context) (string, error)
}

// EnsurePlaceholder appends a call-to-action carrying the placeholder when
// the generated body omitted it, so every rendered email has a tracking link.
func EnsurePlaceholder(body string) string {
	if strings.Contains(body, Placeholder) {
		return body
	}
	return body + "\n\nPlease click here: " + Placeholder
}

// RenderBody substitutes every placeholder occurrence with an HTML anchor
// to the tracking URL and converts plain newlines to <br> tags.
func RenderBody(body, trackingURL string) string {
	link := fmt.Sprintf(`<a href="%s">%s</a>`, trackingURL, trackingURL)
	rendered := strings.ReplaceAll(body, Placeholder, link)
	return strings.ReplaceAll(rendered, "\n", "<br>")
}

// MarkupToHTML converts the tips' lightweight markup to display HTML:
// **text** becomes <strong>, lines starting with "* " become list items,
// remaining line groups become paragraphs. Input is escaped first.
func MarkupToHTML(markup string) string {
	escaped := html.EscapeString(strings.TrimSpace(markup))
	lines := strings.Split(escaped, "\n")

	var b strings.Builder
	var para []string
	inList := false

	flushPara := func() {
		if len(para) == 0 {
			return
		}
		b.WriteString("<p>")
		b.WriteString(strings.Join(para, "<br>"))
		b.WriteString("</p>")
		para = para[:0]
	}
	closeList := func() {
		if inList {
			b.WriteString("</ul>")
			inList = false
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			flushPara()
			closeList()
		case strings.HasPrefix(line, "* "):
			flushPara()
			if !inList {
				b.WriteString("<ul>")
				inList = true
			}
			b.WriteString("<li>")
			b.WriteString(boldify(strings.TrimSpace(line[2:])))
			b.WriteString("</li>")
		default:
			closeList()
			para = append(para, boldify(line))
		}
	}
	flushPara()
	closeList()
	return b.String()
}

// boldify replaces paired **markers** with <strong> tags.
func boldify(s string) string {
	for {
		open := strings.Index(s, "**")
		if open < 0 {
			return s
		}
		rest := s[open+2:]
		close := strings.Index(rest, "**")
		if close < 0 {
			return s
		}
		s = s[:open] + "<strong>" + rest[:close] + "</strong>" + rest[close+2:]
	}
}
