package processor

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Format selects how article bodies are rendered.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a configured body format. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatMarkdown:
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown body format %q (want %q or %q)", s, FormatText, FormatMarkdown)
	}
}

// Processor converts article HTML into plain text or Markdown.
type Processor struct {
	format Format
}

// New creates a processor that renders plain text.
func New() *Processor {
	return &Processor{format: FormatText}
}

// NewWithFormat creates a processor for the given format.
func NewWithFormat(format Format) *Processor {
	if format == "" {
		format = FormatText
	}
	return &Processor{format: format}
}

// Format returns the output format of Render.
func (p *Processor) Format() Format {
	return p.format
}

// Render converts an article body using the processor's format.
func (p *Processor) Render(htmlContent string) (string, error) {
	if p.format == FormatMarkdown {
		return p.Convert(htmlContent)
	}
	return p.Text(htmlContent)
}

// Convert transforms HTML content into Markdown.
func (p *Processor) Convert(htmlContent string) (string, error) {
	if htmlContent == "" {
		return "", nil
	}

	markdown, err := htmltomarkdown.ConvertString(htmlContent)
	if err != nil {
		return "", err
	}

	// Clean up excessive whitespace
	markdown = strings.TrimSpace(markdown)
	return markdown, nil
}

// Elements whose content is never visible.
var hiddenElements = map[atom.Atom]bool{
	atom.Head:     true,
	atom.Title:    true,
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Iframe:   true,
	atom.Svg:      true,
}

// Elements that start and end a line of text.
var blockElements = map[atom.Atom]bool{
	atom.Address:    true,
	atom.Article:    true,
	atom.Aside:      true,
	atom.Blockquote: true,
	atom.Dd:         true,
	atom.Details:    true,
	atom.Div:        true,
	atom.Dl:         true,
	atom.Dt:         true,
	atom.Fieldset:   true,
	atom.Figcaption: true,
	atom.Figure:     true,
	atom.Footer:     true,
	atom.Form:       true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Header:     true,
	atom.Hr:         true,
	atom.Li:         true,
	atom.Main:       true,
	atom.Nav:        true,
	atom.Ol:         true,
	atom.P:          true,
	atom.Pre:        true,
	atom.Section:    true,
	atom.Summary:    true,
	atom.Table:      true,
	atom.Tbody:      true,
	atom.Thead:      true,
	atom.Tfoot:      true,
	atom.Tr:         true,
	atom.Ul:         true,
}

var bodyContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

// Text extracts the visible text of an HTML fragment.
// Block elements become line breaks and runs of whitespace collapse to one space.
func (p *Processor) Text(htmlContent string) (string, error) {
	if htmlContent == "" {
		return "", nil
	}

	nodes, err := html.ParseFragment(strings.NewReader(htmlContent), bodyContext)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var b strings.Builder
	for _, n := range nodes {
		writeText(&b, n)
	}
	return collapseWhitespace(b.String()), nil
}

func writeText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if hiddenElements[n.DataAtom] {
			return
		}
		if n.DataAtom == atom.Br {
			b.WriteByte('\n')
			return
		}
	}

	sep := ""
	switch {
	case blockElements[n.DataAtom]:
		sep = "\n"
	case n.DataAtom == atom.Td || n.DataAtom == atom.Th:
		sep = " "
	}

	b.WriteString(sep)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(b, c)
	}
	b.WriteString(sep)
}

func collapseWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
